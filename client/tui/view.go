package tui

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/dirtydishes/pkg/art"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/charmbracelet/lipgloss"
)

// maxListRows is how many dishes a pile or rack box lists before scrolling
const maxListRows = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4CAF50")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7B801")).
			Bold(true)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(26)
	focusedBoxStyle = boxStyle.
			BorderForeground(lipgloss.Color("#F7B801"))
)

func (m *Model) View() string {
	header := titleStyle.Render("dirty dishes")
	if m.sessionID != "" {
		header += dimStyle.Render("  session " + m.sessionID)
	}

	notice := " "
	if m.state.Notice != "" {
		notice = noticeStyle.Render(m.state.Notice)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPile(),
		renderHeld("Hand", m.state.Hand, ""),
		m.renderSink(),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderRack(),
		boxStyle.Render(fmt.Sprintf("%s\n%d put away", titleStyle.Render("Cupboard"), m.state.Cupboard)),
	)

	sections := []string{header, notice, top, bottom}
	if m.err != nil {
		sections = append(sections, noticeStyle.Render("error: "+m.err.Error()))
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n")
}

func (m *Model) renderPile() string {
	title := titleStyle.Render(fmt.Sprintf("Pile (%d)", len(m.state.Pile)))
	body := []string{title, dimStyle.Render(m.state.PileSummary())}
	body = append(body, m.renderList(m.state.Pile, areaPile)...)
	return m.box(areaPile).Render(strings.Join(body, "\n"))
}

func (m *Model) renderRack() string {
	title := titleStyle.Render(fmt.Sprintf("Drying Rack (%d/%d)", len(m.state.Rack), m.rackCapacity))
	body := []string{title}
	body = append(body, m.renderList(m.state.Rack, areaRack)...)
	return m.box(areaRack).Render(strings.Join(body, "\n"))
}

func (m *Model) renderSink() string {
	status := ""
	if m.state.Sink != nil {
		if m.state.CanDry {
			status = readyStyle.Render("ready to dry")
		} else {
			status = dimStyle.Render("washing...")
		}
	}
	return renderHeld("Sink", m.state.Sink, status)
}

func renderHeld(name string, dish *types.Dish, status string) string {
	body := []string{titleStyle.Render(name)}
	if dish == nil {
		body = append(body, dimStyle.Render("empty"))
	} else {
		body = append(body, art.String(dish.Type), dish.Type.String())
	}
	if status != "" {
		body = append(body, status)
	}
	return boxStyle.Render(strings.Join(body, "\n"))
}

// renderList lists dishes, scrolled so the cursor stays visible when the
// list is focused.
func (m *Model) renderList(dishes []types.Dish, a area) []string {
	if len(dishes) == 0 {
		return []string{dimStyle.Render("nothing here")}
	}

	focused := m.focus == a
	start := 0
	if focused && m.cursor >= maxListRows {
		start = m.cursor - maxListRows + 1
	}
	end := start + maxListRows
	if end > len(dishes) {
		end = len(dishes)
	}

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		if focused && i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+dishes[i].Type.String()))
			continue
		}
		lines = append(lines, "  "+dishes[i].Type.String())
	}
	if hidden := len(dishes) - end; hidden > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  +%d more", hidden)))
	}
	return lines
}

func (m *Model) box(a area) lipgloss.Style {
	if m.focus == a {
		return focusedBoxStyle
	}
	return boxStyle
}
