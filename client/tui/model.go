// Package tui is the terminal client for a kitchen session. It follows the
// usual bubbletea loop: server updates and key presses arrive as messages,
// Update folds them into the model and View renders it.
package tui

import (
	"errors"

	"github.com/cbodonnell/dirtydishes/pkg/game/constants"
	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrUpdatesClosed is reported when the server stops sending updates.
var ErrUpdatesClosed = errors.New("kitchen updates closed")

// ActionSender sends player actions to the kitchen.
type ActionSender interface {
	SendAction(action *messages.ClientAction) error
}

// area is the part of the kitchen the cursor is in
type area int

const (
	areaPile area = iota
	areaRack
)

type updateMsg struct {
	update *messages.ServerKitchenUpdate
}

type connErrMsg struct {
	err error
}

type sendErrMsg struct {
	err error
}

type Model struct {
	sender       ActionSender
	updates      <-chan *messages.ServerKitchenUpdate
	errs         <-chan error
	sessionID    string
	rackCapacity int

	state  *types.KitchenState
	focus  area
	cursor int
	keys   keyMap
	help   help.Model
	width  int
	err    error
}

type NewModelOptions struct {
	Sender  ActionSender
	Updates <-chan *messages.ServerKitchenUpdate
	// Errs reports a lost connection. Optional.
	Errs      <-chan error
	SessionID string
	// RackCapacity is only used for display. Defaults to constants.RackCapacity.
	RackCapacity int
}

func NewModel(opts NewModelOptions) *Model {
	if opts.RackCapacity <= 0 {
		opts.RackCapacity = constants.RackCapacity
	}
	return &Model{
		sender:       opts.Sender,
		updates:      opts.Updates,
		errs:         opts.Errs,
		sessionID:    opts.SessionID,
		rackCapacity: opts.RackCapacity,
		state:        types.NewKitchenState(),
		keys:         defaultKeyMap(),
		help:         help.New(),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForUpdate(m.updates)}
	if m.errs != nil {
		cmds = append(cmds, waitForErr(m.errs))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case updateMsg:
		// a fresh update means the connection recovered from any send error
		m.err = nil
		if msg.update.State != nil {
			m.state = msg.update.State
		}
		if msg.update.SessionID != "" {
			m.sessionID = msg.update.SessionID
		}
		m.clampCursor()
		return m, waitForUpdate(m.updates)
	case connErrMsg:
		m.err = msg.err
		return m, tea.Quit
	case sendErrMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.focus = areaPile
		m.clampCursor()
	case key.Matches(msg, m.keys.Right):
		m.focus = areaRack
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.focused())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Act):
		dishes := m.focused()
		if len(dishes) == 0 {
			return m, nil
		}
		actionType := types.ActionTypePickUp
		if m.focus == areaRack {
			actionType = types.ActionTypePutAway
		}
		return m, m.send(&messages.ClientAction{Action: actionType, DishID: dishes[m.cursor].ID})
	case key.Matches(msg, m.keys.Wash):
		return m, m.send(&messages.ClientAction{Action: types.ActionTypeWash})
	case key.Matches(msg, m.keys.Dry):
		return m, m.send(&messages.ClientAction{Action: types.ActionTypeDry})
	}
	return m, nil
}

// focused returns the dishes in the area the cursor is in.
func (m *Model) focused() []types.Dish {
	if m.focus == areaRack {
		return m.state.Rack
	}
	return m.state.Pile
}

func (m *Model) clampCursor() {
	n := len(m.focused())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) send(action *messages.ClientAction) tea.Cmd {
	return func() tea.Msg {
		if err := m.sender.SendAction(action); err != nil {
			return sendErrMsg{err: err}
		}
		return nil
	}
}

func waitForUpdate(updates <-chan *messages.ServerKitchenUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return connErrMsg{err: ErrUpdatesClosed}
		}
		return updateMsg{update: update}
	}
}

func waitForErr(errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		return connErrMsg{err: <-errs}
	}
}
