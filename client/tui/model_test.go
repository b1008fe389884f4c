package tui

import (
	"errors"
	"testing"

	"github.com/cbodonnell/dirtydishes/pkg/game/types"
	"github.com/cbodonnell/dirtydishes/pkg/messages"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*messages.ClientAction
	err  error
}

func (s *recordingSender) SendAction(action *messages.ClientAction) error {
	s.sent = append(s.sent, action)
	return s.err
}

func testState() *types.KitchenState {
	s := types.NewKitchenState()
	s.Pile = []types.Dish{
		{Type: types.DishTypePlate, ID: "p1"},
		{Type: types.DishTypeKnife, ID: "p2"},
		{Type: types.DishTypeKnife, ID: "p3"},
	}
	s.Sink = &types.Dish{Type: types.DishTypePot, ID: "s1"}
	s.Rack = []types.Dish{{Type: types.DishTypeGlass, ID: "r1"}}
	s.Cupboard = 4
	return s
}

func newTestModel(t *testing.T) (*Model, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	m := NewModel(NewModelOptions{
		Sender:  sender,
		Updates: make(chan *messages.ServerKitchenUpdate),
	})
	m.Update(updateMsg{update: &messages.ServerKitchenUpdate{SessionID: "abc", State: testState()}})
	return m, sender
}

func press(t *testing.T, m *Model, k tea.KeyMsg) {
	t.Helper()
	_, cmd := m.Update(k)
	if cmd != nil {
		cmd()
	}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_Actions(t *testing.T) {
	m, sender := newTestModel(t)

	press(t, m, keyDown)
	press(t, m, keyEnter)
	press(t, m, runeKey('w'))
	press(t, m, runeKey('d'))
	press(t, m, keyRight)
	press(t, m, keyEnter)

	require.Len(t, sender.sent, 4)
	assert.Equal(t, &messages.ClientAction{Action: types.ActionTypePickUp, DishID: "p2"}, sender.sent[0])
	assert.Equal(t, types.ActionTypeWash, sender.sent[1].Action)
	assert.Equal(t, types.ActionTypeDry, sender.sent[2].Action)
	assert.Equal(t, &messages.ClientAction{Action: types.ActionTypePutAway, DishID: "r1"}, sender.sent[3])
}

func TestModel_CursorStaysInList(t *testing.T) {
	m, sender := newTestModel(t)

	for i := 0; i < 10; i++ {
		press(t, m, keyDown)
	}
	assert.Equal(t, 2, m.cursor)

	// the rack only has one dish
	press(t, m, keyRight)
	assert.Equal(t, 0, m.cursor)
	press(t, m, keyUp)
	assert.Equal(t, 0, m.cursor)

	// a snapshot that empties the rack leaves nothing to put away
	state := testState()
	state.Rack = nil
	m.Update(updateMsg{update: &messages.ServerKitchenUpdate{State: state}})
	press(t, m, keyEnter)
	assert.Empty(t, sender.sent)

	press(t, m, keyLeft)
	press(t, m, keyEnter)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "p1", sender.sent[0].DishID)
}

func TestModel_SendError(t *testing.T) {
	m, sender := newTestModel(t)
	sender.err = errors.New("connection reset")

	_, cmd := m.Update(runeKey('w'))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.EqualError(t, m.Err(), "connection reset")
	assert.Contains(t, m.View(), "connection reset")
}

func TestModel_UpdateClearsSendError(t *testing.T) {
	m, sender := newTestModel(t)
	sender.err = errors.New("connection reset")

	_, cmd := m.Update(runeKey('w'))
	require.NotNil(t, cmd)
	m.Update(cmd())
	require.Error(t, m.Err())

	m.Update(updateMsg{update: &messages.ServerKitchenUpdate{SessionID: "abc", State: testState()}})
	assert.NoError(t, m.Err())
	assert.NotContains(t, m.View(), "connection reset")
}

func TestModel_ConnectionLost(t *testing.T) {
	updates := make(chan *messages.ServerKitchenUpdate)
	m := NewModel(NewModelOptions{Sender: &recordingSender{}, Updates: updates})
	close(updates)

	msg := waitForUpdate(updates)()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, m.Err(), ErrUpdatesClosed)
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	m.state.Notice = "put away the dry dishes first!"

	view := m.View()
	for _, want := range []string{
		"session abc",
		"put away the dry dishes first!",
		"Pile (3)",
		"1 plate, 2 knives",
		"washing...",
		"Drying Rack (1/10)",
		"4 put away",
	} {
		assert.Contains(t, view, want)
	}

	m.state.CanDry = true
	assert.Contains(t, m.View(), "ready to dry")
}

func TestRenderPlain(t *testing.T) {
	s := testState()
	s.CanDry = true
	s.Notice = "wash the things in the sink first!"

	out := RenderPlain(s, 10)
	assert.Contains(t, out, "pile (3): 1 plate, 2 knives\n")
	assert.Contains(t, out, "hand: empty\n")
	assert.Contains(t, out, "sink: pot (ready to dry)\n")
	assert.Contains(t, out, "rack (1/10): glass\n")
	assert.Contains(t, out, "cupboard: 4\n")
	assert.Contains(t, out, "notice: wash the things in the sink first!\n")

	assert.NotContains(t, RenderPlain(types.NewKitchenState(), 10), "notice:")
}
