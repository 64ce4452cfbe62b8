package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Row-major layout: pairs sit side by side, 0/1 differ
var fixedValues = []int{1, 2, 1, 2, 3, 4, 3, 4, 5, 6, 5, 6, 7, 8, 7, 8}

func newTestModel(t *testing.T, config *engine.GameConfig) *Model {
	t.Helper()
	m, err := NewModel(config, engine.WithBoardFunc(func() engine.Board {
		b, err := engine.NewBoardFromValues(fixedValues)
		require.NoError(t, err)
		return b
	}))
	require.NoError(t, err)
	return m
}

func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
)

func pendingIDs(m *Model) []uint64 {
	ids := make([]uint64, 0, len(m.sched.pending))
	for id := range m.sched.pending {
		ids = append(ids, id)
	}
	return ids
}

func TestModel_Init(t *testing.T) {
	relaxed := newTestModel(t, engine.RelaxedConfig())
	assert.Nil(t, relaxed.Init(), "untimed game arms nothing")

	timed := newTestModel(t, engine.TimedConfig())
	assert.NotNil(t, timed.Init(), "timed game arms the clock")
	assert.Len(t, timed.sched.pending, 1)
}

func TestModel_CursorWraps(t *testing.T) {
	m := newTestModel(t, engine.RelaxedConfig())

	press(m, keyRight)
	assert.Equal(t, 1, m.cursor)

	press(m, keyUp)
	assert.Equal(t, 13, m.cursor, "up from row 0 wraps to row 3")

	press(m, runes("l"), runes("l"), runes("l"))
	assert.Equal(t, 12, m.cursor, "right from col 3 wraps to col 0")
}

func TestModel_MatchAndMismatch(t *testing.T) {
	m := newTestModel(t, engine.RelaxedConfig())

	// 0 and 2 hold the same value
	press(m, keyEnter, keyRight, keyRight, keySpace)
	assert.Equal(t, engine.OutcomeMatch, m.lastRes.Outcome)
	assert.Equal(t, 10, m.eng.GetScore())

	// 1 and 3 match too, but 1 and 4 do not
	m.cursor = 1
	press(m, keyEnter)
	m.cursor = 4
	cmd := press(m, keyEnter)
	require.Equal(t, engine.OutcomeMismatch, m.lastRes.Outcome)
	assert.NotNil(t, cmd, "mismatch schedules the flip-back tick")
	assert.Equal(t, engine.PhaseResolvingMismatch, m.eng.GetPhase())

	// Input is ignored until the flip-back fires
	m.cursor = 5
	press(m, keyEnter)
	assert.Equal(t, engine.OutcomeIgnored, m.lastRes.Outcome)
	assert.Contains(t, m.View(), engine.ReasonResolving)

	ids := pendingIDs(m)
	require.Len(t, ids, 1)
	m.Update(timerFiredMsg{id: ids[0]})

	assert.Equal(t, engine.PhaseIdle, m.eng.GetPhase())
	assert.Equal(t, 8, m.eng.GetScore())
	assert.Equal(t, engine.ClickResult{}, m.lastRes)
	assert.NotContains(t, m.View(), engine.ReasonResolving)
	state := m.eng.GetState()
	assert.False(t, state.Tiles[1].FaceUp)
	assert.False(t, state.Tiles[4].FaceUp)
}

func TestModel_RestartDropsPendingFlip(t *testing.T) {
	m := newTestModel(t, engine.RelaxedConfig())

	press(m, keyEnter, keyRight, keyEnter)
	require.Equal(t, engine.OutcomeMismatch, m.lastRes.Outcome)
	ids := pendingIDs(m)
	require.Len(t, ids, 1)

	press(m, runes("r"))
	assert.Empty(t, m.sched.pending, "restart stops the flip-back timer")

	// The tick still arrives; it must be a no-op
	m.Update(timerFiredMsg{id: ids[0]})
	assert.Equal(t, 0, m.eng.GetScore())
	assert.Equal(t, engine.PhaseIdle, m.eng.GetPhase())
}

func TestModel_ClockTicks(t *testing.T) {
	m := newTestModel(t, engine.TimedConfig())
	m.Init()

	for i := 0; i < 3; i++ {
		ids := pendingIDs(m)
		require.Len(t, ids, 1)
		_, cmd := m.Update(timerFiredMsg{id: ids[0]})
		assert.NotNil(t, cmd, "each tick re-arms the clock")
	}

	assert.Equal(t, 3, m.eng.GetElapsedSeconds())
	assert.Contains(t, m.View(), "Time: 3s")
}

func TestModel_Win(t *testing.T) {
	m := newTestModel(t, engine.TimedConfig())

	for pos := 0; pos < engine.TileCount; pos += 4 {
		for _, p := range []int{pos, pos + 2, pos + 1, pos + 3} {
			m.cursor = p
			press(m, keyEnter)
		}
	}

	assert.True(t, m.eng.IsWon())
	assert.Empty(t, m.sched.pending, "win stops the clock")
	assert.Contains(t, m.View(), "Your score: 80")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, engine.RelaxedConfig())

	cmd := press(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_ViewHidesFaceDownValues(t *testing.T) {
	m := newTestModel(t, engine.RelaxedConfig())

	view := m.View()
	assert.Contains(t, view, "Score: 0")
	assert.Contains(t, view, "Pairs: 0/8")
	assert.NotContains(t, view, "Time:")

	for _, tile := range m.eng.GetState().Tiles {
		assert.Zero(t, tile.Value, "face-down value leaked at %d", tile.Position)
	}
}

func TestModel_ClockTickKeepsIgnoredReason(t *testing.T) {
	m := newTestModel(t, engine.TimedConfig())

	// 0 and 2 match; clicking 0 again is ignored
	press(m, keyEnter, keyRight, keyRight, keyEnter)
	m.cursor = 0
	press(m, keyEnter)
	require.Equal(t, engine.OutcomeIgnored, m.lastRes.Outcome)

	ids := pendingIDs(m)
	require.Len(t, ids, 1)
	m.Update(timerFiredMsg{id: ids[0]})

	assert.Equal(t, engine.OutcomeIgnored, m.lastRes.Outcome)
	assert.Contains(t, m.View(), m.lastRes.Reason)
}
