// Package tui is a terminal front end for the memory match game. The board
// runs in-process on the bubbletea update loop; no server is involved.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	tileStyle = lipgloss.NewStyle().
			Width(5).
			Height(1).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	hiddenStyle  = tileStyle.Foreground(lipgloss.Color("240"))
	matchedStyle = tileStyle.BorderForeground(lipgloss.Color("#04B575")).Faint(true)
	cursorColor  = lipgloss.Color("#FFD700")

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	winStyle    = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	// One color per pair value
	valueColors = []lipgloss.Color{"", "#FF5F87", "#5FAFFF", "#FFAF00", "#AF87FF", "#00D7AF", "#FF8700", "#87D700", "#D7D7D7"}
)

// Model is the bubbletea model for a local game
type Model struct {
	eng      *engine.GameEngine
	sched    *teaScheduler
	keys     KeyMap
	help     help.Model
	cursor   int
	lastRes  engine.ClickResult
	quitting bool
}

// NewModel starts a game with config. Engine options are passed through,
// e.g. engine.WithRand for a reproducible shuffle.
func NewModel(config *engine.GameConfig, opts ...engine.Option) (*Model, error) {
	sched := newTeaScheduler()
	eng, err := engine.NewEngine(config, sched, opts...)
	if err != nil {
		return nil, err
	}
	return &Model{
		eng:   eng,
		sched: sched,
		keys:  Keys,
		help:  help.New(),
	}, nil
}

// Run plays a game in the terminal until the user quits
func Run(config *engine.GameConfig, opts ...engine.Option) error {
	m, err := NewModel(config, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init arms the timers queued while the first game was dealt
func (m *Model) Init() tea.Cmd {
	return m.sched.drain()
}

// Update handles keys and timer fires
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerFiredMsg:
		resolving := m.eng.GetPhase() == engine.PhaseResolvingMismatch
		m.sched.fire(msg.id)
		if resolving && m.eng.GetPhase() != engine.PhaseResolvingMismatch {
			// Clicks ignored during the flip-back no longer apply
			m.lastRes = engine.ClickResult{}
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1, 0)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1, 0)
		case key.Matches(msg, m.keys.Left):
			m.moveCursor(0, -1)
		case key.Matches(msg, m.keys.Right):
			m.moveCursor(0, 1)
		case key.Matches(msg, m.keys.Flip):
			m.lastRes = m.eng.Click(m.cursor)
		case key.Matches(msg, m.keys.Restart):
			m.eng.Restart()
			m.lastRes = engine.ClickResult{}
		}
	}

	return m, m.sched.drain()
}

func (m *Model) moveCursor(dRow, dCol int) {
	row, col := engine.PositionToCell(m.cursor)
	row = (row + dRow + engine.GridRows) % engine.GridRows
	col = (col + dCol + engine.GridCols) % engine.GridCols
	m.cursor = engine.CellToPosition(row, col)
}

// View renders the board, the status line and key help
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.eng.GetState()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Memory Match"))
	b.WriteString("\n\n")
	b.WriteString(m.renderBoard(state))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.renderStatus(state)))
	b.WriteString("\n")
	if state.Won {
		b.WriteString(winStyle.Render(state.Message))
	} else {
		b.WriteString(state.Message)
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderBoard(state *engine.GameState) string {
	rows := make([]string, 0, engine.GridRows)
	for row := 0; row < engine.GridRows; row++ {
		cells := make([]string, 0, engine.GridCols)
		for col := 0; col < engine.GridCols; col++ {
			pos := engine.CellToPosition(row, col)
			cells = append(cells, m.renderTile(state.Tiles[pos], pos == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTile(t engine.TileView, focused bool) string {
	var style lipgloss.Style
	label := "?"
	switch {
	case t.Matched:
		style = matchedStyle.Foreground(valueColor(t.Value))
		label = fmt.Sprint(t.Value)
	case t.FaceUp:
		style = tileStyle.Bold(true).Foreground(valueColor(t.Value))
		label = fmt.Sprint(t.Value)
	default:
		style = hiddenStyle
	}
	if focused {
		style = style.BorderForeground(cursorColor).BorderStyle(lipgloss.ThickBorder())
	}
	return style.Render(label)
}

func valueColor(v int) lipgloss.Color {
	if v <= 0 || v >= len(valueColors) {
		return lipgloss.Color("252")
	}
	return valueColors[v]
}

func (m *Model) renderStatus(state *engine.GameState) string {
	parts := []string{
		fmt.Sprintf("Score: %d", state.Score),
		fmt.Sprintf("Pairs: %d/%d", state.MatchedPairs, state.TotalPairs),
	}
	if state.ClockEnabled {
		parts = append(parts, fmt.Sprintf("Time: %ds", state.ElapsedSeconds))
	}
	if m.lastRes.Outcome == engine.OutcomeIgnored {
		parts = append(parts, m.lastRes.Reason)
	}
	return strings.Join(parts, "  ")
}
