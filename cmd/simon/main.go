package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"playbox/internal/game"
)

const (
	flashDuration = 300 * time.Millisecond
	failDuration  = 200 * time.Millisecond
)

var padColors = map[game.Color]lipgloss.Color{
	game.Red:   lipgloss.Color("#e53935"),
	game.Blue:  lipgloss.Color("#2196F3"),
	game.Green: lipgloss.Color("#8BC34A"),
	game.Pink:  lipgloss.Color("#f06292"),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	scoreStyle  = lipgloss.NewStyle().Faint(true)
	statusStyle = lipgloss.NewStyle().Bold(true).MarginTop(1).MarginBottom(1)
	failStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#e53935")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// flashClearMsg unlights a pad. It carries the flash sequence number so a
// stale timer cannot clear a newer flash.
type flashClearMsg struct{ seq int }

// failClearMsg ends the full-screen failure flash.
type failClearMsg struct{}

// advanceMsg is the deferred level-up. The epoch guard lives in the engine.
type advanceMsg struct{ epoch int }

// model owns the single mutable game session and translates engine events
// into rendering and timers.
type model struct {
	engine  *game.Engine
	session game.Session

	flash     game.Color // currently lit pad, empty when none
	flashSeq  int
	failing   bool // full-screen failure flash active
	gameOver  bool
	lastLevel int // level shown in the game-over message
}

func newModel() model {
	return model{
		engine: game.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

		if !m.session.Started {
			// Any key starts a round.
			var events []game.Event
			m.session, events = m.engine.Start(m.session)
			m.gameOver = false
			return m, m.apply(events)
		}

		if c, ok := keyColor(msg.String()); ok {
			var events []game.Event
			m.session, events = m.engine.Press(m.session, c)
			return m, m.apply(events)
		}
		return m, nil

	case advanceMsg:
		var events []game.Event
		m.session, events = m.engine.Advance(m.session, msg.epoch)
		return m, m.apply(events)

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case failClearMsg:
		m.failing = false
		return m, nil
	}
	return m, nil
}

// apply folds engine events into the model and returns the timers they need.
func (m *model) apply(events []game.Event) tea.Cmd {
	var cmds []tea.Cmd
	for _, ev := range events {
		switch ev := ev.(type) {
		case game.FlashEvent:
			m.flash = ev.Color
			m.flashSeq++
			seq := m.flashSeq
			cmds = append(cmds, tea.Tick(flashDuration, func(time.Time) tea.Msg {
				return flashClearMsg{seq: seq}
			}))

		case game.GameOverEvent:
			m.gameOver = true
			m.failing = true
			m.lastLevel = ev.Level
			cmds = append(cmds, tea.Tick(failDuration, func(time.Time) tea.Msg {
				return failClearMsg{}
			}))

		case game.AdvanceScheduledEvent:
			epoch := ev.Epoch
			cmds = append(cmds, tea.Tick(ev.Delay, func(time.Time) tea.Msg {
				return advanceMsg{epoch: epoch}
			}))
		}
	}
	return tea.Batch(cmds...)
}

func (m model) View() string {
	var status string
	switch {
	case m.session.Started:
		status = statusStyle.Render(fmt.Sprintf("Level %d", m.session.Level))
	case m.gameOver:
		status = statusStyle.Render(fmt.Sprintf(
			"Game Over! Your score was %d\nPress any key to restart", m.lastLevel))
	default:
		status = statusStyle.Render("Press any key to start")
	}
	if m.failing {
		status = failStyle.Render(status)
	}

	pads := make([]string, 0, len(game.Palette))
	for _, c := range game.Palette {
		pads = append(pads, m.renderPad(c))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Simon Says"),
		scoreStyle.Render(fmt.Sprintf("Highest Score: %d", m.session.Score)),
		status,
		lipgloss.JoinHorizontal(lipgloss.Top, pads...),
		helpStyle.Render("r/b/g/p: press a pad • q: quit"),
	)
}

func (m model) renderPad(c game.Color) string {
	style := lipgloss.NewStyle().
		Width(9).
		Align(lipgloss.Center).
		Padding(1, 0).
		Margin(0, 1).
		Foreground(padColors[c]).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(padColors[c])
	if m.flash == c {
		style = style.
			Background(padColors[c]).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)
	}
	return style.Render(string(c))
}

func keyColor(key string) (game.Color, bool) {
	switch key {
	case "r":
		return game.Red, true
	case "b":
		return game.Blue, true
	case "g":
		return game.Green, true
	case "p":
		return game.Pink, true
	}
	return "", false
}

func main() {
	if _, err := tea.NewProgram(newModel()).Run(); err != nil {
		log.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
