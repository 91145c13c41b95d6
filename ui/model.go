// Package ui is the terminal front end: a home screen to pick the number of
// mines, the game screen, and the game over screen. It holds no game logic;
// everything it shows comes from a Session and the events it publishes.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/they4kman/minefield/game"
)

// Session is the part of game.Engine the UI needs
type Session interface {
	Reveal(row, col int) (game.Outcome, error)
	Restart() error
	Quit() error
	Snapshot() (game.State, *game.Board, error)
	Subscribe() (<-chan game.Event, func())
	Close() error
}

// SessionFactory starts a session with the given number of mines
type SessionFactory func(numMines int) (Session, error)

type screen int

const (
	screenHome screen = iota
	screenGame
	screenGameOver
)

// eventMsg carries an engine event, tagged with the session it came from so
// that events from an abandoned session are dropped
type eventMsg struct {
	generation int
	event      game.Event
}

type eventsClosedMsg struct {
	generation int
}

type Model struct {
	newSession SessionFactory
	styles     Styles

	screen     screen
	mineChoice int

	session     Session
	generation  int
	events      <-chan game.Event
	unsubscribe func()

	state    game.State
	board    *game.Board
	cursor   game.Position
	gameOver *game.GameOverPayload
	err      error
}

func NewModel(newSession SessionFactory, styles Styles) Model {
	model := Model{
		newSession: newSession,
		styles:     styles,
		screen:     screenHome,
	}
	for i, choice := range game.MineChoices {
		if choice == game.DefaultNumMines {
			model.mineChoice = i
		}
	}
	return model
}

func (m Model) Init() tea.Cmd {
	return nil
}

func waitForEvent(generation int, events <-chan game.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{generation: generation}
		}
		return eventMsg{generation: generation, event: event}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.endSession()
			return m, tea.Quit
		}

		switch m.screen {
		case screenHome:
			return m.updateHome(msg)
		case screenGame:
			return m.updateGame(msg)
		case screenGameOver:
			return m.updateGameOver(msg)
		}

	case eventMsg:
		if msg.generation != m.generation || m.session == nil {
			return m, nil
		}
		m.handleEvent(msg.event)
		return m, waitForEvent(m.generation, m.events)

	case eventsClosedMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "up", "h", "k":
		if m.mineChoice > 0 {
			m.mineChoice--
		}
	case "right", "down", "l", "j":
		if m.mineChoice < len(game.MineChoices)-1 {
			m.mineChoice++
		}
	case "enter", " ":
		return m.startSession()
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	size := m.state.Size
	switch msg.String() {
	case "up", "k":
		if m.cursor.Row > 0 {
			m.cursor.Row--
		}
	case "down", "j":
		if m.cursor.Row < size-1 {
			m.cursor.Row++
		}
	case "left", "h":
		if m.cursor.Col > 0 {
			m.cursor.Col--
		}
	case "right", "l":
		if m.cursor.Col < size-1 {
			m.cursor.Col++
		}
	case "enter", " ":
		if _, err := m.session.Reveal(m.cursor.Row, m.cursor.Col); err != nil {
			m.err = err
		}
		m.refresh()
	case "q", "esc":
		if err := m.session.Quit(); err != nil {
			m.err = err
		}
		m.endSession()
		m.screen = screenHome
	}
	return m, nil
}

func (m Model) updateGameOver(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "enter":
		if err := m.session.Restart(); err != nil {
			m.err = err
			return m, nil
		}
		m.gameOver = nil
		m.cursor = game.Position{}
		m.screen = screenGame
		m.refresh()
	case "h", "q", "esc":
		m.endSession()
		m.screen = screenHome
	}
	return m, nil
}

func (m Model) startSession() (tea.Model, tea.Cmd) {
	session, err := m.newSession(game.MineChoices[m.mineChoice])
	if err != nil {
		m.err = err
		return m, nil
	}

	m.session = session
	m.generation++
	m.events, m.unsubscribe = session.Subscribe()
	m.cursor = game.Position{}
	m.gameOver = nil
	m.err = nil
	m.screen = screenGame
	m.refresh()

	return m, waitForEvent(m.generation, m.events)
}

func (m *Model) endSession() {
	if m.session == nil {
		return
	}
	m.unsubscribe()
	if err := m.session.Close(); err != nil {
		m.err = err
	}
	m.session = nil
	m.events = nil
	m.board = nil
	m.gameOver = nil
}

func (m *Model) refresh() {
	state, board, err := m.session.Snapshot()
	if err != nil {
		m.err = err
		return
	}
	m.state = state
	m.board = board
}

func (m *Model) handleEvent(event game.Event) {
	switch event.Kind {
	case game.EventNavigate:
		switch event.Navigation.Destination {
		case game.DestinationGameOver:
			m.gameOver = event.Navigation.GameOver
			m.screen = screenGameOver
		case game.DestinationHome:
			m.screen = screenHome
		}
		m.state = event.State
	case game.EventTick, game.EventHighScoreLoaded, game.EventHighScoreSaved, game.EventHighScoreFailed:
		m.state = event.State
	default:
		m.refresh()
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("Mines"))
	sb.WriteString("\n\n")

	switch m.screen {
	case screenHome:
		m.viewHome(&sb)
	case screenGame:
		m.viewGame(&sb)
	case screenGameOver:
		m.viewGameOver(&sb)
	}

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Error.Render(m.err.Error()))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m Model) viewHome(sb *strings.Builder) {
	sb.WriteString("Can you navigate through the mines?\n\n")
	sb.WriteString("Number of mines: ")
	for i, choice := range game.MineChoices {
		style := m.styles.Choice
		if i == m.mineChoice {
			style = m.styles.SelectedChoice
		}
		sb.WriteString(style.Render(fmt.Sprint(choice)))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Help.Render("←/→ choose • enter start game • q exit"))
	sb.WriteString("\n")
}

func (m Model) viewGame(sb *strings.Builder) {
	sb.WriteString(m.styles.Score.Render(fmt.Sprintf("Current Score: %d", m.state.Score)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.HighScore.Render(fmt.Sprintf("High Score: %d", m.state.HighScore)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Timer.Render(fmt.Sprintf("Timer: %d", m.state.TimerSeconds)))
	sb.WriteString("\n\n")

	if m.board != nil {
		for row := 0; row < m.board.Size(); row++ {
			for col := 0; col < m.board.Size(); col++ {
				cell := m.board.CellAt(row, col)

				var rendered string
				switch {
				case !cell.IsOpen():
					rendered = m.styles.ClosedCell.Render("■")
				case cell.IsMine():
					rendered = m.styles.MineCell.Render("*")
				default:
					rendered = m.styles.SafeCell.Render("◆")
				}

				if m.cursor.Row == row && m.cursor.Col == col {
					rendered = m.styles.Cursor.Render(rendered)
				}
				sb.WriteString(rendered)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("Tap to reveal cells. Avoid the mines!"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render("arrows move • enter reveal • q quit"))
	sb.WriteString("\n")
}

func (m Model) viewGameOver(sb *strings.Builder) {
	if m.gameOver == nil {
		return
	}

	if m.gameOver.IsWinner {
		sb.WriteString(m.styles.Win.Render("You win!"))
	} else {
		sb.WriteString(m.styles.Loss.Render("Game Over"))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Score.Render(fmt.Sprintf("Score: %d", m.gameOver.Score)))
	sb.WriteString("\n")
	sb.WriteString(m.styles.HighScore.Render(fmt.Sprintf("High Score: %d", m.gameOver.HighScore)))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Help.Render("r restart • h home"))
	sb.WriteString("\n")
}
