package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/game"
)

// TUIModel is the Bubble Tea model for interactive play.
type TUIModel struct {
	game   *game.Game
	hint   bot.Strategy
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	events      *eventForwarder
	snapshot    game.Snapshot
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// GameEventMsg carries a game event into the Bubble Tea loop.
type GameEventMsg struct {
	Event game.GameEvent
}

// eventForwarder moves bus events onto a channel. Match resolution runs on
// timer goroutines, so events cannot touch the model directly.
type eventForwarder struct {
	ch chan game.GameEvent
}

func (f *eventForwarder) OnEvent(event game.GameEvent) {
	select {
	case f.ch <- event:
	default:
		// The model re-reads the snapshot on every command, so a dropped
		// event only delays a redraw.
	}
}

// NewTUIModel creates a model that plays g. hint may be nil to disable
// hints.
func NewTUIModel(g *game.Game, hint bot.Strategy, logger *log.Logger) *TUIModel {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Card number, r N for reserve, undo, discard, shuffle, hint, new"
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		game:        g,
		hint:        hint,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		events:      &eventForwarder{ch: make(chan game.GameEvent, 256)},
		snapshot:    g.Snapshot(),
		focusedPane: 1,
	}
	g.Events().Subscribe(m.events)
	m.AddLogEntry(HeaderStyle.Render(" Triple Stack ") + " " + InfoStyle.Render("type 'help' for commands"))
	return m
}

// Close stops forwarding game events.
func (m *TUIModel) Close() {
	m.game.Events().Unsubscribe(m.events)
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m *TUIModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return GameEventMsg{Event: <-m.events.ch}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case GameEventMsg:
		m.handleEvent(msg.Event)
		return m, m.waitForEvent()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updated dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if quit := m.processCommand(input); quit {
					m.quitting = true
					return m, tea.Sequence(tea.ClearScreen, tea.Quit)
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *TUIModel) handleEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.StateEvent:
		m.snapshot = e.Snapshot
	case game.PlayEvent:
		switch e.Type {
		case game.EventTypeDrop:
			m.AddLogEntry(SuccessStyle.Render("Matched a triple!"))
		case game.EventTypeWin:
			m.AddLogEntry(SuccessStyle.Render("Board cleared, you win! Type 'new' to play again."))
		case game.EventTypeLose:
			m.AddLogEntry(ErrorStyle.Render("Hand full, game over. Type 'new' to play again."))
		}
	}
}

// processCommand runs one line of input and reports whether to quit.
func (m *TUIModel) processCommand(input string) bool {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return false
	}
	defer m.refresh()

	cmd, args := parts[0], parts[1:]
	if n, err := strconv.Atoi(cmd); err == nil {
		m.selectField(n)
		return false
	}

	switch cmd {
	case "s", "select":
		if n, ok := m.argIndex(args); ok {
			m.selectField(n)
		}
	case "r", "reserve":
		if n, ok := m.argIndex(args); ok {
			m.selectReserve(n)
		}
	case "u", "undo":
		if !m.snapshot.CanUndo {
			m.AddLogEntry(WarningStyle.Render("Nothing to undo"))
			return false
		}
		m.game.Undo()
		m.AddLogEntry("Undid the last pick")
	case "d", "discard":
		if !m.snapshot.CanDiscard {
			m.AddLogEntry(WarningStyle.Render("Discard needs three free cards in hand and a discard left"))
			return false
		}
		m.game.Discard()
		m.AddLogEntry("Moved three cards to the reserve")
	case "shuffle":
		m.game.Shuffle()
		m.AddLogEntry("Shuffled the board")
	case "h", "hint":
		m.showHint()
	case "n", "new":
		if err := m.game.InitData(nil); err != nil {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Cannot start a new game: %v", err)))
			return false
		}
		m.AddLogEntry(HeaderStyle.Render(" New game ") + " " + InfoStyle.Render(m.game.ID()))
	case "help", "?":
		m.AddLogEntry(InfoStyle.Render("N or s N: pick clickable card N   r N: pick reserve card N"))
		m.AddLogEntry(InfoStyle.Render("undo, discard, shuffle, hint, new, quit"))
	case "q", "quit", "exit":
		return true
	default:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q", cmd)))
	}
	return false
}

func (m *TUIModel) argIndex(args []string) (int, bool) {
	if len(args) != 1 {
		m.AddLogEntry(ErrorStyle.Render("Expected one card number"))
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Invalid card number %q", args[0])))
		return 0, false
	}
	return n, true
}

func (m *TUIModel) selectField(n int) {
	clickable := m.snapshot.Clickable()
	if n < 1 || n > len(clickable) {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("No clickable card %d", n)))
		return
	}
	c := clickable[n-1]
	m.game.Select(c.ID)
	m.AddLogEntry("Picked " + renderTile(c.Type))
}

func (m *TUIModel) selectReserve(n int) {
	reserve := m.snapshot.RemoveList
	if n < 1 || n > len(reserve) {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("No reserve card %d", n)))
		return
	}
	c := reserve[n-1]
	m.game.SelectFromReserve(c.ID)
	m.AddLogEntry("Took " + renderTile(c.Type) + " from the reserve")
}

func (m *TUIModel) showHint() {
	if m.hint == nil {
		m.AddLogEntry(WarningStyle.Render("Hints are disabled"))
		return
	}
	move := m.hint.Next(m.snapshot)
	switch move.Kind {
	case bot.Select:
		for i, c := range m.snapshot.Clickable() {
			if c.ID == move.CardID {
				m.AddLogEntry(ActionsStyle.Render(fmt.Sprintf("Hint: pick card %d ", i+1)) + renderTile(c.Type))
				return
			}
		}
	case bot.SelectReserve:
		for i, c := range m.snapshot.RemoveList {
			if c.ID == move.CardID {
				m.AddLogEntry(ActionsStyle.Render(fmt.Sprintf("Hint: take reserve card %d ", i+1)) + renderTile(c.Type))
				return
			}
		}
	case bot.Pass:
		m.AddLogEntry(WarningStyle.Render("Hint: no useful move"))
		return
	}
	m.AddLogEntry(ActionsStyle.Render("Hint: " + move.Kind.String()))
}

func (m *TUIModel) refresh() {
	m.snapshot = m.game.Snapshot()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(1, m.width-2)).
		Height(max(1, actionHeight))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(25, lipgloss.Width(sidebarContent))
	paneHeight := max(1, m.height-actionHeight-4)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(1, m.width-sidebarWidth-4)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the game's counters.
func (m *TUIModel) renderSidebarPane() string {
	s := m.snapshot
	onField := 0
	for _, n := range s.Nodes {
		if n.State == game.Covered.String() || n.State == game.Clickable.String() {
			onField++
		}
	}

	status := InfoStyle.Render(string(s.Status))
	switch s.Status {
	case game.StatusWon:
		status = SuccessStyle.Render("won")
	case game.StatusLost:
		status = ErrorStyle.Render("lost")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Cards left: %d\n", onField)
	fmt.Fprintf(&b, "Hand: %d/%d\n", len(s.SelectedNodes), game.HandCapacity)
	fmt.Fprintf(&b, "Undo: %d/%d\n", s.UndoCount, s.MaxUndos)
	fmt.Fprintf(&b, "Discard: %d/%d\n", s.DiscardCount, s.MaxDiscards)
	if s.PendingMatches > 0 {
		fmt.Fprintf(&b, "Matching: %d\n", s.PendingMatches)
	}
	if s.Trap {
		b.WriteString(WarningStyle.Render("Trap board"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderActionPane shows the hand, reserve, clickable cards and input.
func (m *TUIModel) renderActionPane() string {
	s := m.snapshot
	var b strings.Builder

	b.WriteString(HandInfoStyle.Render("Hand:    "))
	b.WriteString(renderTiles(s.SelectedNodes, false))
	b.WriteString("\n")

	if len(s.RemoveList) > 0 {
		b.WriteString(HandInfoStyle.Render("Reserve: "))
		b.WriteString(renderTiles(s.RemoveList, true))
		b.WriteString("\n")
	}

	b.WriteString(ActionsStyle.Render("Field:   "))
	clickable := s.Clickable()
	if len(clickable) == 0 {
		b.WriteString(InfoStyle.Render("none"))
	} else {
		b.WriteString(renderTiles(clickable, true))
	}
	b.WriteString("\n")

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

func renderTiles(cards []game.CardView, numbered bool) string {
	parts := make([]string, 0, len(cards))
	for i, c := range cards {
		tile := renderTile(c.Type)
		if numbered {
			tile = fmt.Sprintf("%d:%s", i+1, tile)
		}
		parts = append(parts, tile)
	}
	return strings.Join(parts, " ")
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the log entries.
func (m *TUIModel) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Run starts an interactive program on the terminal.
func Run(g *game.Game, hint bot.Strategy, logger *log.Logger) error {
	m := NewTUIModel(g, hint, logger)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
