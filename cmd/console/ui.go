package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/mud-engine/pkg/actor"
)

const PlaceHolderText = "Type a command (try 'help')..."

// entry is one line of the transcript.
type entry struct {
	command  string
	response string
	isError  bool
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	game         Game
	character    *actor.Character
	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Farewell is set when the engine ends the session.
	Farewell string
}

type commandResultMsg struct {
	command  string
	echo     bool
	quit     bool
	response string
}

type characterMsg struct {
	character *actor.Character
	err       error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(2).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	responseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	combatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, game Game, c *actor.Character, created bool) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render("> ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	greeting := fmt.Sprintf("Welcome back, %s.", c.Name)
	if created {
		greeting = fmt.Sprintf("Welcome, %s. Your adventure begins.", c.Name)
	}

	return ConsoleUI{
		config:       cfg,
		game:         game,
		character:    c,
		transcript:   []entry{{response: greeting}},
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func writeMetadata(c *actor.Character) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")
	if c == nil {
		return content.String()
	}

	content.WriteString(c.Name + "\n")
	content.WriteString(fmt.Sprintf("Level %d\n\n", c.Stats.Level))

	content.WriteString("Health:\n")
	content.WriteString(fmt.Sprintf("%d/%d\n\n", c.Stats.CurrentHP, c.Stats.MaxHP))

	content.WriteString("Experience:\n")
	content.WriteString(fmt.Sprintf("%d/%d\n\n", c.Stats.XP, c.Stats.XPToNextLevel))

	content.WriteString("Money:\n")
	content.WriteString(fmt.Sprintf("%d coins\n\n", c.Money))

	content.WriteString("Location:\n")
	content.WriteString(c.World + "\n" + c.CurrentRoom + "\n\n")

	if c.CombatState.Engaged() && c.CombatState.Mob != nil {
		content.WriteString(combatStyle.Render("IN COMBAT") + "\n")
		content.WriteString(fmt.Sprintf("%s %d/%d\n\n", c.CombatState.Mob.Name,
			c.CombatState.Mob.Stats.CurrentHP, c.CombatState.Mob.Stats.MaxHP))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /copy: Copy last reply\n")

	return content.String()
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 4

	var content strings.Builder
	content.WriteString(titleStyle.Render("MUD ENGINE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))) + "\n\n")

	for _, e := range m.transcript {
		if e.command != "" {
			content.WriteString(userStyle.Render("> "+e.command) + "\n")
		}
		style := responseStyle
		if e.isError {
			style = errorStyle
		}
		content.WriteString(style.Render(wordwrap.String(e.response, max(chatWidth, 20))) + "\n\n")
	}
	if m.loading {
		content.WriteString(promptStyle.Render("...") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.runCommand("look", false))
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 2
	metaWidth := m.width - chatWidth - 4

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 6
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 3
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.character))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			m.loading = true
			m.writeChatContent()
			return m, m.runCommand(input, true)
		}

	case commandResultMsg:
		m.loading = false
		e := entry{response: msg.response}
		if msg.echo {
			e.command = msg.command
		}
		m.transcript = append(m.transcript, e)
		m.writeChatContent()
		if msg.quit {
			m.Farewell = msg.response
			return m, tea.Quit
		}
		return m, m.refreshCharacter()

	case characterMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, entry{response: "Error: " + msg.err.Error(), isError: true})
			m.writeChatContent()
		} else {
			m.character = msg.character
			m.metaViewport.SetContent(writeMetadata(m.character))
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.transcript = append(m.transcript, entry{response: `Console commands:
• /help - Show this help
• /copy - Copy the last reply to the clipboard
• /clear - Clear the transcript
• Ctrl+C - Quit

Type 'help' for the game's own command list.`})

	case "/copy":
		last := m.lastResponse()
		if err := clipboard.WriteAll(last); err != nil {
			m.transcript = append(m.transcript, entry{response: "Could not copy: " + err.Error(), isError: true})
		} else {
			m.transcript = append(m.transcript, entry{response: "Copied."})
		}

	case "/clear":
		m.transcript = nil

	default:
		m.transcript = append(m.transcript, entry{response: "Unknown console command: " + input, isError: true})
	}
	m.writeChatContent()
	return m, nil
}

// lastResponse is the most recent engine reply.
func (m ConsoleUI) lastResponse() string {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if e := m.transcript[i]; !e.isError {
			return e.response
		}
	}
	return ""
}

func (m ConsoleUI) runCommand(input string, echo bool) tea.Cmd {
	name := m.character.ID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()
		quit, response := m.game.Execute(ctx, name, input)
		return commandResultMsg{command: input, echo: echo, quit: quit, response: response}
	}
}

func (m ConsoleUI) refreshCharacter() tea.Cmd {
	name := m.character.ID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c, err := m.game.GetCharacter(ctx, name)
		return characterMsg{c, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved after every command.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 2
	metaWidth := m.width - chatWidth - 4

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 1).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
