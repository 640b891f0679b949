package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a-h/chatbridge/client"
	"github.com/a-h/chatbridge/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type ChatCommand struct {
	ChatBridgeURL string `help:"The URL of the chat bridge server." env:"CHAT_BRIDGE_URL" default:"http://localhost:9020"`
	Width         int    `help:"The width to wrap messages at." default:"80"`
	LogLevel      string `help:"The log level to use." env:"LOG_LEVEL" default:"error"`
}

func (c ChatCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)
	cbc := client.New(c.ChatBridgeURL)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(c.Width-4))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	send := func(message string) tea.Cmd {
		return func() tea.Msg {
			resp, err := cbc.ChatPost(ctx, models.ChatPostRequest{Message: &message})
			if err != nil {
				log.Error("failed to send message", slog.Any("error", err))
				return chatEntry{Sender: senderBot, Text: chatFailureText, Failed: true}
			}
			return chatEntry{Sender: senderBot, Text: resp.Reply}
		}
	}

	p := tea.NewProgram(newModel(send, renderer, c.Width), tea.WithContext(ctx))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

type sender string

const (
	senderUser sender = "user"
	senderBot  sender = "bot"
)

// chatFailureText replaces the reply when the server can't be reached or returns an error.
const chatFailureText = "Something went wrong!"

type chatEntry struct {
	Sender sender
	Text   string
	Failed bool
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var titleStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Padding(0, 1)

var senderToStyle = map[sender]lipgloss.Style{
	senderUser: lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Background(Background).Foreground(Pink),
	senderBot:  lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Foreground(Cyan),
}

var senderToIcon = map[sender]string{
	senderUser: "🧑",
	senderBot:  "🤖",
}

var (
	failedStyle   = lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Foreground(Red)
	thinkingStyle = lipgloss.NewStyle().Padding(0, 1).Margin(1, 1, 0).Foreground(Comment).Italic(true)
)

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	renderer *glamour.TermRenderer
	width    int

	// entries in the order they were sent and received.
	entries []chatEntry
	waiting bool
	send    func(message string) tea.Cmd
}

func newModel(send func(message string) tea.Cmd, renderer *glamour.TermRenderer, width int) model {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 2000

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	vp := viewport.New(width, 20)
	vp.SetContent(titleStyle.Render("chatbridge"))

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return model{
		textarea: ta,
		viewport: vp,
		renderer: renderer,
		width:    width,
		send:     send,
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) formatEntry(e chatEntry) string {
	if e.Failed {
		return failedStyle.Render(senderToIcon[e.Sender] + " " + e.Text)
	}
	style, ok := senderToStyle[e.Sender]
	if !ok {
		return e.Text
	}
	icon, ok := senderToIcon[e.Sender]
	if !ok {
		icon = "🤷"
	}
	if e.Sender == senderBot && m.renderer != nil {
		if md, err := m.renderer.Render(e.Text); err == nil {
			return style.Render(icon + "\n" + strings.Trim(md, "\n"))
		}
	}
	return style.Render(wordwrap.String(strings.TrimSpace(icon+" "+e.Text), m.width-4))
}

func (m model) render() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("chatbridge"))
	sb.WriteString("\n")
	for _, e := range m.entries {
		sb.WriteString(m.formatEntry(e))
		sb.WriteString("\n")
	}
	if m.waiting {
		sb.WriteString(thinkingStyle.Render("🤖 thinking..."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m *model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chatEntry:
		m.entries = append(m.entries, msg)
		m.waiting = false
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.textarea.SetWidth(msg.Width)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := m.textarea.Value()

			// Don't send empty messages, or a second message before the reply.
			if strings.TrimSpace(v) == "" || m.waiting {
				return m, nil
			}

			m.textarea.Reset()
			m.entries = append(m.entries, chatEntry{Sender: senderUser, Text: v})
			m.waiting = true
			m.refresh()
			return m, m.send(v)
		default:
			// Send all other keypresses to the textarea.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m model) View() string {
	return fmt.Sprintf("%s\n\n%s",
		m.viewport.View(),
		m.textarea.View(),
	) + "\n\n"
}
