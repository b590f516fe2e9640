package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spacebio/internal/domain"
)

// QAPort is the TUI-facing subset of the QA service.
type QAPort interface {
	AnswerQuestion(query string, k int) (domain.Answer, error)
	CorpusStats() domain.CorpusStats
	AnswerK() int
}

// Model is the Bubble Tea model for the query console.
type Model struct {
	service  QAPort
	input    textinput.Model
	viewport viewport.Model
	answer   *domain.Answer
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model instance.
func New(service QAPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	stats := service.CorpusStats()
	return Model{
		service:  service,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Loaded %d passages. Type to ask.", stats.TotalPassages),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.service.AnswerQuestion(q, m.service.AnswerK())
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
				} else {
					m.status = fmt.Sprintf("Verdict for %q", q)
					m.answer = &ans
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.Evidence) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Evidence)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Evidence) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Evidence)) % len(m.answer.Evidence)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("SpaceBio Evidence Search")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	a := m.answer
	banner := verdictStyle(a.Verdict).Render(fmt.Sprintf("%s  (confidence %.3f)", a.Verdict, a.Confidence))
	var b strings.Builder
	b.WriteString(banner)
	b.WriteString("\n\n")
	b.WriteString(a.Answer)
	b.WriteString("\n")
	for i, card := range a.Evidence {
		b.WriteString("\n")
		head := fmt.Sprintf("[%d/%d] %s (%s)", i+1, len(a.Evidence), card.Title, card.Section)
		if i == m.cursor {
			head = highlightStyle.Render(head)
		}
		b.WriteString(head)
		b.WriteString("\n")
		if i == m.cursor && card.Snippet != "" {
			b.WriteString(card.Snippet)
			b.WriteString("\n")
		}
		if i == m.cursor && card.Link != "" {
			b.WriteString(card.Link)
			b.WriteString("\n")
		}
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func verdictStyle(v domain.Verdict) lipgloss.Style {
	switch v {
	case domain.VerdictAgree:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	case domain.VerdictMixed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
