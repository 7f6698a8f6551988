// Package tui is a terminal version of the submission form's two scored
// fields with a reading-level label that updates on every keystroke.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/a3tai/irb-packager/internal/readability"
)

const (
	fieldConsent = iota
	fieldStudyInfo
	fieldCount
)

const (
	defaultWidth  = 72
	fieldHeight   = 6
	minFieldWidth = 20
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// Model holds the consent and study information fields and the latest feedback
type Model struct {
	fields   [fieldCount]textarea.Model
	focused  int
	trigger  *readability.Trigger
	feedback readability.Feedback
	width    int
}

// NewModel creates the form. The trigger's display is pointed at the model so
// every recomputation lands in the rendered label.
func NewModel(trigger *readability.Trigger, consent, studyInfo string) *Model {
	if trigger == nil {
		trigger = readability.NewTrigger(nil, readability.TriggerConfig{})
	}

	m := &Model{trigger: trigger, width: defaultWidth}
	placeholders := [fieldCount]string{
		"Paste or type the consent form text...",
		"Describe the study for participants...",
	}
	initial := [fieldCount]string{consent, studyInfo}

	for i := range m.fields {
		ta := textarea.New()
		ta.Placeholder = placeholders[i]
		ta.CharLimit = 0
		ta.ShowLineNumbers = false
		ta.SetHeight(fieldHeight)
		ta.SetWidth(defaultWidth)
		ta.SetValue(initial[i])
		m.fields[i] = ta
	}
	m.fields[fieldConsent].Focus()

	trigger.Attach(readability.DisplayFunc(func(fb readability.Feedback) {
		m.feedback = fb
	}))
	m.recompute()

	return m
}

// Init starts the cursor blinking
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update routes key presses to the focused field and recomputes feedback
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(minFieldWidth, msg.Width-2)
		for i := range m.fields {
			m.fields[i].SetWidth(m.width)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			return m, m.focusNext()
		}
	}

	var cmd tea.Cmd
	m.fields[m.focused], cmd = m.fields[m.focused].Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.recompute()
	}
	return m, cmd
}

// focusNext moves focus to the other field
func (m *Model) focusNext() tea.Cmd {
	m.fields[m.focused].Blur()
	m.focused = (m.focused + 1) % fieldCount
	return m.fields[m.focused].Focus()
}

// recompute reads both field values and hands them to the trigger
func (m *Model) recompute() {
	m.trigger.Changed(m.ConsentText(), m.StudyInfoText())
}

// ConsentText returns the current consent field value
func (m *Model) ConsentText() string {
	return m.fields[fieldConsent].Value()
}

// StudyInfoText returns the current study information field value
func (m *Model) StudyInfoText() string {
	return m.fields[fieldStudyInfo].Value()
}

// Feedback returns the most recent feedback shown in the label
func (m *Model) Feedback() readability.Feedback {
	return m.feedback
}

// View renders the form
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("IRB Submission Form"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Consent Form"))
	b.WriteString("\n")
	b.WriteString(m.fields[fieldConsent].View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Study Information"))
	b.WriteString("\n")
	b.WriteString(m.fields[fieldStudyInfo].View())
	b.WriteString("\n\n")
	b.WriteString(m.readingLevel())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("tab: switch field • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) readingLevel() string {
	label := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.feedback.Color)).
		Render(m.feedback.Label)

	line := "Reading Level: " + label
	if m.feedback.Available {
		line += dimStyle.Render(fmt.Sprintf("  (grade %.2f, %d words, %d sentences)",
			m.feedback.Grade, m.feedback.Stats.Words, m.feedback.Stats.Sentences))
	}
	return line
}
