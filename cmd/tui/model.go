package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/search"
)

// Finder runs lookups and personalized generation against a state.
type Finder interface {
	Lookup(ctx context.Context, state *model.State, mode search.Mode, query, targetUser string) (*search.SearchResult, error)
	GeneratePersonalized(ctx context.Context, state *model.State, domainEmailIndex int, targetName string) ([]model.GeneratedEmail, error)
}

const (
	inputQuery = iota
	inputTarget
)

// lookupDoneMsg is sent when a lookup finished; the state already holds the outcome.
type lookupDoneMsg struct {
	err error
}

// personalizeDoneMsg is sent when personalized generation finished.
type personalizeDoneMsg struct {
	count int
	err   error
}

// Model is the TUI model following the Bubble Tea architecture
type Model struct {
	ctx    context.Context
	finder Finder
	state  *model.State

	modes   []search.Mode
	modeIdx int

	inputs     []textinput.Model
	focusIndex int

	// cursor over the domain emails, used by personalize
	cursor int

	spinner spinner.Model
	// one flag per action so a lookup and a personalize never overlap
	lookingUp     bool
	personalizing bool

	status string

	width  int
	height int

	quitting bool
}

// keyMap defines the key bindings for the TUI
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Tab         key.Binding
	Source      key.Binding
	Personalize key.Binding
	Remove      key.Binding
	Reset       key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "prev address"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next address"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "search"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Source: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "switch source"),
	),
	Personalize: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "personalize"),
	),
	Remove: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "drop newest result"),
	),
	Reset: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

// NewModel creates a TUI model that renders state and runs lookups through finder.
func NewModel(ctx context.Context, finder Finder, state *model.State, defaultMode search.Mode) Model {
	if state == nil {
		state = model.NewState()
	}

	modes := search.Modes()
	modeIdx := 0
	for i, mode := range modes {
		if mode == defaultMode {
			modeIdx = i
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	return Model{
		ctx:     ctx,
		finder:  finder,
		state:   state,
		modes:   modes,
		modeIdx: modeIdx,
		inputs:  createInputs(),
		spinner: sp,
	}
}

// createInputs creates the query and target user input fields
func createInputs() []textinput.Model {
	inputs := make([]textinput.Model, 2)

	inputs[inputQuery] = textinput.New()
	inputs[inputQuery].Placeholder = "acme.com or company name"
	inputs[inputQuery].Focus()
	inputs[inputQuery].CharLimit = 256
	inputs[inputQuery].Width = 50
	inputs[inputQuery].Prompt = "🔎 "
	inputs[inputQuery].PromptStyle = inputLabelStyle

	inputs[inputTarget] = textinput.New()
	inputs[inputTarget].Placeholder = "Jane Doe (optional)"
	inputs[inputTarget].CharLimit = 128
	inputs[inputTarget].Width = 40
	inputs[inputTarget].Prompt = "👤 "
	inputs[inputTarget].PromptStyle = inputLabelStyle

	return inputs
}

// Mode returns the selected search source.
func (m Model) Mode() search.Mode {
	return m.modes[m.modeIdx]
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) loading() bool {
	return m.lookingUp || m.personalizing
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case lookupDoneMsg:
		m.lookingUp = false
		m.cursor = 0
		if msg.err == nil {
			m.status = "Search completed"
		} else {
			m.status = ""
		}
		return m, nil

	case personalizeDoneMsg:
		m.personalizing = false
		if msg.err == nil {
			m.status = fmt.Sprintf("Generated %d personalized addresses", msg.count)
		} else {
			m.status = ""
		}
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

// handleKey handles key events
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		for i := range m.inputs {
			if i == m.focusIndex {
				m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, nil

	case key.Matches(msg, keys.Source):
		m.modeIdx = (m.modeIdx + 1) % len(m.modes)
		return m, nil

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.state.DomainEmails())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.loading() {
			return m, nil
		}
		query := strings.TrimSpace(m.inputs[inputQuery].Value())
		if query == "" {
			m.state.SetError("Please enter a search query")
			return m, nil
		}
		m.lookingUp = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.lookupCmd(m.Mode(), query, m.inputs[inputTarget].Value()))

	case key.Matches(msg, keys.Personalize):
		if m.loading() {
			return m, nil
		}
		if len(m.state.DomainEmails()) == 0 {
			m.state.SetError("Run a hunter lookup first to pick a sample address")
			return m, nil
		}
		m.personalizing = true
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, m.personalizeCmd(m.cursor, m.inputs[inputTarget].Value()))

	case key.Matches(msg, keys.Remove):
		if !m.loading() {
			m.state.RemoveResult(0)
		}
		return m, nil

	case key.Matches(msg, keys.Reset):
		if !m.loading() {
			m.state.Reset()
			m.cursor = 0
			m.status = ""
			for i := range m.inputs {
				m.inputs[i].Reset()
			}
		}
		return m, nil
	}

	return m.updateFocusedInput(msg)
}

func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) lookupCmd(mode search.Mode, query, target string) tea.Cmd {
	ctx, finder, state := m.ctx, m.finder, m.state
	return func() tea.Msg {
		_, err := finder.Lookup(ctx, state, mode, query, target)
		return lookupDoneMsg{err: err}
	}
}

func (m Model) personalizeCmd(index int, target string) tea.Cmd {
	ctx, finder, state := m.ctx, m.finder, m.state
	return func() tea.Msg {
		emails, err := finder.GeneratePersonalized(ctx, state, index, target)
		return personalizeDoneMsg{count: len(emails), err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return subtitleStyle.Render("Goodbye! 👋\n")
	}

	snap := m.state.Snapshot()
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("📧 Smart Email Finder") + "\n")
	sb.WriteString(m.renderSources() + "\n\n")

	labels := []string{"Search Query:", "Target User:"}
	for i, input := range m.inputs {
		sb.WriteString(inputLabelStyle.Render(labels[i]) + "\n")
		sb.WriteString(input.View() + "\n")
	}

	switch {
	case m.lookingUp:
		sb.WriteString("\n" + m.spinner.View() + " Searching...\n")
	case m.personalizing:
		sb.WriteString("\n" + m.spinner.View() + " Generating personalized emails...\n")
	case snap.Error != "":
		sb.WriteString("\n" + errorStyle.Render("❌ "+snap.Error) + "\n")
	case m.status != "":
		sb.WriteString("\n" + successStyle.Render("✅ "+m.status) + "\n")
	}

	sb.WriteString(renderResults(snap))
	sb.WriteString(m.renderDomainEmails(snap))
	sb.WriteString(renderFound(snap))
	sb.WriteString(renderGenerated(snap))

	help := []string{
		keys.Enter.Help().Key + " search",
		keys.Tab.Help().Key + " next field",
		keys.Source.Help().Key + " source",
		keys.Personalize.Help().Key + " personalize",
		keys.Remove.Help().Key + " drop",
		keys.Reset.Help().Key + " reset",
		keys.Quit.Help().Key + " quit",
	}
	sb.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return boxStyle.Render(sb.String())
}

func (m Model) renderSources() string {
	parts := make([]string, 0, len(m.modes))
	for i, mode := range m.modes {
		label := string(mode)
		if i == m.modeIdx {
			parts = append(parts, activeSourceStyle.Render(label))
		} else {
			parts = append(parts, subtitleStyle.Render(label))
		}
	}
	return inputLabelStyle.Render("Source: ") + strings.Join(parts, "  ")
}

func renderResults(snap model.Snapshot) string {
	if len(snap.SearchResults) == 0 {
		return ""
	}

	lines := []string{sectionStyle.Render(fmt.Sprintf("Search Results (%d)", len(snap.SearchResults)))}
	for _, r := range snap.SearchResults {
		summary := fmt.Sprintf("%s · %s · %s", r.Provider, r.Query, r.Timestamp.Format("15:04:05"))
		switch {
		case r.Source == search.SourceEmailDomainSearch:
			summary += fmt.Sprintf(" · %d addresses", len(r.DomainEmails))
		case r.AnswerBox != nil && r.AnswerBox.Answer != "":
			summary += " · " + r.AnswerBox.Answer
		case r.AbstractText != "":
			summary += " · " + truncate(r.AbstractText, 60)
		default:
			summary += fmt.Sprintf(" · %d entries", len(r.OrganicEntries))
		}
		lines = append(lines, itemStyle.Render(summary))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) renderDomainEmails(snap model.Snapshot) string {
	if len(snap.DomainEmails) == 0 {
		return ""
	}

	lines := []string{sectionStyle.Render("Hunter.io Addresses")}
	for i, e := range snap.DomainEmails {
		row := fmt.Sprintf("%s %s <%s> %s %d%%",
			e.FirstName, e.LastName, e.Address, e.Position, e.ConfidencePercent)
		if i == m.cursor {
			lines = append(lines, selectedItemStyle.Render("▸ "+row))
		} else {
			lines = append(lines, itemStyle.Render(row))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func renderFound(snap model.Snapshot) string {
	if len(snap.FoundEmails) == 0 {
		return ""
	}

	lines := []string{sectionStyle.Render("Found In Results")}
	for _, e := range snap.FoundEmails {
		lines = append(lines, itemStyle.Render(fmt.Sprintf("%s · %s", e.Address, e.SourceDescription)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func renderGenerated(snap model.Snapshot) string {
	if len(snap.GeneratedEmails) == 0 {
		if snap.RawGeneration != "" {
			return sectionStyle.Render("Generation Output (unstructured)") + "\n" +
				subtitleStyle.Render(truncate(snap.RawGeneration, 400)) + "\n"
		}
		return ""
	}

	lines := []string{sectionStyle.Render("Generated Addresses")}
	for _, e := range snap.GeneratedEmails {
		lines = append(lines, itemStyle.Render(fmt.Sprintf("%s · %s · %s · %s",
			e.Address, e.Name, e.ConfidenceLabel, e.SourceDescription)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
