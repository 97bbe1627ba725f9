package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/dartfix/dartfix"
	"github.com/sokinpui/dartfix/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type summaryMsg struct {
	model.Summary
}

type progressMsg struct {
	current, total int
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// Executor runs a migration and reports progress.
type Executor interface {
	Execute() (model.Summary, error)
	SetProgressCallback(cb dartfix.ProgressUpdate)
}

// programRef is shared by every copy of Model so progress can be sent
// once the program exists.
type programRef struct {
	p *tea.Program
}

// --- Model ---
type Model struct {
	app     Executor
	spinner spinner.Model
	state   state
	current int
	total   int
	summary summaryMsg
	err     error
	program *programRef
}

type state int

const (
	stateProcessing state = iota
	stateSummary
	stateError
)

func New(app Executor) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	m := Model{
		app:     app,
		spinner: s,
		state:   stateProcessing,
		program: &programRef{},
	}
	app.SetProgressCallback(func(current, total int) {
		if m.program.p != nil {
			m.program.p.Send(progressMsg{current: current, total: total})
		}
	})
	return m
}

// SetProgram wires the running program for progress updates.
func (m Model) SetProgram(p *tea.Program) {
	m.program.p = p
}

// Err returns the error the run ended with, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runApp)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case progressMsg:
		// Pooled workers may deliver updates out of order.
		if msg.total != m.total || msg.current > m.current {
			m.current = msg.current
		}
		m.total = msg.total
		return m, nil

	case summaryMsg:
		m.state = stateSummary
		m.summary = msg
		return m, tea.Quit

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateProcessing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateProcessing:
		if m.total > 0 {
			return fmt.Sprintf("%s Migrating... [%d/%d]", m.spinner.View(), m.current, m.total)
		}
		return fmt.Sprintf("%s Scanning...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error()) + "\n"
	case stateSummary:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m Model) renderSummary() string {
	var b strings.Builder

	if m.summary.Message != "" {
		b.WriteString(headerStyle.Render(m.summary.Message))
		b.WriteString("\n\n")
	}

	if len(m.summary.Modified) > 0 {
		label := "Modified:"
		if m.summary.DryRun {
			label = "Would modify:"
		}
		b.WriteString(successStyle.Render(label))
		b.WriteString("\n")
		for _, f := range m.summary.Modified {
			b.WriteString(fmt.Sprintf("  %s\n", pathStyle.Render(f)))
		}
	}
	if len(m.summary.Failed) > 0 {
		b.WriteString(errorStyle.Render("Failed:"))
		b.WriteString("\n")
		for _, r := range m.summary.Results {
			if r.State == model.Failed {
				b.WriteString(fmt.Sprintf("  %s %s\n", pathStyle.Render(r.Path), faintStyle.Render(r.Err.Error())))
			}
		}
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("Total files modified: %d", len(m.summary.Modified))))
	b.WriteString(faintStyle.Render(fmt.Sprintf(" (%d scanned, %d replacements)", m.summary.Scanned, m.summary.Replacements)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) runApp() tea.Msg {
	summary, err := m.app.Execute()
	if err != nil {
		// Check for detailed error to print stack
		if e, ok := err.(*dartfix.DetailedError); ok {
			// The TUI will exit, so we can print to stderr here for the stack trace.
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", e.Stack)
		}
		return errorMsg{err}
	}
	return summaryMsg{
		Summary: summary,
	}
}
