package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/oneiro-ai/oneiro/internal/service"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// advanceMsg carries one embedded entry's progress.
type advanceMsg struct {
	done  int
	total int
	title string
}

// finishedMsg carries the final backfill result.
type finishedMsg struct {
	result *service.BackfillResult
	err    error
}

// backfillModel is the bubbletea model for embedding backfill progress.
// Progress events are pushed in from the worker goroutine via Send.
type backfillModel struct {
	progress progress.Model
	theme    Theme

	done     int
	total    int
	current  string
	result   *service.BackfillResult
	err      error
	finished bool
	quitting bool

	// cancel aborts the worker when the user quits mid-run.
	cancel func()
}

// newBackfillModel creates a progress model for a backfill run.
func newBackfillModel(cancel func()) backfillModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return backfillModel{
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command.
func (m backfillModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m backfillModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case advanceMsg:
		m.done = msg.done
		m.total = msg.total
		m.current = msg.title
		return m, nil

	case finishedMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m backfillModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m backfillModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	if m.total == 0 {
		return "Scanning for entries to index...\n"
	}

	pct := float64(m.done) / float64(m.total)
	status := m.theme.statusStyle().Render("[indexing]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d dreams", m.done, m.total)
	hint := m.theme.hintStyle().Render(fmt.Sprintf("embedding %q — Ctrl+C to stop", m.current))

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m backfillModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nBackfill stopped; already-indexed entries are kept.\n")
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Backfill failed: %s\n", m.err))
	}

	if m.result != nil {
		output := m.theme.completedStyle().Render("✓ Backfill complete") + "\n\n"
		output += fmt.Sprintf("  Entries embedded: %d\n", m.result.Embedded)
		if m.result.Skipped > 0 {
			output += fmt.Sprintf("  Entries skipped:  %d\n", m.result.Skipped)
		}
		if len(m.result.Errors) > 0 {
			output += m.theme.errorStyle().Render(fmt.Sprintf("\nWarnings (%d):\n", len(m.result.Errors)))
			for _, e := range m.result.Errors {
				output += fmt.Sprintf("  • %s\n", e)
			}
		}
		return output
	}

	return m.theme.completedStyle().Render("✓ Backfill complete\n")
}
