package watch

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"clipper/internal/status"
)

// Reader loads the current status document.
type Reader func() (status.Status, error)

// statusMsg carries one poll result.
type statusMsg struct {
	doc status.Status
	err error
}

type tickMsg time.Time

// Model is the bubbletea model for the status view.
type Model struct {
	read     Reader
	interval time.Duration
	exitDone bool

	doc      status.Status
	loaded   bool
	err      error
	width    int
	quitting bool
}

// New returns a model polling read every interval. When exitWhenDone is set
// the program quits once a run reaches completed or error.
func New(read Reader, interval time.Duration, exitWhenDone bool) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{read: read, interval: interval, exitDone: exitWhenDone}
}

// Init fetches the document immediately.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	read := m.read
	return func() tea.Msg {
		doc, err := read()
		return statusMsg{doc: doc, err: err}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles key presses, window resizes, and poll results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		return m, m.fetch()
	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			m.doc = msg.doc
			m.loaded = true
			if m.exitDone && (m.doc.State == status.StateCompleted || m.doc.State == status.StateError) {
				m.quitting = true
				return m, tea.Quit
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// Status returns the last document received.
func (m Model) Status() status.Status { return m.doc }

// View renders the step list.
func (m Model) View() string {
	if !m.loaded && m.err == nil {
		return "Loading status...\n"
	}
	var b strings.Builder
	done, total := m.doc.Progress()
	fmt.Fprintf(&b, "%s  %s  %d/%d\n",
		titleStyle.Render("clipper"),
		stateStyle(m.doc.State).Render(Humanize(string(m.doc.State))),
		done, total,
	)
	if m.doc.Upload != nil {
		b.WriteString(detailStyle.Render("upload: "+*m.doc.Upload) + "\n")
	}

	lines := make([]string, 0, len(m.doc.Steps))
	for _, step := range m.doc.Steps {
		line := fmt.Sprintf("%s %s", stepIcon(step.State), labelStyle.Render(step.Label))
		if step.Detail != "" {
			line += " " + detailStyle.Render(step.Detail)
		}
		lines = append(lines, line)
	}
	box := boxStyle
	if m.width > 4 {
		box = box.MaxWidth(m.width)
	}
	b.WriteString(box.Render(strings.Join(lines, "\n")) + "\n")

	if m.doc.Summary != nil {
		b.WriteString(summaryStyle.Render(*m.doc.Summary) + "\n")
	}
	if m.doc.Error != nil {
		b.WriteString(errorStyle.Render("error: "+*m.doc.Error) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("read failed: "+m.err.Error()) + "\n")
	}
	if !m.quitting {
		b.WriteString(helpStyle.Render("q quit • r refresh") + "\n")
	}
	return b.String()
}
