package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"vehiclestream/internal/vehicle"
)

// snapshotMsg carries a snapshot read from the stream.
type snapshotMsg struct {
	snap vehicle.Snapshot
	at   time.Time
}

// streamDoneMsg reports that the stream ended.
type streamDoneMsg struct{ err error }

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04b575"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fba609"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

type model struct {
	url      string
	count    int
	table    table.Model
	width    int
	received int
	last     time.Time
	counts   map[vehicle.Status]int
	done     bool
	err      error
}

func newModel(url string, count int) model {
	cols := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Type", Width: 11},
		{Title: "Status", Width: 7},
		{Title: "Lat", Width: 11},
		{Title: "Lng", Width: 11},
		{Title: "Alt", Width: 6},
		{Title: "Hdg", Width: 7},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(4))
	return model{url: url, count: count, table: t, counts: map[vehicle.Status]int{}}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case snapshotMsg:
		m.received++
		m.last = msg.at
		m.setRows(msg.snap)
		if m.count > 0 && m.received >= m.count {
			return m, tea.Quit
		}
	case streamDoneMsg:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

func (m *model) setRows(snap vehicle.Snapshot) {
	rows := make([]table.Row, 0, len(snap))
	counts := make(map[vehicle.Status]int, 3)
	for _, v := range snap {
		rows = append(rows, table.Row{
			v.ID,
			string(v.Type),
			string(v.Status),
			fmt.Sprintf("%.6f", v.Lat),
			fmt.Sprintf("%.6f", v.Lng),
			fmt.Sprintf("%.0f", v.Alt),
			fmt.Sprintf("%.1f", v.Hdg),
		})
		counts[v.Status]++
	}
	m.counts = counts
	m.table.SetHeight(len(rows) + 1)
	m.table.SetRows(rows)
}

func (m model) View() string {
	sections := []string{
		titleStyle.Render("vehiclestream") + " " + dimStyle.Render(m.url),
		m.table.View(),
		m.renderSummary(),
		m.renderStatus(),
		dimStyle.Render("q quit"),
	}
	return strings.Join(sections, "\n")
}

func (m model) renderSummary() string {
	return fmt.Sprintf("%s  %s  %s",
		okStyle.Render(fmt.Sprintf("OK %d", m.counts[vehicle.StatusOK])),
		warnStyle.Render(fmt.Sprintf("WARN %d", m.counts[vehicle.StatusWarn])),
		errStyle.Render(fmt.Sprintf("ERROR %d", m.counts[vehicle.StatusError])),
	)
}

func (m model) renderStatus() string {
	var line string
	switch {
	case m.err != nil:
		line = errStyle.Render("stream failed: " + m.err.Error())
	case m.done:
		line = "stream closed by server"
	case m.received == 0:
		line = "waiting for first snapshot"
	default:
		line = fmt.Sprintf("%d snapshots, last at %s", m.received, m.last.Format(time.TimeOnly))
	}
	if m.width > 0 {
		line = wordwrap.String(line, m.width)
	}
	return line
}

// Run shows the live vehicle table until the user quits, ctx is done or
// count snapshots have been shown. It returns the stream error, if any.
func Run(ctx context.Context, url string, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(url, count), tea.WithAltScreen())
	go func() {
		err := Stream(ctx, url, func(s vehicle.Snapshot) error {
			p.Send(snapshotMsg{snap: s, at: time.Now()})
			return nil
		})
		p.Send(streamDoneMsg{err: err})
	}()
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
