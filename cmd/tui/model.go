package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-pregel/pkg/graphio"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type phase int

const (
	phaseLoading phase = iota
	phaseRunning
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseLoading:
		return "loading graph"
	case phaseRunning:
		return "running"
	default:
		return "finished"
	}
}

type keyMap struct {
	Cancel key.Binding
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
}

var keys = keyMap{
	Cancel: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cancel run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cancel, k.Up, k.Down, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Cancel, k.Quit}}
}

// graphLoadedMsg is sent once the edge list is in memory
type graphLoadedMsg struct {
	stats graphio.Stats
}

// superstepMsg is sent at every superstep barrier
type superstepMsg pregel.SuperstepStats

// doneMsg is the last event of a run
type doneMsg struct {
	outcome  *job.Outcome
	exported int64
	err      error
}

type tickMsg time.Time

type model struct {
	job    *job.Job
	events <-chan tea.Msg
	cancel context.CancelFunc

	table    table.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	phase         phase
	started       time.Time
	now           time.Time
	graph         graphio.Stats
	maxIterations int
	last          pregel.SuperstepStats
	totalMessages int64
	rows          []table.Row
	outcome       *job.Outcome
	exported      int64
	err           error
	width         int
}

func newModel(j *job.Job, events <-chan tea.Msg, cancel context.CancelFunc) model {
	columns := []table.Column{
		{Title: "Superstep", Width: 10},
		{Title: "Active", Width: 12},
		{Title: "Messages", Width: 12},
		{Title: "Duration", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	now := time.Now()
	return model{
		job:           j,
		events:        events,
		cancel:        cancel,
		table:         t,
		progress:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:          help.New(),
		keys:          keys,
		started:       now,
		now:           now,
		maxIterations: j.EngineConfig().MaxIterations,
	}
}

// waitForEvent delivers the next run event. A closed channel yields nil,
// which stops the subscription.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.phase == phaseDone {
			return m, nil
		}
		return m, tickCmd()

	case graphLoadedMsg:
		m.graph = msg.stats
		m.phase = phaseRunning
		return m, waitForEvent(m.events)

	case superstepMsg:
		stats := pregel.SuperstepStats(msg)
		m.last = stats
		m.totalMessages += stats.MessagesSent
		m.rows = append(m.rows, table.Row{
			fmt.Sprintf("%d", stats.Superstep),
			fmt.Sprintf("%d", stats.ActiveNodes),
			fmt.Sprintf("%d", stats.MessagesSent),
			stats.Duration.Round(time.Microsecond).String(),
		})
		m.table.SetRows(m.rows)
		m.table.GotoBottom()
		return m, waitForEvent(m.events)

	case doneMsg:
		m.phase = phaseDone
		m.outcome = msg.outcome
		m.exported = msg.exported
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Cancel):
			m.cancel()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// percent is the share of the superstep budget used so far
func (m model) percent() float64 {
	if m.phase == phaseDone && m.err == nil && m.outcome != nil && m.outcome.Run.DidConverge {
		return 1
	}
	if m.maxIterations <= 0 || len(m.rows) == 0 {
		return 0
	}
	return min(1, float64(m.last.Superstep+1)/float64(m.maxIterations))
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Pregel %s monitor", m.job.Algorithm)))
	s.WriteString("\n")

	elapsed := m.now.Sub(m.started).Round(time.Second)
	stats := fmt.Sprintf(`Graph:      %s
Nodes:      %d
Rels:       %d
Phase:      %s
Superstep:  %d / %d
Messages:   %d
Elapsed:    %s`,
		m.job.Graph.Path,
		m.graph.Nodes,
		m.graph.Relationships,
		m.phase,
		len(m.rows),
		m.maxIterations,
		m.totalMessages,
		elapsed,
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		statsBoxStyle.Render(stats),
		"",
		m.progress.ViewAs(m.percent()),
		"",
		m.table.View(),
	)
	s.WriteString(contentStyle.Render(body))

	if m.phase == phaseDone {
		s.WriteString("\n\n")
		s.WriteString(contentStyle.Render(m.result()))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))
	return s.String()
}

func (m model) result() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}
	run := m.outcome.Run
	msg := fmt.Sprintf("%s after %d supersteps in %s", run.Status, run.RanIterations, run.Duration.Round(time.Millisecond))
	if m.job.Output.Target != "" {
		msg += fmt.Sprintf(", %d rows exported to %s", m.exported, job.Describe(m.job.Output))
	}
	if run.Status != pregel.Converged {
		return errorStyle.Render("! " + msg)
	}
	return successStyle.Render("✓ " + msg)
}
