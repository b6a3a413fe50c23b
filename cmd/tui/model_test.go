package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-pregel/pkg/graphio"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/logging"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

func testModel(t *testing.T) (model, *bool) {
	t.Helper()
	j := job.Default()
	j.Graph.Path = "edges.txt"
	j.PageRank.MaxIterations = 4
	cancelled := false
	return newModel(&j, make(chan tea.Msg), func() { cancelled = true }), &cancelled
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModel_Progress(t *testing.T) {
	m, _ := testModel(t)
	if m.phase != phaseLoading {
		t.Fatalf("phase = %v, want loading", m.phase)
	}

	m = update(t, m, graphLoadedMsg{stats: graphio.Stats{Nodes: 3, Relationships: 3}})
	if m.phase != phaseRunning {
		t.Fatalf("phase = %v, want running", m.phase)
	}

	for step := 0; step < 2; step++ {
		m = update(t, m, superstepMsg{Superstep: step, ActiveNodes: 3, MessagesSent: 3, Duration: time.Millisecond})
	}
	if len(m.rows) != 2 || m.totalMessages != 6 {
		t.Errorf("rows = %d, messages = %d", len(m.rows), m.totalMessages)
	}
	if got := m.percent(); got != 0.5 {
		t.Errorf("percent = %v, want 0.5", got)
	}

	view := m.View()
	for _, want := range []string{"Pregel pagerank monitor", "running", "Superstep:  2 / 4", "Messages:   6"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_Done(t *testing.T) {
	m, _ := testModel(t)
	run := &pregel.Result{Status: pregel.Converged, DidConverge: true, RanIterations: 3}
	m = update(t, m, doneMsg{outcome: &job.Outcome{Algorithm: job.PageRank, Run: run}})

	if m.phase != phaseDone {
		t.Fatalf("phase = %v, want done", m.phase)
	}
	if m.percent() != 1 {
		t.Errorf("percent = %v, want 1 after convergence", m.percent())
	}
	if view := m.View(); !strings.Contains(view, "converged after 3 supersteps") {
		t.Errorf("view missing result:\n%s", view)
	}
}

func TestModel_Error(t *testing.T) {
	m, _ := testModel(t)
	m = update(t, m, doneMsg{err: errors.New("failed to load graph")})
	if view := m.View(); !strings.Contains(view, "failed to load graph") {
		t.Errorf("view missing error:\n%s", view)
	}
}

func TestModel_Keys(t *testing.T) {
	m, cancelled := testModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if !*cancelled {
		t.Error("c did not cancel the run")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestWaitForEvent_ClosedChannel(t *testing.T) {
	events := make(chan tea.Msg)
	close(events)
	if msg := waitForEvent(events)(); msg != nil {
		t.Errorf("msg = %v, want nil", msg)
	}
}

func TestRunJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.txt")
	if err := os.WriteFile(path, []byte("1 2\n2 3\n3 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	j := job.Default()
	j.Graph.Path = path
	j.PageRank.Concurrency = 2

	events := make(chan tea.Msg, 256)
	runJob(context.Background(), &j, logging.NewNopLogger(), events)

	var supersteps int
	var done *doneMsg
	for msg := range events {
		switch msg := msg.(type) {
		case superstepMsg:
			supersteps++
		case doneMsg:
			done = &msg
		}
	}
	if done == nil || done.err != nil {
		t.Fatalf("done = %+v", done)
	}
	if supersteps != done.outcome.Run.RanIterations {
		t.Errorf("supersteps = %d, want %d", supersteps, done.outcome.Run.RanIterations)
	}
}
