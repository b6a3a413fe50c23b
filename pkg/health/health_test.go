package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

func fixed(status Status) CheckFunc {
	return func() Check {
		return Check{Status: status}
	}
}

func TestChecker_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name   string
		checks []Status
		want   Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.checks {
				c.RegisterLivenessCheck(string(rune('a'+i)), fixed(s))
			}
			resp := c.CheckLiveness()
			if resp.Status != tt.want {
				t.Errorf("Status = %s, want %s", resp.Status, tt.want)
			}
			if len(resp.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(resp.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_SeparatesLivenessAndReadiness(t *testing.T) {
	c := NewChecker()
	c.RegisterReadinessCheck("graph", fixed(StatusUnhealthy))

	if got := c.CheckLiveness().Status; got != StatusHealthy {
		t.Errorf("liveness = %s, want healthy", got)
	}
	resp := c.CheckReadiness()
	if resp.Status != StatusUnhealthy {
		t.Errorf("readiness = %s, want unhealthy", resp.Status)
	}
	if resp.Checks["graph"].Name != "graph" {
		t.Errorf("check name = %q, want registered name", resp.Checks["graph"].Name)
	}
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		wantLive  int
		wantReady int
	}{
		{"healthy", StatusHealthy, http.StatusOK, http.StatusOK},
		{"degraded", StatusDegraded, http.StatusOK, http.StatusServiceUnavailable},
		{"unhealthy", StatusUnhealthy, http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.RegisterLivenessCheck("x", fixed(tt.status))
			c.RegisterReadinessCheck("x", fixed(tt.status))

			rec := httptest.NewRecorder()
			c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.wantLive {
				t.Errorf("liveness code = %d, want %d", rec.Code, tt.wantLive)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("body status = %s, want %s", resp.Status, tt.status)
			}

			rec = httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rec.Code != tt.wantReady {
				t.Errorf("readiness code = %d, want %d", rec.Code, tt.wantReady)
			}
		})
	}
}

func TestRunTracker(t *testing.T) {
	now := time.Unix(1000, 0)
	tracker := NewRunTracker(time.Minute)
	tracker.now = func() time.Time { return now }

	if c := tracker.Check(); c.Status != StatusHealthy || c.Message != "idle" {
		t.Errorf("idle check = %s %q", c.Status, c.Message)
	}

	tracker.Begin("pagerank")
	now = now.Add(30 * time.Second)
	if c := tracker.Check(); c.Status != StatusHealthy || c.Message != "running" {
		t.Errorf("running check = %s %q", c.Status, c.Message)
	}

	now = now.Add(time.Minute)
	if c := tracker.Check(); c.Status != StatusDegraded {
		t.Errorf("stalled check = %s, want degraded", c.Status)
	}

	tracker.OnSuperstep(pregel.SuperstepStats{RunID: "r1", Algorithm: "pagerank", Superstep: 3})
	c := tracker.Check()
	if c.Status != StatusHealthy {
		t.Errorf("after progress = %s, want healthy", c.Status)
	}
	if c.Details["superstep"] != 3 || c.Details["run_id"] != "r1" {
		t.Errorf("details = %v", c.Details)
	}

	tracker.OnFinish(pregel.RunSummary{RunID: "r1", Status: pregel.Converged, RanIterations: 4})
	now = now.Add(time.Hour)
	if c := tracker.Check(); c.Status != StatusHealthy || c.Message != "converged" {
		t.Errorf("finished check = %s %q", c.Status, c.Message)
	}
}

func TestRunTracker_Failed(t *testing.T) {
	tracker := NewRunTracker(0)
	tracker.Begin("wcc")
	tracker.OnFinish(pregel.RunSummary{Err: errors.New("node 4 failed")})

	c := tracker.Check()
	if c.Status != StatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy", c.Status)
	}
	if c.Message != "node 4 failed" {
		t.Errorf("Message = %q", c.Message)
	}
}

func TestRunTracker_NoStallDetection(t *testing.T) {
	now := time.Unix(0, 0)
	tracker := NewRunTracker(0)
	tracker.now = func() time.Time { return now }
	tracker.Begin("lpa")
	now = now.Add(24 * time.Hour)

	if c := tracker.Check(); c.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", c.Status)
	}
}

func TestReadyFlag(t *testing.T) {
	flag := NewReadyFlag("graph")
	if c := flag.Check(); c.Status != StatusUnhealthy {
		t.Errorf("unset flag = %s", c.Status)
	}
	flag.Set()
	if c := flag.Check(); c.Status != StatusHealthy || c.Name != "graph" {
		t.Errorf("set flag = %s %q", c.Status, c.Name)
	}
}

func TestMemoryCheck(t *testing.T) {
	tests := []struct {
		name   string
		budget int64
		used   uint64
		want   Status
	}{
		{"no budget", 0, 1 << 40, StatusHealthy},
		{"within budget", 1000, 500, StatusHealthy},
		{"near budget", 1000, 950, StatusDegraded},
		{"over budget", 1000, 1001, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := MemoryCheck(tt.budget, func() uint64 { return tt.used })()
			if check.Status != tt.want {
				t.Errorf("Status = %s, want %s", check.Status, tt.want)
			}
			if check.Details["heap_alloc_bytes"] != tt.used {
				t.Errorf("heap_alloc_bytes = %v, want %d", check.Details["heap_alloc_bytes"], tt.used)
			}
		})
	}
}

func TestMemoryCheck_DefaultReader(t *testing.T) {
	if check := MemoryCheck(0, nil)(); check.Status != StatusHealthy {
		t.Errorf("Status = %s", check.Status)
	}
}
