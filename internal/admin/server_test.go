package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vehiclestream/internal/broadcast"
	"vehiclestream/internal/logging"
	"vehiclestream/internal/sim"
	"vehiclestream/internal/stats"
	"vehiclestream/internal/vehicle"
)

var tickAt = time.Date(2024, 1, 1, 10, 30, 7, 250_000_000, time.UTC)

type fixedConns struct{}

func (fixedConns) Stats() broadcast.Stats {
	return broadcast.Stats{Open: 2, Accepted: 7, MessagesSent: 30, WriteFailures: 5}
}

func newTestServer(t *testing.T) (*Server, *sim.Simulator) {
	t.Helper()
	vehicles, centres := vehicle.DefaultFleet()
	st, err := sim.NewState(vehicles, centres)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	simulator := sim.NewSimulator(st, sim.DefaultMotion(), time.Second, func() time.Time { return tickAt })
	reporter := stats.NewReporter("srv-test", st, fixedConns{}, nil, 0, nil)
	return NewServer(st, reporter), simulator
}

func TestHandleVehicles(t *testing.T) {
	server, simulator := newTestServer(t)
	simulator.Step()

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	snap, err := vehicle.DecodeSnapshot(body)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(snap) != 3 || snap[0].ID != "1" || math.Abs(snap[0].Lat-51.53) > 1e-9 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestHandleStats(t *testing.T) {
	server, simulator := newTestServer(t)
	simulator.Step()

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	var row stats.Row
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if row.ServerID != "srv-test" || row.Ticks != 1 || row.Connections != 2 || row.MessagesSent != 30 {
		t.Errorf("unexpected stats: %+v", row)
	}
	if !row.LastTick.Equal(tickAt) {
		t.Errorf("last_tick = %v, want %v", row.LastTick, tickAt)
	}
}

// failingWriter is a ResponseWriter whose body writes always fail.
type failingWriter struct {
	header http.Header
	code   int
}

func (f *failingWriter) Header() http.Header       { return f.header }
func (f *failingWriter) WriteHeader(code int)      { f.code = code }
func (f *failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandleStatsLogsWriteError(t *testing.T) {
	server, _ := newTestServer(t)
	var logs bytes.Buffer
	ctx := logging.NewContext(context.Background(), logging.NewWithOptions(&logs, "debug", "text"))

	req := httptest.NewRequest(http.MethodGet, "/stats", nil).WithContext(ctx)
	server.Handler().ServeHTTP(&failingWriter{header: http.Header{}}, req)

	if !strings.Contains(logs.String(), "encode stats") || !strings.Contains(logs.String(), "connection reset") {
		t.Fatalf("expected the write error to be logged, got %q", logs.String())
	}
}

func TestHandleIndex(t *testing.T) {
	server, simulator := newTestServer(t)
	simulator.Step()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status OK, got %v", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	page := string(body)
	for _, want := range []string{"srv-test", `class="WARN"`, "fixedwing", "51.530000", "at 10:30:07.250"} {
		if !strings.Contains(page, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Fatalf("unexpected health response: %d %q", w.Code, w.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
