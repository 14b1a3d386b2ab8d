package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"vehiclestream/internal/broadcast"
	"vehiclestream/internal/logging"
	"vehiclestream/internal/sim"
	"vehiclestream/internal/stats"
	"vehiclestream/internal/vehicle"
)

// Server exposes the live fleet and stream counters over plain HTTP.
type Server struct {
	reporter *stats.Reporter
	state    *sim.State
	tpl      *template.Template
	mux      *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

func NewServer(state *sim.State, reporter *stats.Reporter) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{reporter: reporter, state: state, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /vehicles", s.handleVehicles)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the admin routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves the admin UI on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	return broadcast.ListenAndServe(ctx, addr, s.mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Stats    stats.Row
		Vehicles vehicle.Snapshot
	}{
		Stats:    s.reporter.Sample(),
		Vehicles: s.state.Snapshot(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render admin page", "err", err)
	}
}

func (s *Server) handleVehicles(w http.ResponseWriter, r *http.Request) {
	data, err := s.state.Snapshot().Encode()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.reporter.Sample()); err != nil {
		logging.FromContext(r.Context()).Error("encode stats", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
