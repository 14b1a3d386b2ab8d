// WebSocket handler pushing full fleet snapshots to every client
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"vehiclestream/internal/logging"
	"vehiclestream/internal/vehicle"
)

const (
	DefaultSendInterval = 500 * time.Millisecond
	writeWait           = 10 * time.Second
)

var errEncode = errors.New("encode snapshot")

// Source supplies the vehicle set to send. sim.State implements it.
type Source interface {
	Snapshot() vehicle.Snapshot
}

// Stats holds live connection counters.
type Stats struct {
	Open          int64 `json:"open"`
	Accepted      int64 `json:"accepted"`
	MessagesSent  int64 `json:"messages_sent"`
	WriteFailures int64 `json:"write_failures"`
}

// Server upgrades every request to a WebSocket and streams snapshots
// until the client goes away or the request context ends.
type Server struct {
	source       Source
	sendInterval time.Duration
	upgrader     ws.Upgrader

	wg       sync.WaitGroup
	open     atomic.Int64
	accepted atomic.Int64
	sent     atomic.Int64
	failures atomic.Int64
}

// NewServer creates a Server. A non-positive sendInterval falls back to
// DefaultSendInterval.
func NewServer(source Source, sendInterval time.Duration) *Server {
	if sendInterval <= 0 {
		sendInterval = DefaultSendInterval
	}
	return &Server{
		source:       source,
		sendInterval: sendInterval,
		upgrader: ws.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP accepts the connection and runs its send loop.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Hijacked connections are invisible to http.Server.Shutdown, so the
	// handler is counted before the upgrade.
	s.wg.Add(1)
	defer s.wg.Done()

	log := logging.FromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.serveConn(r.Context(), conn)
}

// serveConn owns conn and closes it on every exit path.
func (s *Server) serveConn(parent context.Context, conn *ws.Conn) {
	id := uuid.NewString()
	log := logging.FromContext(parent).With("conn_id", id, "remote", conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer conn.Close()

	s.accepted.Add(1)
	s.open.Add(1)
	defer s.open.Add(-1)
	log.Info("client connected")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		discardInbound(conn, cancel)
	}()

	ticker := time.NewTicker(s.sendInterval)
	defer ticker.Stop()

	for {
		if err := s.send(conn); err != nil {
			if !errors.Is(err, errEncode) {
				s.failures.Add(1)
				log.Info("client disconnected", "reason", "write failed", "err", err)
				return
			}
			log.Error("skipping snapshot", "err", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			if parent.Err() != nil {
				_ = conn.WriteControl(ws.CloseMessage,
					ws.FormatCloseMessage(ws.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				log.Info("client disconnected", "reason", "shutdown")
			} else {
				log.Info("client disconnected", "reason", "peer closed")
			}
			return
		}
	}
}

func (s *Server) send(conn *ws.Conn) error {
	data, err := s.source.Snapshot().Encode()
	if err != nil {
		return fmt.Errorf("%w: %v", errEncode, err)
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

// discardInbound drains client frames so control frames are processed and
// a closed peer is noticed. Clients are not expected to send anything.
func discardInbound(conn *ws.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Open:          s.open.Load(),
		Accepted:      s.accepted.Load(),
		MessagesSent:  s.sent.Load(),
		WriteFailures: s.failures.Load(),
	}
}

// Wait blocks until every connection handler has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}
