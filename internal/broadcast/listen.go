package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"vehiclestream/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// ListenAndServe binds addr and serves h until ctx is done. A bind failure
// is returned immediately.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, h)
}

// Serve runs an http.Server on ln. Request contexts derive from ctx, so
// cancelling it also ends hijacked WebSocket connections.
func Serve(ctx context.Context, ln net.Listener, h http.Handler) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s: %w", ln.Addr(), err)
	}
	log.Info("listener stopped", "addr", ln.Addr().String())
	return nil
}
