package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	ws "github.com/gorilla/websocket"

	"vehiclestream/internal/vehicle"
)

// ErrStop may be returned by a Stream callback to end the stream without error.
var ErrStop = errors.New("stop streaming")

const closeWait = time.Second

// Stream dials url and calls fn for every snapshot received. It returns nil
// when ctx is done, when the server closes the connection normally or when
// fn returns ErrStop.
func Stream(ctx context.Context, url string, fn func(vehicle.Snapshot) error) error {
	conn, _, err := ws.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
			time.Now().Add(closeWait))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read snapshot: %w", err)
		}
		snap, err := vehicle.DecodeSnapshot(data)
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if err := fn(snap); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// PrintLines writes every received snapshot to w as one JSON line. A
// positive count stops after that many snapshots.
func PrintLines(ctx context.Context, url string, w io.Writer, count int) error {
	n := 0
	return Stream(ctx, url, func(s vehicle.Snapshot) error {
		data, err := s.Encode()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
		n++
		if count > 0 && n >= count {
			return ErrStop
		}
		return nil
	})
}
