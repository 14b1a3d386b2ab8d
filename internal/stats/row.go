// Server statistics rows and sinks
package stats

import (
	"os"
	"time"
)

// Row captures one sample of server activity.
type Row struct {
	ServerID      string    `json:"server_id"`      // TAG
	Ticks         uint64    `json:"ticks"`          // FIELD
	Phase         float64   `json:"phase"`          // FIELD
	Vehicles      int       `json:"vehicles"`       // FIELD
	Connections   int64     `json:"connections"`    // FIELD
	Accepted      int64     `json:"accepted"`       // FIELD
	MessagesSent  int64     `json:"messages_sent"`  // FIELD
	WriteFailures int64     `json:"write_failures"` // FIELD
	LastTick      time.Time `json:"last_tick"`      // not stored in GreptimeDB
	Timestamp     time.Time `json:"ts"`             // TIME INDEX
}

// TableName holds the table name used when writing to GreptimeDB.
// It defaults to "vehiclestream_stats" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "vehiclestream_stats"
}()

func (Row) TableName() string {
	return TableName
}

// Writer is implemented by every stats sink.
type Writer interface {
	WriteStats(Row) error
}

// Optional: writers may support batch mode.
type batchWriter interface {
	WriteStatsBatch([]Row) error
}
