package stats

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

const (
	defaultGreptimePort = 4001
	greptimeWriteWait   = 5 * time.Second
)

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes stats rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client greptimeClient
	table  string
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port") and
// writes into database. An empty tableName uses TableName.
func NewGreptimeDBWriter(endpoint, database, tableName string) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if tableName == "" {
		tableName = TableName
	}
	return &GreptimeDBWriter{client: client, table: tableName}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid GreptimeDB port %q: %w", portStr, err)
	}
	return host, port, nil
}

// WriteStats inserts a single row.
func (w *GreptimeDBWriter) WriteStats(row Row) error {
	return w.WriteStatsBatch([]Row{row})
}

// WriteStatsBatch inserts multiple rows.
func (w *GreptimeDBWriter) WriteStatsBatch(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.newTable()
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(
			r.ServerID,
			r.Ticks,
			r.Phase,
			int64(r.Vehicles),
			r.Connections,
			r.Accepted,
			r.MessagesSent,
			r.WriteFailures,
			r.Timestamp,
		); err != nil {
			return fmt.Errorf("greptime row: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteWait)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptime write %s: %w", w.table, err)
	}
	return nil
}

func (w *GreptimeDBWriter) newTable() (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	cols := []struct {
		name string
		kind types.ColumnType
	}{
		{"ticks", types.UINT64},
		{"phase", types.FLOAT64},
		{"vehicles", types.INT64},
		{"connections", types.INT64},
		{"accepted", types.INT64},
		{"messages_sent", types.INT64},
		{"write_failures", types.INT64},
	}
	if err := tbl.AddTagColumn("server_id", types.STRING); err != nil {
		return nil, err
	}
	for _, c := range cols {
		if err := tbl.AddFieldColumn(c.name, c.kind); err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	return tbl, nil
}
