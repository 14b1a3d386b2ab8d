package main

import (
	"os"

	"vehiclestream/internal/stats"
)

// newStatsWriter sets up the stats sinks from flags and env vars. It returns
// a nil writer when no sink is configured, plus a cleanup function.
func newStatsWriter(printStats bool, statsFile string) (stats.Writer, func(), error) {
	cleanup := func() {}
	var writers []stats.Writer

	if printStats {
		writers = append(writers, stats.NewJSONStdoutWriter())
	}
	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		gw, err := stats.NewGreptimeDBWriter(endpoint, database, "")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}
	if statsFile != "" {
		fw, err := stats.NewFileWriter(statsFile)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		cleanup = func() { fw.Close() }
	}

	switch len(writers) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return writers[0], cleanup, nil
	default:
		return stats.NewMultiWriter(writers...), cleanup, nil
	}
}
