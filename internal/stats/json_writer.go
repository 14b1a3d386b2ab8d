package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONWriter prints stats rows as JSON lines.
type JSONWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONWriter {
	return &JSONWriter{out: os.Stdout}
}

// NewJSONWriter creates a JSONWriter writing to w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{out: w}
}

// WriteStats outputs a row in JSON format.
func (w *JSONWriter) WriteStats(row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteStatsBatch outputs multiple rows in JSON format.
func (w *JSONWriter) WriteStatsBatch(rows []Row) error {
	for _, r := range rows {
		if err := w.WriteStats(r); err != nil {
			return err
		}
	}
	return nil
}
