// Package export writes a resolved day in machine-readable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or csv)", s)
}

// WriteJSON writes the slots of date as a JSON array.
func WriteJSON(w io.Writer, slots []schedule.Slot) error {
	enc := json.NewEncoder(w)
	return enc.Encode(slots)
}

// WriteCSV writes the slots of date with one row per slot.
func WriteCSV(w io.Writer, date string, slots []schedule.Slot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "time", "value", "source_key"}); err != nil {
		return err
	}
	for _, sl := range slots {
		rec := []string{date, sl.Time, sl.Value.String(), string(sl.Key)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
