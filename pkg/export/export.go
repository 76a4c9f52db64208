// Package export writes ledger records in flat formats for spreadsheets and
// scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/nwp-workflow/taskgen/core/ledger"
)

// WriteJSON writes the records to w as one JSON array.
func WriteJSON(w io.Writer, recs []ledger.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(recs)
}

// WriteCSV writes one row per job group, so a record with three groups
// yields three rows.
func WriteCSV(w io.Writer, recs []ledger.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "run_id", "run", "task", "group", "segment", "first", "last", "hours"}); err != nil {
		return err
	}
	for _, r := range recs {
		for i, g := range r.Groups {
			if len(g.Hours) == 0 {
				continue
			}
			row := []string{
				r.Timestamp.Format(time.RFC3339),
				r.RunID,
				r.Run,
				r.Task,
				strconv.Itoa(i),
				strconv.Itoa(g.Segment),
				strconv.Itoa(g.First()),
				strconv.Itoa(g.Last()),
				strconv.Itoa(len(g.Hours)),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
