// Package ledger keeps a history of generated job groupings so operators can
// see which schedule a given experiment was built with.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/schedule"
)

// Record captures the grouping generated for one task.
type Record struct {
	RunID       string           `json:"run_id"`
	Timestamp   time.Time        `json:"timestamp"`
	Run         string           `json:"run"`
	Task        string           `json:"task"`
	Requested   int              `json:"requested_groups"`
	Breakpoints []int            `json:"breakpoints"`
	Groups      []grouping.Group `json:"groups"`
	Vars        schedule.Vars    `json:"vars"`
}

// Query defines filters for retrieving records. Zero values match anything.
type Query struct {
	Start time.Time
	End   time.Time
	RunID string
	Run   string
	Task  string
}

// Match reports whether r passes every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Run != "" && r.Run != q.Run {
		return false
	}
	if q.Task != "" && r.Task != q.Task {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Options selects and configures a Store backend.
type Options struct {
	// Backend is "jsonl", "sqlite", "memory" or "none".
	Backend    string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the Store described by opts. A JSONL store rotates when
// MaxSizeMB is set.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "memory":
		return NewMemoryStore(), nil
	case "none", "":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", opts.Backend)
	}
}

// NopStore drops every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error         { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                  { return nil }
