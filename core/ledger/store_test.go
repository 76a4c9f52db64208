package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/schedule"
)

func sampleRecord(task string, ts time.Time) Record {
	return Record{
		RunID:       "r1",
		Timestamp:   ts,
		Run:         "gfs",
		Task:        task,
		Requested:   2,
		Breakpoints: []int{6},
		Groups: []grouping.Group{
			{Hours: []int{0, 3, 6}, Segment: 0},
			{Hours: []int{9, 12}, Segment: 1},
		},
		Vars: schedule.Vars{FhrList: "0,3,6 9,12", FhrLabel: "f000-f006 f009-f012"},
	}
}

func TestQuery_Match(t *testing.T) {
	now := time.Now()
	rec := sampleRecord("atmos_prod", now)
	assert.True(t, Query{}.Match(rec))
	assert.True(t, Query{Task: "atmos_prod", Run: "gfs", RunID: "r1"}.Match(rec))
	assert.False(t, Query{Task: "oceanice_products"}.Match(rec))
	assert.False(t, Query{Run: "gdas"}.Match(rec))
	assert.False(t, Query{RunID: "r2"}.Match(rec))
	assert.False(t, Query{Start: now.Add(time.Minute)}.Match(rec))
	assert.False(t, Query{End: now.Add(-time.Minute)}.Match(rec))
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "ledger.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Append(ctx, sampleRecord("atmos_prod", now)))
	require.NoError(t, store.Append(ctx, sampleRecord("atmos_upp", now)))

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int{9, 12}, all[0].Groups[1].Hours)
	assert.Equal(t, "0,3,6 9,12", all[0].Vars.FhrList)

	out, err := store.Query(ctx, Query{Task: "atmos_upp"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "atmos_upp", out[0].Task)
}

func TestJSONLStore_CanceledContext(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "ledger.jsonl"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Append(ctx, sampleRecord("atmos_prod", time.Now())), context.Canceled)
}

func TestRotatingJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, sampleRecord("atmos_prod", time.Now())))
	}
	out, err := store.Query(ctx, Query{Task: "atmos_prod"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:ledger_test.db?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Append(ctx, sampleRecord("atmos_prod", now)))
	require.NoError(t, store.Append(ctx, sampleRecord("wavepostsbs", now.Add(time.Second))))

	out, err := store.Query(ctx, Query{Task: "wavepostsbs"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "gfs", out[0].Run)
	assert.Equal(t, []int{6}, out[0].Breakpoints)

	out, err = store.Query(ctx, Query{RunID: "r1", Start: now.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "wavepostsbs", out[0].Task)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Backend: "jsonl", Path: filepath.Join(dir, "a.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	s, err = Open(Options{Backend: "jsonl", Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 5})
	require.NoError(t, err)
	assert.IsType(t, &RotatingJSONLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(Options{Backend: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	_, err = Open(Options{Backend: "postgres"})
	assert.Error(t, err)
}

func TestMemoryStore_OrdersByTimestamp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Append(ctx, sampleRecord("late", now.Add(time.Hour))))
	require.NoError(t, store.Append(ctx, sampleRecord("early", now)))
	require.NoError(t, store.Append(ctx, sampleRecord("tie", now)))

	out, err := store.Query(ctx, Query{Run: "gfs"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"early", "tie", "late"}, []string{out[0].Task, out[1].Task, out[2].Task})

	out, err = store.Query(ctx, Query{End: now})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
