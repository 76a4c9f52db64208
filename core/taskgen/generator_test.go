package taskgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwp-workflow/taskgen/core/forecast"
	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/ledger"
	"github.com/nwp-workflow/taskgen/core/metrics"
	"github.com/nwp-workflow/taskgen/core/resources"
)

type recordingSink struct {
	events []metrics.GroupingEvent
	err    error
}

func (s *recordingSink) RecordGrouping(ev metrics.GroupingEvent) error {
	s.events = append(s.events, ev)
	return s.err
}

type failingStore struct {
	ledger.NopStore
	err error
}

func (f failingStore) Append(context.Context, ledger.Record) error { return f.err }

func testConfig() Config {
	return Config{
		Run: "gfs",
		Forecast: forecast.Config{
			FHMaxGFS:    24,
			FHOutGFS:    6,
			FHMaxHFGFS:  6,
			FHOutHFGFS:  3,
			FHOutOcnGFS: 12,
			Segments:    []int{0, 12, 24},
		},
		Host: resources.Host{Scheduler: resources.SchedulerSlurm, Account: "fv3-cpu", Queue: "batch", PartitionBatch: "hera"},
		Tasks: []TaskConfig{{
			Name:          "atmos_prod",
			Component:     forecast.Atmos,
			MaxTasks:      3,
			ScaleWalltime: true,
			Command:       "&JOBS_DIR;/atmos_products.sh",
			Resources:     resources.Request{Walltime: "00:15:00", NTasks: 24, TasksPerNode: 24},
		}},
	}
}

func TestGenerate(t *testing.T) {
	sink := &recordingSink{}
	store := ledger.NewMemoryStore()
	ts := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	gen, err := NewGenerator(testConfig(), "run-1",
		WithMetrics(sink), WithLedger(store), WithClock(func() time.Time { return ts }))
	require.NoError(t, err)

	out, err := gen.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)

	mt := out[0]
	assert.Equal(t, "gfs_atmos_prod", mt.Name)
	assert.Equal(t, "0,3 6,12 18,24", mt.Vars.FhrList)
	assert.Equal(t, "f000-f003 f006-f012 f018-f024", mt.Vars.FhrLabel)
	assert.Equal(t, "seg0 seg0 seg1", mt.Vars.SegDep)
	assert.Equal(t, "003 012 024", mt.Vars.Fhr3Last)
	assert.Equal(t, "006 018 030", mt.Vars.Fhr3Next)

	assert.Equal(t, "gfs_atmos_prod_#fhr_label#", mt.Task.Name)
	assert.Equal(t, "gfs_fcst_#seg_dep#", mt.Task.Dependency)
	assert.Equal(t, "#fhr_list#", mt.Task.Envars["FHR_LIST"])
	assert.Equal(t, "00:30:00", mt.Task.Resources.Walltime)
	assert.Equal(t, "hera", mt.Task.Resources.Partition)

	require.Len(t, sink.events, 1)
	assert.Equal(t, metrics.GroupingEvent{
		RunID: "run-1", Run: "gfs", Task: "atmos_prod", Hours: 6, Segments: 2,
		Requested: 3, Groups: 3, LargestGroup: 2, Time: ts,
	}, sink.events[0])

	recs, err := store.Query(context.Background(), ledger.Query{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []int{12}, recs[0].Breakpoints)
	assert.Equal(t, []int{18, 24}, recs[0].Groups[2].Hours)
	assert.Equal(t, mt.Vars, recs[0].Vars)
}

func TestGenerate_CustomDependencyNoScaling(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks[0].ScaleWalltime = false
	cfg.Tasks[0].Dependency = "gfs_atmos_upp_#fhr_label#"
	gen, err := NewGenerator(cfg, "run-2")
	require.NoError(t, err)

	out, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gfs_atmos_upp_#fhr_label#", out[0].Task.Dependency)
	assert.Equal(t, "00:15:00", out[0].Task.Resources.Walltime)
}

func TestGenerate_WrapsTaskErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Forecast.Segments = []int{0, 3, 6, 12, 18, 24}
	cfg.Tasks[0].MaxTasks = 2
	gen, err := NewGenerator(cfg, "run-3")
	require.NoError(t, err)

	_, err = gen.Generate(context.Background())
	require.ErrorIs(t, err, grouping.ErrConfiguration)
	assert.Contains(t, err.Error(), "task atmos_prod")
}

func TestGenerate_LedgerFailureStopsRun(t *testing.T) {
	boom := errors.New("disk full")
	gen, err := NewGenerator(testConfig(), "run-4", WithLedger(failingStore{err: boom}))
	require.NoError(t, err)
	_, err = gen.Generate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_MetricsFailureIsNotFatal(t *testing.T) {
	gen, err := NewGenerator(testConfig(), "run-5", WithMetrics(&recordingSink{err: errors.New("down")}))
	require.NoError(t, err)
	out, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestGenerate_Canceled(t *testing.T) {
	gen, err := NewGenerator(testConfig(), "run-6")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator_Validation(t *testing.T) {
	cfg := testConfig()
	cfg.Run = ""
	_, err := NewGenerator(cfg, "x")
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Tasks[0].MaxTasks = 0
	_, err = NewGenerator(cfg, "x")
	assert.Error(t, err)
}
