// Package taskgen turns forecast-hour groupings into workflow metatasks.
package taskgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nwp-workflow/taskgen/core/forecast"
	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/hms"
	"github.com/nwp-workflow/taskgen/core/ledger"
	"github.com/nwp-workflow/taskgen/core/logger"
	"github.com/nwp-workflow/taskgen/core/metrics"
	"github.com/nwp-workflow/taskgen/core/resources"
	"github.com/nwp-workflow/taskgen/core/schedule"
)

// Task is a single workflow task template. Fields may contain #var#
// placeholders resolved per group by the workflow manager.
type Task struct {
	Name       string             `json:"name" yaml:"name"`
	Command    string             `json:"command,omitempty" yaml:"command,omitempty"`
	Envars     map[string]string  `json:"envars" yaml:"envars"`
	Dependency string             `json:"dependency" yaml:"dependency"`
	Resources  resources.Resource `json:"resources" yaml:"resources"`
}

// Metatask expands Task once per job group using Vars.
type Metatask struct {
	Name     string             `json:"name" yaml:"name"`
	Vars     schedule.Vars      `json:"vars" yaml:"vars"`
	Schedule *schedule.Schedule `json:"schedule" yaml:"schedule"`
	Task     Task               `json:"task" yaml:"task"`
}

// Generator builds the metatasks of a run.
type Generator struct {
	cfg    Config
	runID  string
	sink   metrics.MetricsSink
	store  ledger.Store
	logger logger.Logger
	now    func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithMetrics sets the sink receiving grouping events.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(g *Generator) { g.sink = s }
}

// WithLedger sets the store receiving generation records.
func WithLedger(s ledger.Store) Option {
	return func(g *Generator) { g.store = s }
}

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithClock overrides the time source used for records.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator validates cfg and returns a Generator tagged with runID.
func NewGenerator(cfg Config, runID string, opts ...Option) (*Generator, error) {
	if cfg.Run == "" {
		return nil, errors.New("run required")
	}
	for _, t := range cfg.Tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	g := &Generator{
		cfg:    cfg,
		runID:  runID,
		sink:   metrics.NopSink{},
		store:  ledger.NopStore{},
		logger: logger.NopLogger{},
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g, nil
}

// Generate builds one metatask per configured task, in configuration order.
func (g *Generator) Generate(ctx context.Context) ([]Metatask, error) {
	out := make([]Metatask, 0, len(g.cfg.Tasks))
	for _, t := range g.cfg.Tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mt, err := g.generateTask(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.Name, err)
		}
		out = append(out, mt)
	}
	return out, nil
}

func (g *Generator) generateTask(ctx context.Context, t TaskConfig) (Metatask, error) {
	hours, err := forecast.Hours(g.cfg.Run, t.Component, g.cfg.Forecast)
	if err != nil {
		return Metatask{}, err
	}
	bps := grouping.Breakpoints(g.cfg.Forecast.Segments)
	groups, err := grouping.Partition(hours, t.MaxTasks, bps)
	if err != nil {
		return Metatask{}, err
	}
	sched, err := schedule.Format(groups, hours)
	if err != nil {
		return Metatask{}, err
	}
	res, err := resources.Compute(t.Name, t.Resources, g.cfg.Host)
	if err != nil {
		return Metatask{}, err
	}
	if t.ScaleWalltime && res.Walltime != "" {
		res.Walltime, err = hms.Multiply(res.Walltime, float64(sched.LargestGroup()))
		if err != nil {
			return Metatask{}, err
		}
	}
	vars := sched.Vars()

	prefix := g.cfg.Run + "_" + t.Name
	dep := t.Dependency
	if dep == "" {
		dep = g.cfg.Run + "_fcst_#seg_dep#"
	}
	mt := Metatask{
		Name:     prefix,
		Vars:     vars,
		Schedule: sched,
		Task: Task{
			Name:    prefix + "_#fhr_label#",
			Command: t.Command,
			Envars: map[string]string{
				"FHR_LIST":  "#fhr_list#",
				"FHR3_LAST": "#fhr3_last#",
				"FHR3_NEXT": "#fhr3_next#",
			},
			Dependency: dep,
			Resources:  res,
		},
	}
	g.logger.Debugw("grouped forecast hours", map[string]any{
		"task":   t.Name,
		"hours":  len(hours),
		"groups": len(groups),
		"labels": vars.FhrLabel,
	})

	now := g.now()
	segs := map[int]struct{}{}
	for _, grp := range groups {
		segs[grp.Segment] = struct{}{}
	}
	if err := g.sink.RecordGrouping(metrics.GroupingEvent{
		RunID:        g.runID,
		Run:          g.cfg.Run,
		Task:         t.Name,
		Hours:        len(hours),
		Segments:     len(segs),
		Requested:    t.MaxTasks,
		Groups:       len(groups),
		LargestGroup: sched.LargestGroup(),
		Time:         now,
	}); err != nil {
		g.logger.Warnf("record grouping metrics for %s: %v", t.Name, err)
	}
	if err := g.store.Append(ctx, ledger.Record{
		RunID:       g.runID,
		Timestamp:   now,
		Run:         g.cfg.Run,
		Task:        t.Name,
		Requested:   t.MaxTasks,
		Breakpoints: bps,
		Groups:      groups,
		Vars:        vars,
	}); err != nil {
		return Metatask{}, fmt.Errorf("ledger append: %w", err)
	}
	return mt, nil
}
