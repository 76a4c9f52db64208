package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/nwp-workflow/taskgen/core/metrics"
)

// PromConfig selects where a PromSink publishes its metrics once the run
// is over. Both targets may be set.
type PromConfig struct {
	// Textfile is written for the node_exporter textfile collector.
	Textfile string `json:"textfile"`
	// Pushgateway is the base URL of a Prometheus Pushgateway.
	Pushgateway string `json:"pushgateway"`
	Job         string `json:"job"`
}

// PromSink records grouping events in Prometheus metrics. A generation run
// is short-lived, so metrics are flushed to a textfile or a Pushgateway
// rather than scraped.
type PromSink struct {
	cfg      PromConfig
	gatherer prometheus.Gatherer
	hours    *prometheus.GaugeVec
	groups   *prometheus.GaugeVec
	largest  *prometheus.GaugeVec
	segments *prometheus.GaugeVec
	total    *prometheus.CounterVec
	last     prometheus.Gauge
}

// NewPromSink registers grouping metrics on a dedicated registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	reg := prometheus.NewRegistry()
	return NewPromSinkWithRegistry(cfg, reg, reg)
}

// NewPromSinkWithRegistry registers metrics on reg and flushes from gatherer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*PromSink, error) {
	if cfg.Job == "" {
		cfg.Job = "taskgen"
	}
	labels := []string{"run", "task"}
	s := &PromSink{
		cfg:      cfg,
		gatherer: gatherer,
		hours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskgen_forecast_hours",
			Help: "Number of forecast hours grouped for a task",
		}, labels),
		groups: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskgen_groups",
			Help: "Number of job groups generated for a task",
		}, labels),
		largest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskgen_largest_group_hours",
			Help: "Forecast hours in the largest job group of a task",
		}, labels),
		segments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskgen_segments",
			Help: "Number of non-empty forecast segments of a task",
		}, labels),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskgen_groupings_total",
			Help: "Total number of task groupings generated",
		}, []string{"run"}),
		last: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskgen_last_generation_timestamp_seconds",
			Help: "Unix time of the last generated grouping",
		}),
	}

	var err error
	if s.hours, err = register(reg, s.hours); err != nil {
		return nil, err
	}
	if s.groups, err = register(reg, s.groups); err != nil {
		return nil, err
	}
	if s.largest, err = register(reg, s.largest); err != nil {
		return nil, err
	}
	if s.segments, err = register(reg, s.segments); err != nil {
		return nil, err
	}
	if s.total, err = register(reg, s.total); err != nil {
		return nil, err
	}
	if s.last, err = register(reg, s.last); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector already present.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGrouping sets the per-task gauges.
func (s *PromSink) RecordGrouping(ev coremetrics.GroupingEvent) error {
	s.hours.WithLabelValues(ev.Run, ev.Task).Set(float64(ev.Hours))
	s.groups.WithLabelValues(ev.Run, ev.Task).Set(float64(ev.Groups))
	s.largest.WithLabelValues(ev.Run, ev.Task).Set(float64(ev.LargestGroup))
	s.segments.WithLabelValues(ev.Run, ev.Task).Set(float64(ev.Segments))
	s.total.WithLabelValues(ev.Run).Inc()
	if !ev.Time.IsZero() {
		s.last.Set(float64(ev.Time.Unix()))
	}
	return nil
}

// Flush writes the textfile and pushes to the gateway when configured.
func (s *PromSink) Flush() error {
	var errs []error
	if s.cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(s.cfg.Textfile, s.gatherer); err != nil {
			errs = append(errs, fmt.Errorf("write textfile: %w", err))
		}
	}
	if s.cfg.Pushgateway != "" {
		if err := push.New(s.cfg.Pushgateway, s.cfg.Job).Gatherer(s.gatherer).Push(); err != nil {
			errs = append(errs, fmt.Errorf("push gateway: %w", err))
		}
	}
	return errors.Join(errs...)
}
