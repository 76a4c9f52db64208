package metrics

import (
	"errors"
	"time"
)

// GroupingEvent describes the job groups generated for one task.
type GroupingEvent struct {
	RunID        string
	Run          string
	Task         string
	Hours        int
	Segments     int
	Requested    int
	Groups       int
	LargestGroup int
	Time         time.Time
}

// MetricsSink records generation events for observability purposes.
type MetricsSink interface {
	RecordGrouping(ev GroupingEvent) error
}

// Flusher is implemented by sinks that buffer events until the run ends.
type Flusher interface {
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordGrouping(GroupingEvent) error { return nil }

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGrouping forwards the event to every sink and joins their errors.
func (m *MultiSink) RecordGrouping(ev GroupingEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordGrouping(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes every sink implementing Flusher.
func (m *MultiSink) Flush() error {
	var errs []error
	for _, s := range m.Sinks {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
