// Package metrics defines the sinks that observe metatask generation. Each
// grouping computed for a task is reported as a GroupingEvent. Sinks are
// created by name from configuration through the factory registry; the
// Prometheus and InfluxDB implementations are registered by infra/metrics.
// Several configured sinks are combined into a MultiSink.
package metrics
