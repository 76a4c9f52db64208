package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/nwp-workflow/taskgen/core/metrics"
	"github.com/nwp-workflow/taskgen/infra/logger"
)

// InfluxSink writes grouping events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordGrouping writes one metatask_grouping point.
func (s *InfluxSink) RecordGrouping(ev coremetrics.GroupingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, groupingPoint(ev))
}

// Flush closes the client; the sink is unusable afterwards.
func (s *InfluxSink) Flush() error {
	s.client.Close()
	return nil
}

func groupingPoint(ev coremetrics.GroupingEvent) *write.Point {
	return write.NewPointWithMeasurement("metatask_grouping").
		AddTag("run", ev.Run).
		AddTag("task", ev.Task).
		AddTag("run_id", ev.RunID).
		AddField("hours", ev.Hours).
		AddField("segments", ev.Segments).
		AddField("requested", ev.Requested).
		AddField("groups", ev.Groups).
		AddField("largest_group", ev.LargestGroup).
		SetTime(ev.Time)
}
