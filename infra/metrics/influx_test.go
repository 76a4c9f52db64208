package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/nwp-workflow/taskgen/core/metrics"
)

func TestInfluxSink_RecordGrouping(t *testing.T) {
	var body, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.GroupingEvent{
		RunID: "abc", Run: "gfs", Task: "atmos_prod",
		Hours: 10, Segments: 2, Requested: 4, Groups: 4, LargestGroup: 3, Time: now,
	}
	if err := sink.RecordGrouping(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("metatask_grouping").
		AddTag("run", "gfs").
		AddTag("task", "atmos_prod").
		AddTag("run_id", "abc").
		AddField("hours", 10).
		AddField("segments", 2).
		AddField("requested", 4).
		AddField("groups", 4).
		AddField("largest_group", 3).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
	if path != "/api/v2/write" {
		t.Errorf("unexpected path: %s", path)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
