package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/infra/logger"
)

// InfluxSink writes schedule events to an InfluxDB instance using the official client.
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

// RecordScheduleWrite writes a schedule_write point.
func (s *InfluxSink) RecordScheduleWrite(ev coremetrics.ScheduleWriteEvent) error {
	p := write.NewPointWithMeasurement("schedule_write").
		AddTag("operation", ev.Operation).
		AddField("success", ev.Success).
		AddField("entries", ev.Entries).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordEvaluation writes a rule_evaluation point.
func (s *InfluxSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	p := write.NewPointWithMeasurement("rule_evaluation").
		AddField("rules", ev.Rules).
		AddField("matches", ev.Matches).
		AddField("warnings", ev.Warnings).
		AddField("fragment_entries", ev.FragmentEntries).
		AddField("battery_available", ev.BatteryAvailable).
		AddField("prices_available", ev.PricesAvailable).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordSourceFetch writes a source_fetch point.
func (s *InfluxSink) RecordSourceFetch(ev coremetrics.SourceFetchEvent) error {
	p := write.NewPointWithMeasurement("source_fetch").
		AddTag("source", ev.Source).
		AddField("available", ev.Available).
		AddField("latency_ms", ev.Latency.Milliseconds()).
		SetTime(ev.Time)
	return s.write(p)
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }
