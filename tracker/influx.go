package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/trace"
)

// influxWriter writes InfluxDB "line protocol" data to a v2 write endpoint.
type influxWriter struct {
	url    string // Full write URL, including org and bucket parameters.
	token  string
	client *http.Client
	events trace.EventLog
}

// exporter receives a copy of every satellite and timing row; nil disables it.
var exporter *influxWriter

func newInfluxWriter(url, token string) *influxWriter {
	return &influxWriter{
		url:    url,
		token:  token,
		client: http.DefaultClient,
		events: trace.NewEventLog("destination", "influxdb"),
	}
}

// Send writes lines to InfluxDB.
func (w *influxWriter) Send(ctx context.Context, body string) error {
	w.events.Printf("%s", body)
	ctx, c := context.WithTimeout(ctx, 5*time.Second)
	defer c()
	req, err := http.NewRequestWithContext(ctx, "POST", w.url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if w.token != "" {
		req.Header.Add("authorization", "Token "+w.token)
	}
	req.Header.Add("content-type", "text/plain")
	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(res.Body)
		w.events.Errorf("unexpected status %v", res.StatusCode)
		return fmt.Errorf("make request: unexpected status %v (%s): (body: %s)", res.StatusCode, res.Status, body)
	}
	return nil
}

func satelliteLine(s *satelliteStatus, t time.Time) string {
	return fmt.Sprintf("satellite,prn=%d level=%v,azimuth=%v,elevation=%v,locked=%v %d\n", s.prn, s.level, s.azimuth, s.elevation, s.locked, t.UnixNano())
}

func timingLine(r timingReading) string {
	return fmt.Sprintf("timing offset_ns=%di,flags=%di %d\n", r.received.Sub(r.gps).Nanoseconds(), r.flags, r.received.UnixNano())
}

// export sends a line to the configured exporter, if any, logging failures to the event log.
func export(line string) {
	if exporter == nil {
		return
	}
	if err := exporter.Send(context.Background(), line); err != nil {
		exporter.events.Errorf("send: %v", err)
	}
}
