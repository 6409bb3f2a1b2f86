package main

import (
	"errors"

	"github.com/jrockway/tsip/tsip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tsipPackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tsip_packets",
		Help: "count of TSIP packets read from the receiver, by packet id",
	}, []string{"id"})

	tsipErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tsip_decode_errors",
		Help: "count of TSIP packets that could not be decoded, by reason",
	}, []string{"reason"})

	tsipOpaquePackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tsip_opaque_packets",
		Help: "count of TSIP packets with no catalogued layout, by packet code",
	}, []string{"code"})

	tsipPacketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tsip_packet_size",
		Help:    "size of de-framed TSIP packets, in bytes",
		Buckets: prometheus.LinearBuckets(0, 8, 10),
	})

	tempReadings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "temperature_readings",
		Help: "count of temperature readings, by source",
	}, []string{"source"})

	temperature = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "temperature",
		Help: "most recent temperature reading, in degrees celsius",
	}, []string{"source"})

	signalReadings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satellite_signal_readings",
		Help: "count of satellite status updates",
	})

	trackedSatellites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracked_satellites",
		Help: "number of satellites locked and updated within the last minute",
	})

	gpsTimeOffset = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gps_time_offset",
		Help:    "local time at which a primary timing packet arrived, minus the time it reports, in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	dbWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "database_writes",
		Help: "count of rows written to the database, by table",
	}, []string{"table"})

	dbErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "database_errors",
		Help: "count of failed database writes, by table",
	}, []string{"table"})
)

// errorReason classifies a decoding error for the tsip_decode_errors metric.
func errorReason(err error) string {
	switch {
	case errors.Is(err, tsip.ErrStillFramed):
		return "framed"
	case errors.Is(err, tsip.ErrEmptyPacket):
		return "empty"
	case errors.Is(err, tsip.ErrPayloadLength):
		return "length"
	case errors.Is(err, tsip.ErrFieldType), errors.Is(err, tsip.ErrFieldCount):
		return "layout"
	}
	return "report"
}
