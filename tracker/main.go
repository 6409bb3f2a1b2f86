package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/jrockway/tsip/serialport"
	"github.com/jrockway/tsip/tsip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/trace"
)

type tempReading struct {
	source string
	value  float64
}

type satelliteStatus struct {
	prn         int
	locked      bool
	level       float32
	azimuth     float32
	elevation   float32
	lastUpdated time.Time
	lastWritten time.Time
}

type timingReading struct {
	gps      time.Time
	received time.Time
	flags    uint8
}

// sinks are the consumers of decoded reports.
type sinks struct {
	temp   chan<- tempReading
	sats   chan<- satelliteStatus
	timing chan<- timingReading
	ids    chan<- tsip.ID
}

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		log.Fatalf("configure: %v", err)
	}

	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	if cfg.InfluxURL != "" {
		exporter = newInfluxWriter(cfg.InfluxURL, os.Getenv("INFLUXDB_TOKEN"))
		log.Printf("exporting satellite and timing data to %s", cfg.InfluxURL)
	}

	p := tsip.NewPacketizer(16)
	temp := make(chan tempReading)
	sats := make(chan satelliteStatus)
	timing := make(chan timingReading)
	ids := make(chan tsip.ID, 16)

	go recordTemperatures(temp, db, cfg.TemperatureInterval)
	go recordSatellites(sats, db, cfg.SatelliteInterval)
	go recordTiming(timing, db, cfg.TimingInterval)
	go recordPacketCounts(ids, db, time.Tick(cfg.PacketInterval))
	if cfg.RTCTemperature != "" {
		go readRTCTemperature(temp, cfg.RTCTemperature)
	}
	go readTSIP(cfg, p)
	go readGPSStatus(p.C, sinks{temp: temp, sats: sats, timing: timing, ids: ids})

	http.HandleFunc("/", ServeStatus)
	http.Handle("/metrics", promhttp.Handler())
	log.Printf("serving metrics and debug pages on %s", cfg.Bind)
	log.Fatal(http.ListenAndServe(cfg.Bind, nil))
}

func readTSIP(cfg Config, p *tsip.Packetizer) {
	if cfg.Port == "" {
		log.Printf("reading from gpspipe")
		events := trace.NewEventLog("tsip", "gpspipe")
		cmd := exec.Command("gpspipe", "-R")
		cmd.Stdout = p

		go func() {
			if err := cmd.Run(); err != nil {
				events.Errorf("gpspipe exited: %v", err)
				log.Fatalf("running gpspipe: %v", err)
			}
		}()
		return
	}

	events := trace.NewEventLog("tsip", cfg.Port)
	port, err := serialport.Open(cfg.Port, cfg.Serial)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("reading from %s at %v", cfg.Port, cfg.Serial)
	events.Printf("opened at %v", cfg.Serial)

	for {
		if _, err := io.Copy(p, port); err != nil {
			events.Errorf("read: %v", err)
			log.Fatal(err)
		}
	}
}

func readGPSStatus(packets <-chan []byte, out sinks) {
	events := trace.NewEventLog("tsip", "decoder")
	defer events.Finish()

	for packet := range packets {
		tsipPacketSize.Observe(float64(len(packet)))

		res, err := tsip.Default.Classify(packet)
		if err != nil {
			tsipErrors.WithLabelValues(errorReason(err)).Inc()
			events.Errorf("classify %q: %v", base64.StdEncoding.EncodeToString(packet), err)
			continue
		}
		tsipPackets.WithLabelValues(res.ID.String()).Inc()
		CountPacket(res.ID.String())
		if res.Resolution == tsip.Opaque {
			tsipOpaquePackets.WithLabelValues(fmt.Sprintf("%02x", res.ID.Code)).Inc()
		}
		select {
		case out.ids <- res.ID:
		default:
		}

		p, r, err := ParsePacket(packet)
		if errors.Is(err, ErrNotAReport) {
			continue
		}
		if err != nil {
			tsipErrors.WithLabelValues(errorReason(err)).Inc()
			events.Errorf("parse %q: %v", base64.StdEncoding.EncodeToString(packet), err)
			log.Printf("parse error: %q: %v", base64.StdEncoding.EncodeToString(packet), err)
			continue
		}
		events.Printf("%v", p)
		UpdateStatus(Status{
			Now:          time.Now(),
			Primary:      r.PrimaryTiming,
			Supplemental: r.SupplementalTiming,
			AllInView:    r.AllInView,
		})
		routeReport(r, out)
	}
}

// routeReport sends the parts of a report that the recorders care about to them.
func routeReport(r *Report, out sinks) {
	switch {
	case r.SupplementalTiming != nil:
		out.temp <- tempReading{source: "GPS", value: float64(r.SupplementalTiming.Temperature)}

	case r.PrimaryTiming != nil:
		out.timing <- timingReading{
			gps:      r.PrimaryTiming.Time(),
			received: time.Now(),
			flags:    r.PrimaryTiming.TimingFlags,
		}

	case r.RawMeasurement != nil:
		out.sats <- satelliteStatus{
			prn:    r.RawMeasurement.PRN,
			level:  r.RawMeasurement.SignalLevel.Level(),
			locked: r.RawMeasurement.SignalLevel.Locked(),
		}

	case r.TrackingStatus != nil:
		out.sats <- satelliteStatus{
			prn:       r.TrackingStatus.PRN,
			level:     r.TrackingStatus.SignalLevel.Level(),
			locked:    r.TrackingStatus.SignalLevel.Locked(),
			azimuth:   r.TrackingStatus.Azimuth,
			elevation: r.TrackingStatus.Elevation,
		}

	case r.SignalLevel != nil:
		for prn, level := range r.SignalLevel {
			out.sats <- satelliteStatus{prn: prn, level: level.Level(), locked: level.Locked()}
		}
	}
}

func recordTemperatures(c <-chan tempReading, db *DB, interval time.Duration) {
	last := make(map[string]time.Time)
	for r := range c {
		tempReadings.WithLabelValues(r.source).Inc()
		temperature.WithLabelValues(r.source).Set(r.value)
		if time.Since(last[r.source]) > interval {
			if err := db.RecordTemperature(r.source, r.value); err != nil {
				log.Printf("error logging temperature: %v", err)
				continue
			}

			last[r.source] = time.Now()
		}
	}
}

func readRTCTemperature(c chan<- tempReading, path string) {
	read := func() {
		bytes, err := os.ReadFile(path)
		if err != nil {
			log.Printf("error reading rtc temperature: %v", err)
			return
		}
		str := strings.TrimSpace(string(bytes))

		t, err := strconv.Atoi(str)
		if err != nil {
			log.Printf("error parsing rtc temperature: %q %v", str, err)
			return
		}

		c <- tempReading{source: "RTC", value: float64(t) / 1000}
	}

	read()
	for range time.Tick(5 * time.Minute) {
		read()
	}
}

func recordSatellites(c <-chan satelliteStatus, db *DB, interval time.Duration) {
	sats := make(map[int]*satelliteStatus)
	for reading := range c {
		signalReadings.Inc()
		if _, ok := sats[reading.prn]; !ok {
			sats[reading.prn] = new(satelliteStatus)
		}

		state := sats[reading.prn]
		state.prn = reading.prn
		if reading.level != 0 {
			state.level = reading.level
			state.locked = reading.locked
		}

		if reading.azimuth != 0 || reading.elevation != 0 {
			state.azimuth = reading.azimuth
			state.elevation = reading.elevation
		}

		now := time.Now()
		state.lastUpdated = now

		if state.level != 0 && (state.azimuth != 0 || state.elevation != 0) && time.Since(state.lastWritten) > interval {
			if err := db.RecordSatelliteStatus(state.prn, state.level, state.azimuth, state.elevation); err != nil {
				log.Printf("error writing satellite status to database: %v", err)
			} else {
				state.lastWritten = now
				export(satelliteLine(state, now))
			}
		}

		trackedSatellites.Set(float64(countTracked(sats, now)))
		UpdateStatus(Status{Satellites: satelliteList(sats)})
	}
}

// countTracked returns the number of satellites that are locked and were heard from in the last
// minute.
func countTracked(sats map[int]*satelliteStatus, now time.Time) int {
	var n int
	for _, state := range sats {
		if state.locked && state.level > 0 && now.Sub(state.lastUpdated) < time.Minute {
			n++
		}
	}
	return n
}

// recordTiming tracks how far the local clock is from GPS time.  Every reading is observed; a
// trusted reading is written to the database at most once per interval.
func recordTiming(c <-chan timingReading, db *DB, interval time.Duration) {
	var lastWritten time.Time
	for r := range c {
		offset := r.received.Sub(r.gps)
		if r.flags&TimingFlagsUntrusted != 0 {
			continue
		}
		gpsTimeOffset.Observe(offset.Seconds())
		if r.received.Sub(lastWritten) <= interval {
			continue
		}
		if err := db.RecordTiming(r.gps, offset, r.flags); err != nil {
			log.Printf("error writing timing to database: %v", err)
			continue
		}
		lastWritten = r.received
		export(timingLine(r))
	}
}

// recordPacketCounts counts packets by ID, and writes the counts to the database on every tick.
func recordPacketCounts(ids <-chan tsip.ID, db *DB, tick <-chan time.Time) {
	counts := make(map[string]int)
	for {
		select {
		case id, ok := <-ids:
			if !ok {
				return
			}
			counts[id.String()]++
		case <-tick:
			if len(counts) == 0 {
				continue
			}
			if err := db.RecordPacketCounts(counts); err != nil {
				log.Printf("error writing packet counts to database: %v", err)
				continue
			}
			counts = make(map[string]int)
		}
	}
}
