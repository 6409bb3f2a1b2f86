package main

import (
	_ "embed"
	"fmt"
	"html/template"
	"log"
	"math"
	"net/http"
	"sort"
	"sync"
	"time"
)

var (
	statusMu sync.RWMutex
	status   = Status{Packets: make(map[string]int)}

	//go:embed index.html.tmpl
	indexHTML string
	funcMap   = template.FuncMap{
		"utc":     formatUTC,
		"degrees": formatDegrees,
		"float3":  formatFloat3,
		"mode":    formatReceiverMode,
	}
	index = template.Must(template.New("index").Funcs(funcMap).Parse(indexHTML))
)

// Status is what the tracker last heard from the receiver.
type Status struct {
	Now          time.Time
	Primary      *PrimaryTiming
	Supplemental *SupplementalTiming
	AllInView    *AllInView
	Satellites   []satelliteStatus
	Packets      map[string]int
}

// UpdateStatus merges the set fields of newStatus into the served status.
func UpdateStatus(newStatus Status) {
	statusMu.Lock()
	defer statusMu.Unlock()
	if !newStatus.Now.IsZero() {
		status.Now = newStatus.Now
	}
	if newStatus.Primary != nil {
		status.Primary = newStatus.Primary
	}
	if newStatus.Supplemental != nil {
		status.Supplemental = newStatus.Supplemental
	}
	if newStatus.AllInView != nil {
		status.AllInView = newStatus.AllInView
	}
	if len(newStatus.Satellites) > 0 {
		status.Satellites = newStatus.Satellites
	}
}

// CountPacket adds one to the number of packets seen with the given id.
func CountPacket(id string) {
	statusMu.Lock()
	defer statusMu.Unlock()
	status.Packets[id]++
}

// satelliteList returns a copy of the satellite states, ordered by PRN.
func satelliteList(sats map[int]*satelliteStatus) []satelliteStatus {
	result := make([]satelliteStatus, 0, len(sats))
	for _, s := range sats {
		if s.prn == 0 {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].prn < result[j].prn })
	return result
}

// statusView is Status in the form the template reads.
type statusView struct {
	Status
	SatelliteRows []satelliteRow
	PacketIDs     []string
}

type satelliteRow struct {
	PRN                int
	Level              float32
	Locked             bool
	Azimuth, Elevation float32
	LastUpdated        time.Time
}

func ServeStatus(w http.ResponseWriter, r *http.Request) {
	statusMu.RLock()
	view := statusView{Status: status}
	for _, s := range status.Satellites {
		view.SatelliteRows = append(view.SatelliteRows, satelliteRow{
			PRN:         s.prn,
			Level:       s.level,
			Locked:      s.locked,
			Azimuth:     s.azimuth,
			Elevation:   s.elevation,
			LastUpdated: s.lastUpdated,
		})
	}
	for id := range status.Packets {
		view.PacketIDs = append(view.PacketIDs, id)
	}
	packets := make(map[string]int, len(status.Packets))
	for id, n := range status.Packets {
		packets[id] = n
	}
	view.Packets = packets
	statusMu.RUnlock()
	sort.Strings(view.PacketIDs)

	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := index.Execute(w, view); err != nil {
		log.Printf("execute template: %v", err)
	}
}

func formatUTC(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.In(time.UTC).Format(time.UnixDate)
}

func formatDegrees(radians interface{}) string {
	var x float64
	switch r := radians.(type) {
	case float32:
		x = float64(r)
	case float64:
		x = r
	default:
		return fmt.Sprintf("%v", radians)
	}
	return fmt.Sprintf("%.1f°", x*180/math.Pi)
}

func formatFloat3(x interface{}) string { return fmt.Sprintf("%.3f", x) }

// formatReceiverMode names the receiver mode reported by the supplemental timing packet.
func formatReceiverMode(x int) string {
	switch x {
	case 0:
		return "Automatic (2D/3D)"
	case 1:
		return "Single satellite (time)"
	case 3:
		return "Horizontal (2D)"
	case 4:
		return "Full position (3D)"
	case 5:
		return "DGPS reference"
	case 6:
		return "Clock hold (2D)"
	case 7:
		return "Over-determined clock"
	default:
		return fmt.Sprintf("Unknown (%v)", x)
	}
}
