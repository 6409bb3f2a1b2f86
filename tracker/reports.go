package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/jrockway/tsip/tsip"
)

// Report is the interesting content of a TSIP packet.  At most one field is set.
type Report struct {
	AllInView          *AllInView
	SignalLevel        SignalLevels
	RawMeasurement     *RawMeasurement
	TrackingStatus     *TrackingStatus
	PrimaryTiming      *PrimaryTiming
	SupplementalTiming *SupplementalTiming
}

// AllInView reports information about the receiver's currently-tracked satellites.
type AllInView struct {
	Status                 int
	AutoFix                bool
	PDOP, HDOP, VDOP, TDOP float32
	Satellites             []int
}

// SignalLevel represents a satellite signal strength in units configured in the receiver's NVRAM,
// either AMU or dB/Hz.  Negative values represent satellites not locked.  Zero represents a
// satellite that has not been acquired.
type SignalLevel float32

func (s SignalLevel) Level() float32 {
	if s < 0 {
		return -float32(s)
	}
	return float32(s)
}
func (s SignalLevel) Locked() bool   { return s > 0 }
func (s SignalLevel) Acquired() bool { return s != 0 }

// SignalLevels is a map from the satellite number (PRN) to the signal strength.
type SignalLevels map[int]SignalLevel

// RawMeasurement represents raw GPS measurement data.
type RawMeasurement struct {
	PRN               int
	SampleLength      time.Duration
	SignalLevel       SignalLevel
	CodePhase         float32
	Doppler           float32
	TimeOfMeasurement time.Duration
}

// TrackingStatus is the receiver's view of one satellite channel.  Elevation and azimuth are in
// radians.
type TrackingStatus struct {
	PRN                int
	Channel            int
	AcquisitionFlag    int
	EphemerisFlag      int
	SignalLevel        SignalLevel
	LastMeasurement    float32
	Elevation          float32
	Azimuth            float32
	OldMeasurementFlag int
	BadDataFlag        int
	DataCollectionFlag int
}

// PrimaryTiming represents a TSIP primary timing data packet.
type PrimaryTiming struct {
	TimeOfWeek  uint32
	WeekNumber  uint16
	UTCOffset   int16
	TimingFlags uint8
	Seconds     uint8
	Minutes     uint8
	Hours       uint8
	DayOfMonth  uint8
	Month       uint8
	Year        uint16
}

const (
	TimingFlagUTC        = 0x01 // time is UTC rather than GPS time
	TimingFlagPPSUTC     = 0x02 // PPS is aligned to UTC rather than GPS
	TimingFlagNotSet     = 0x04 // time has not been set from GPS
	TimingFlagNoUTCInfo  = 0x08 // UTC offset is not yet known
	TimingFlagUserSet    = 0x10 // time came from the user, not GPS
	TimingFlagsUntrusted = TimingFlagNotSet | TimingFlagNoUTCInfo | TimingFlagUserSet
)

// Time returns the time reported by the packet.  If the receiver reports GPS time, the UTC offset
// is applied.
func (p *PrimaryTiming) Time() time.Time {
	t := time.Date(int(p.Year), time.Month(p.Month), int(p.DayOfMonth), int(p.Hours), int(p.Minutes), int(p.Seconds), 0, time.UTC)
	if p.TimingFlags&TimingFlagUTC == 0 {
		t = t.Add(-time.Duration(p.UTCOffset) * time.Second)
	}
	return t
}

// Trusted returns true if the reported time came from GPS and the UTC offset is known.
func (p *PrimaryTiming) Trusted() bool {
	return p.TimingFlags&TimingFlagsUntrusted == 0
}

// SupplementalTiming represents a TSIP supplemental timing packet.
type SupplementalTiming struct {
	ReceiverMode                                    int
	SelfSurveyProgress                              int
	MinorAlarms                                     int
	GPSDecodingStatus                               int
	LocalClockBias, LocalClockBiasRate, Temperature float32
	Latitude, Longitude, Altitude                   float64
	QuantizationError                               float32
}

// ErrNotAReport is returned by ParseReport for packets that the tracker has no use for.
var ErrNotAReport = errors.New("not a tracked report")

// ParsePacket decodes a de-framed TSIP packet and extracts the report it carries.
func ParsePacket(b []byte) (*tsip.Packet, *Report, error) {
	p, err := tsip.Unpack(b)
	if err != nil {
		return nil, nil, err
	}
	r, err := ParseReport(p)
	return p, r, err
}

// ParseReport extracts a Report from a decoded packet.
func ParseReport(p *tsip.Packet) (*Report, error) {
	result := new(Report)
	switch p.ID() {
	case tsip.Code(tsip.PacketAllInView):
		b, err := p.Bytes(0)
		if err != nil {
			return nil, err
		}
		v, err := parseAllInView(b)
		if err != nil {
			return nil, err
		}
		result.AllInView = v

	case tsip.Code(tsip.PacketSignalLevels):
		b, err := p.Bytes(0)
		if err != nil {
			return nil, err
		}
		levels, err := parseSignalLevels(b)
		if err != nil {
			return nil, err
		}
		result.SignalLevel = levels

	case tsip.Code(tsip.PacketRawMeasurement):
		var (
			prn                                     uint8
			length, signalLevel, codePhase, doppler float32
			t                                       float64
		)
		if err := p.Scan(&prn, &length, &signalLevel, &codePhase, &doppler, &t); err != nil {
			return nil, err
		}
		result.RawMeasurement = &RawMeasurement{
			PRN:               int(prn),
			SampleLength:      time.Millisecond * time.Duration(length),
			SignalLevel:       SignalLevel(signalLevel),
			CodePhase:         codePhase,
			Doppler:           doppler,
			TimeOfMeasurement: time.Second * time.Duration(t),
		}

	case tsip.Code(tsip.PacketTrackingStatus):
		var (
			prn, channel, acq, eph            uint8
			level, last, elevation, azimuth   float32
			old, msec, badData, dataCollected uint8
		)
		if err := p.Scan(&prn, &channel, &acq, &eph, &level, &last, &elevation, &azimuth, &old, &msec, &badData, &dataCollected); err != nil {
			return nil, err
		}
		result.TrackingStatus = &TrackingStatus{
			PRN:                int(prn),
			Channel:            int(channel >> 3),
			AcquisitionFlag:    int(acq),
			EphemerisFlag:      int(eph),
			SignalLevel:        SignalLevel(level),
			LastMeasurement:    last,
			Elevation:          elevation,
			Azimuth:            azimuth,
			OldMeasurementFlag: int(old),
			BadDataFlag:        int(badData),
			DataCollectionFlag: int(dataCollected),
		}

	case tsip.Sub(tsip.PacketTimingSuperpacket, tsip.SubcodeTimingPrimary):
		pt := new(PrimaryTiming)
		if err := p.Scan(&pt.TimeOfWeek, &pt.WeekNumber, &pt.UTCOffset, &pt.TimingFlags, &pt.Seconds, &pt.Minutes, &pt.Hours, &pt.DayOfMonth, &pt.Month, &pt.Year); err != nil {
			return nil, err
		}
		result.PrimaryTiming = pt

	case tsip.Sub(tsip.PacketTimingSuperpacket, tsip.SubcodeTimingSupplemental):
		var (
			receiverMode, selfSurvey, decodingStatus uint8
			minorAlarms                              uint16
			bias, biasRate, temperature, qErr        float32
			lat, lon, alt                            float64
		)
		if err := p.Scan(
			&receiverMode, nil, &selfSurvey, nil, nil, &minorAlarms, &decodingStatus, nil, nil, nil,
			&bias, &biasRate, nil, nil, &temperature, &lat, &lon, &alt, &qErr, nil,
		); err != nil {
			return nil, err
		}
		result.SupplementalTiming = &SupplementalTiming{
			ReceiverMode:       int(receiverMode),
			SelfSurveyProgress: int(selfSurvey),
			MinorAlarms:        int(minorAlarms),
			GPSDecodingStatus:  int(decodingStatus),
			LocalClockBias:     bias,
			LocalClockBiasRate: biasRate,
			Temperature:        temperature,
			Latitude:           lat,
			Longitude:          lon,
			Altitude:           alt,
			QuantizationError:  qErr,
		}

	default:
		return nil, fmt.Errorf("packet %v: %w", p.ID(), ErrNotAReport)
	}
	return result, nil
}

// parseAllInView parses the variable-length body of an all-in-view satellite selection packet.
func parseAllInView(b []byte) (*AllInView, error) {
	if len(b) < 17 {
		return nil, errors.New("incomplete 'All-in-view satellite selection' packet")
	}

	raw := struct {
		FixBits                uint8
		PDOP, HDOP, VDOP, TDOP float32
	}{}

	r := bytes.NewReader(b)
	if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	v := new(AllInView)
	v.Status = int(raw.FixBits & 0x7)
	v.AutoFix = (raw.FixBits&0x8)>>3 == 1
	svCount := int((raw.FixBits & 0xf0) >> 4)
	v.PDOP, v.HDOP, v.VDOP, v.TDOP = raw.PDOP, raw.HDOP, raw.VDOP, raw.TDOP

	for i := 0; i < svCount; i++ {
		var prn int8
		if err := binary.Read(r, binary.BigEndian, &prn); err != nil {
			return nil, fmt.Errorf("read satellite %d of %d: %w", i, svCount, err)
		}
		v.Satellites = append(v.Satellites, int(prn))
	}
	return v, nil
}

// parseSignalLevels parses the variable-length body of a signal levels packet.
func parseSignalLevels(b []byte) (SignalLevels, error) {
	if len(b) < 1 {
		return nil, errors.New("empty 'Signal level' packet")
	}
	n := int(b[0])
	if len(b) < 1+n*5 {
		return nil, errors.New("incomplete 'Signal level' packet")
	}

	result := make(SignalLevels)
	r := bytes.NewReader(b[1:])
	for i := 0; i < n; i++ {
		raw := struct {
			PRN    uint8
			Signal float32
		}{}
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, fmt.Errorf("read satellite %d of %d: %w", i, n, err)
		}
		result[int(raw.PRN)] = SignalLevel(raw.Signal)
	}
	return result, nil
}
