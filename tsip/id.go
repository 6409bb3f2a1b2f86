package tsip

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PacketVersionInfo       = 0x1c
	PacketReset             = 0x1e
	PacketHealthRequest     = 0x26
	PacketSignalLevels      = 0x47
	PacketRawMeasurement    = 0x5a
	PacketTrackingStatus    = 0x5c
	PacketAllInView         = 0x6d
	PacketTimingCommand     = 0x8e
	PacketTimingSuperpacket = 0x8f

	SubcodePPSWidth           = 0x4f
	SubcodeTimingPrimary      = 0xab
	SubcodeTimingSupplemental = 0xac
)

// subcoded is the fixed set of packet codes whose second byte is a sub-code rather than data.
// Both super-packets are in it, along with a few ordinary packets.
var subcoded = map[byte]bool{
	PacketVersionInfo:       true,
	PacketReset:             true,
	PacketTimingCommand:     true,
	PacketTimingSuperpacket: true,
}

// HasSubcode reports whether packets with the given code carry a sub-code.
func HasSubcode(code byte) bool {
	return subcoded[code]
}

// ID identifies a packet type on the wire; the code, and for some codes, a sub-code.
type ID struct {
	Code       byte
	Subcode    byte
	HasSubcode bool
}

// Code returns an ID without a sub-code.
func Code(code byte) ID {
	return ID{Code: code}
}

// Sub returns an ID with a sub-code.
func Sub(code, subcode byte) ID {
	return ID{Code: code, Subcode: subcode, HasSubcode: true}
}

// Validate checks that a sub-code is only present on codes that take one.
func (id ID) Validate() error {
	if id.HasSubcode && !HasSubcode(id.Code) {
		return fmt.Errorf("packet %#02x: %w", id.Code, ErrSubcodeNotSupported)
	}
	return nil
}

// Len returns the number of bytes the ID occupies on the wire.
func (id ID) Len() int {
	if id.HasSubcode {
		return 2
	}
	return 1
}

// AppendBinary appends the wire representation of the ID to b.
func (id ID) AppendBinary(b []byte) []byte {
	if id.HasSubcode {
		return append(b, id.Code, id.Subcode)
	}
	return append(b, id.Code)
}

func (id ID) String() string {
	if id.HasSubcode {
		return fmt.Sprintf("%02x/%02x", id.Code, id.Subcode)
	}
	return fmt.Sprintf("%02x", id.Code)
}

// ParseID parses an ID written as "8f", "0x8f", "8f/ab", "8fab" or "0x8fab".  The four-digit form
// is only accepted for codes that take a sub-code.
func ParseID(s string) (ID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0x")
	if code, sub, ok := strings.Cut(s, "/"); ok {
		c, err := parseByte(code)
		if err != nil {
			return ID{}, fmt.Errorf("parse code %q: %w", code, err)
		}
		sc, err := parseByte(strings.TrimPrefix(sub, "0x"))
		if err != nil {
			return ID{}, fmt.Errorf("parse sub-code %q: %w", sub, err)
		}
		id := Sub(c, sc)
		return id, id.Validate()
	}
	switch len(s) {
	case 1, 2:
		c, err := parseByte(s)
		if err != nil {
			return ID{}, fmt.Errorf("parse code %q: %w", s, err)
		}
		return Code(c), nil
	case 4:
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return ID{}, fmt.Errorf("parse id %q: %w", s, err)
		}
		id := Sub(byte(v>>8), byte(v))
		return id, id.Validate()
	}
	return ID{}, fmt.Errorf("parse id %q: unexpected length", s)
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}
