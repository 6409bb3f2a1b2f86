package tsip

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Kind is the type of a single field in a packet payload.  Every kind except Bytes has a fixed
// width and is encoded big-endian.
type Kind uint8

const (
	Invalid Kind = iota
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64

	// Bytes is an opaque run of bytes.  It only appears in packets whose identity is not in
	// the catalogue, and cannot be part of a Layout.
	Bytes
)

var kindInfo = [...]struct {
	name string
	code byte
	size int
}{
	Invalid: {"invalid", '?', 0},
	Int8:    {"int8", 'b', 1},
	Uint8:   {"uint8", 'B', 1},
	Int16:   {"int16", 'h', 2},
	Uint16:  {"uint16", 'H', 2},
	Int32:   {"int32", 'i', 4},
	Uint32:  {"uint32", 'I', 4},
	Int64:   {"int64", 'q', 8},
	Uint64:  {"uint64", 'Q', 8},
	Float32: {"float32", 'f', 4},
	Float64: {"float64", 'd', 8},
	Bytes:   {"bytes", 's', 0},
}

func (k Kind) String() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Size returns the number of bytes a field of this kind occupies.  Bytes fields have no fixed size
// and return 0.
func (k Kind) Size() int {
	if int(k) < len(kindInfo) {
		return kindInfo[k].size
	}
	return 0
}

// KindOf returns the Kind that a Go value would be encoded as, or Invalid.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case int8:
		return Int8
	case uint8:
		return Uint8
	case int16:
		return Int16
	case uint16:
		return Uint16
	case int32:
		return Int32
	case uint32:
		return Uint32
	case int64:
		return Int64
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case []byte:
		return Bytes
	}
	return Invalid
}

// formatCodes maps format characters to kinds.  'c' (a single character) and 'l'/'L' (4-byte
// longs) are accepted as aliases so that layouts can be copied straight out of the Trimble
// documentation.
var formatCodes = map[byte]Kind{
	'b': Int8,
	'B': Uint8,
	'c': Uint8,
	'h': Int16,
	'H': Uint16,
	'i': Int32,
	'I': Uint32,
	'l': Int32,
	'L': Uint32,
	'q': Int64,
	'Q': Uint64,
	'f': Float32,
	'd': Float64,
}

// Layout is the fixed sequence of fields that make up a packet's payload.  Layouts are immutable;
// the zero Layout has no fields and is zero bytes wide.
type Layout struct {
	kinds []Kind
	size  int
}

// NewLayout returns a layout made of the provided kinds.
func NewLayout(kinds ...Kind) (Layout, error) {
	l := Layout{kinds: make([]Kind, len(kinds))}
	for i, k := range kinds {
		if k == Invalid || k == Bytes || k.Size() == 0 {
			return Layout{}, fmt.Errorf("field %d: kind %v: %w", i, k, ErrBadLayout)
		}
		l.kinds[i] = k
		l.size += k.Size()
	}
	return l, nil
}

// ParseLayout parses a layout written as a byte order character followed by format codes, like
// ">IHhBBBBBBH".  Only big-endian byte order ('>' or '!') is supported; the order character may be
// omitted.  An empty string is a valid, zero-width layout.
func ParseLayout(format string) (Layout, error) {
	f := format
	if len(f) > 0 {
		switch f[0] {
		case '>', '!':
			f = f[1:]
		case '<', '=', '@':
			return Layout{}, fmt.Errorf("layout %q: byte order %q: %w", format, f[0], ErrBadLayout)
		}
	}
	kinds := make([]Kind, 0, len(f))
	for i := 0; i < len(f); i++ {
		k, ok := formatCodes[f[i]]
		if !ok {
			return Layout{}, fmt.Errorf("layout %q: format code %q: %w", format, f[i], ErrBadLayout)
		}
		kinds = append(kinds, k)
	}
	return NewLayout(kinds...)
}

// MustLayout is like ParseLayout, but panics on error.
func MustLayout(format string) Layout {
	l, err := ParseLayout(format)
	if err != nil {
		panic(err)
	}
	return l
}

// Size returns the width of the encoded payload in bytes.
func (l Layout) Size() int { return l.size }

// Len returns the number of fields.
func (l Layout) Len() int { return len(l.kinds) }

// Kinds returns a copy of the field kinds, in wire order.
func (l Layout) Kinds() []Kind {
	return append([]Kind(nil), l.kinds...)
}

// String returns the layout in the format accepted by ParseLayout.
func (l Layout) String() string {
	b := new(strings.Builder)
	b.WriteByte('>')
	for _, k := range l.kinds {
		b.WriteByte(kindInfo[k].code)
	}
	return b.String()
}

// Encode returns the big-endian encoding of fields.  The fields must match the layout exactly;
// an int is not an int16, and a float64 is not a float32.
func (l Layout) Encode(fields []interface{}) ([]byte, error) {
	return l.AppendEncode(make([]byte, 0, l.size), fields)
}

// AppendEncode is like Encode, but appends to dst.
func (l Layout) AppendEncode(dst []byte, fields []interface{}) ([]byte, error) {
	if got, want := len(fields), len(l.kinds); got != want {
		return nil, fmt.Errorf("got %d fields, want %d: %w", got, want, ErrFieldCount)
	}
	for i, k := range l.kinds {
		if got := KindOf(fields[i]); got != k {
			return nil, fmt.Errorf("field %d: got %s (%T), want %s: %w", i, got, fields[i], k, ErrFieldType)
		}
	}
	for _, f := range fields {
		switch v := f.(type) {
		case int8:
			dst = append(dst, byte(v))
		case uint8:
			dst = append(dst, v)
		case int16:
			dst = binary.BigEndian.AppendUint16(dst, uint16(v))
		case uint16:
			dst = binary.BigEndian.AppendUint16(dst, v)
		case int32:
			dst = binary.BigEndian.AppendUint32(dst, uint32(v))
		case uint32:
			dst = binary.BigEndian.AppendUint32(dst, v)
		case int64:
			dst = binary.BigEndian.AppendUint64(dst, uint64(v))
		case uint64:
			dst = binary.BigEndian.AppendUint64(dst, v)
		case float32:
			dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(v))
		case float64:
			dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
		}
	}
	return dst, nil
}

// Decode splits payload into fields.  The payload must be exactly Size() bytes long.
func (l Layout) Decode(payload []byte) ([]interface{}, error) {
	if got, want := len(payload), l.size; got != want {
		return nil, fmt.Errorf("got %d bytes, want %d: %w", got, want, ErrPayloadLength)
	}
	fields := make([]interface{}, 0, len(l.kinds))
	b := payload
	for _, k := range l.kinds {
		var v interface{}
		switch k {
		case Int8:
			v = int8(b[0])
		case Uint8:
			v = b[0]
		case Int16:
			v = int16(binary.BigEndian.Uint16(b))
		case Uint16:
			v = binary.BigEndian.Uint16(b)
		case Int32:
			v = int32(binary.BigEndian.Uint32(b))
		case Uint32:
			v = binary.BigEndian.Uint32(b)
		case Int64:
			v = int64(binary.BigEndian.Uint64(b))
		case Uint64:
			v = binary.BigEndian.Uint64(b)
		case Float32:
			v = math.Float32frombits(binary.BigEndian.Uint32(b))
		case Float64:
			v = math.Float64frombits(binary.BigEndian.Uint64(b))
		}
		fields = append(fields, v)
		b = b[k.Size():]
	}
	return fields, nil
}
