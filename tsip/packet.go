package tsip

import (
	"fmt"
	"strings"
)

// Packet is a decoded TSIP packet: an identity and the payload fields, in wire order.  Field values
// are the Go scalar types listed in Kind (int8 through float64), or a single []byte for packets
// that were decoded without a catalogued layout.
//
// A Packet is not safe for concurrent modification.
type Packet struct {
	id     ID
	fields []interface{}
}

// New returns a packet with the given identity and fields.  The fields are copied.
func New(id ID, fields ...interface{}) (*Packet, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	p := &Packet{id: id}
	p.SetFields(fields...)
	return p, nil
}

// NewFromArgs builds a packet the way the Trimble documentation writes them: the code, then the
// sub-code if the code takes one, then the fields.  The sub-code may be a byte or an int.
//
//	NewFromArgs(0x1f)                         // request software versions
//	NewFromArgs(0x23, float32(-37.1), float32(144.1), float32(10)) // set initial position
//	NewFromArgs(0x8e, 0x4f, 0.1)              // set PPS width to 0.1s
func NewFromArgs(code byte, args ...interface{}) (*Packet, error) {
	if !HasSubcode(code) {
		return New(Code(code), args...)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("packet %#02x: missing sub-code", code)
	}
	var sub byte
	switch v := args[0].(type) {
	case byte:
		sub = v
	case int:
		if v < 0 || v > 0xff {
			return nil, fmt.Errorf("packet %#02x: sub-code %d out of range", code, v)
		}
		sub = byte(v)
	default:
		return nil, fmt.Errorf("packet %#02x: sub-code has type %T, want byte", code, args[0])
	}
	return New(Sub(code, sub), args[1:]...)
}

// ID returns the packet's identity.
func (p *Packet) ID() ID { return p.id }

// Code returns the packet's code.
func (p *Packet) Code() byte { return p.id.Code }

// Subcode returns the packet's sub-code, if it has one.
func (p *Packet) Subcode() (byte, bool) { return p.id.Subcode, p.id.HasSubcode }

// SetSubcode attaches a sub-code to the packet.  It fails if the packet's code does not take one.
func (p *Packet) SetSubcode(sub byte) error {
	id := Sub(p.id.Code, sub)
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

// ClearSubcode removes the packet's sub-code.
func (p *Packet) ClearSubcode() {
	p.id = Code(p.id.Code)
}

// Fields returns a copy of the packet's fields.
func (p *Packet) Fields() []interface{} {
	return append([]interface{}(nil), p.fields...)
}

// SetFields replaces the packet's fields with a copy of fields.  []byte fields are copied too.
func (p *Packet) SetFields(fields ...interface{}) {
	p.fields = make([]interface{}, len(fields))
	for i, f := range fields {
		if b, ok := f.([]byte); ok {
			f = append([]byte{}, b...)
		}
		p.fields[i] = f
	}
}

// Len returns the number of fields.
func (p *Packet) Len() int { return len(p.fields) }

// Field returns the i'th field.
func (p *Packet) Field(i int) (interface{}, error) {
	if i < 0 || i >= len(p.fields) {
		return nil, fmt.Errorf("packet %v: field %d out of range (have %d)", p.id, i, len(p.fields))
	}
	return p.fields[i], nil
}

// Uint returns the i'th field, which must be an unsigned integer, as a uint64.
func (p *Packet) Uint(i int) (uint64, error) {
	f, err := p.Field(i)
	if err != nil {
		return 0, err
	}
	switch v := f.(type) {
	case uint8:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	}
	return 0, fmt.Errorf("packet %v: field %d is %T, not unsigned: %w", p.id, i, f, ErrFieldType)
}

// Int returns the i'th field, which must be a signed integer, as an int64.
func (p *Packet) Int(i int) (int64, error) {
	f, err := p.Field(i)
	if err != nil {
		return 0, err
	}
	switch v := f.(type) {
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, fmt.Errorf("packet %v: field %d is %T, not signed: %w", p.id, i, f, ErrFieldType)
}

// Float returns the i'th field, which must be a float32 or float64, as a float64.
func (p *Packet) Float(i int) (float64, error) {
	f, err := p.Field(i)
	if err != nil {
		return 0, err
	}
	switch v := f.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("packet %v: field %d is %T, not a float: %w", p.id, i, f, ErrFieldType)
}

// Bytes returns the i'th field, which must be an opaque []byte field.  The result must not be
// modified.
func (p *Packet) Bytes(i int) ([]byte, error) {
	f, err := p.Field(i)
	if err != nil {
		return nil, err
	}
	b, ok := f.([]byte)
	if !ok {
		return nil, fmt.Errorf("packet %v: field %d is %T, not []byte: %w", p.id, i, f, ErrFieldType)
	}
	return b, nil
}

// String returns a human-readable version of the packet, like "Packet_8f/ab[257363 1994 18]".
func (p *Packet) String() string {
	b := new(strings.Builder)
	b.WriteString("Packet_")
	b.WriteString(p.id.String())
	b.WriteByte('[')
	for i, f := range p.fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		if raw, ok := f.([]byte); ok {
			fmt.Fprintf(b, "%x", raw)
			continue
		}
		fmt.Fprintf(b, "%v", f)
	}
	b.WriteByte(']')
	return b.String()
}

// Scan copies the packet's fields into the values pointed at by dst, like sql.Rows.Scan.  Each
// destination must be a pointer to exactly the field's type, or nil to skip the field.  There must
// be one destination per field.
func (p *Packet) Scan(dst ...interface{}) error {
	if got, want := len(dst), len(p.fields); got != want {
		return fmt.Errorf("packet %v: scan into %d values, have %d fields: %w", p.id, got, want, ErrFieldCount)
	}
	for i, f := range p.fields {
		ok := true
		switch d := dst[i].(type) {
		case nil:
		case *int8:
			*d, ok = f.(int8)
		case *uint8:
			*d, ok = f.(uint8)
		case *int16:
			*d, ok = f.(int16)
		case *uint16:
			*d, ok = f.(uint16)
		case *int32:
			*d, ok = f.(int32)
		case *uint32:
			*d, ok = f.(uint32)
		case *int64:
			*d, ok = f.(int64)
		case *uint64:
			*d, ok = f.(uint64)
		case *float32:
			*d, ok = f.(float32)
		case *float64:
			*d, ok = f.(float64)
		case *[]byte:
			var b []byte
			b, ok = f.([]byte)
			*d = append([]byte(nil), b...)
		default:
			return fmt.Errorf("packet %v: field %d: unsupported scan destination %T", p.id, i, dst[i])
		}
		if !ok {
			return fmt.Errorf("packet %v: field %d: cannot scan %T into %T: %w", p.id, i, f, dst[i], ErrFieldType)
		}
	}
	return nil
}
