// Package tsip encodes and decodes the Trimble Standard Interface Protocol spoken by Trimble GPS
// receivers like the Resolution-T:
// http://trl.trimble.com/docushare/dsweb/Get/Document-221342/ResolutionT_UG_2B_54655-05-ENG.pdf
//
// A packet on the wire is a code byte, a sub-code byte for some codes, and a payload whose layout
// is fixed for each packet type.  A Registry maps packet types to layouts; Default is built from
// Catalog.  Framing (<DLE> <id> ... <DLE> <ETX>) is handled separately by Packetizer and Frame.
package tsip

import (
	"encoding"
	"fmt"
)

var (
	_ encoding.BinaryMarshaler   = (*Packet)(nil)
	_ encoding.BinaryUnmarshaler = (*Packet)(nil)
)

// Pack returns the binary form of a packet: the code, the sub-code if present, and the encoded
// fields.  No framing or DLE stuffing is applied; see Frame.
func (r *Registry) Pack(p *Packet) ([]byte, error) {
	l, err := r.ForPack(p.id)
	if err != nil {
		return nil, fmt.Errorf("pack: %w", err)
	}
	buf := p.id.AppendBinary(make([]byte, 0, p.id.Len()+l.Size()))
	buf, err = l.AppendEncode(buf, p.fields)
	if err != nil {
		return nil, fmt.Errorf("pack %v: %w", p.id, err)
	}
	return buf, nil
}

// Unpack decodes a de-framed packet.  Packets whose identity is not in the registry decode
// successfully to a single []byte field holding everything after the code, so that unexpected
// receiver output never stops a reader.  A catalogued packet whose payload has the wrong length
// is an error.
func (r *Registry) Unpack(raw []byte) (*Packet, error) {
	res, err := r.Classify(raw)
	if err != nil {
		return nil, fmt.Errorf("unpack: %w", err)
	}
	return r.unpack(raw, res)
}

func (r *Registry) unpack(raw []byte, res Resolved) (*Packet, error) {
	payload := raw[res.IDLen:]
	if res.Resolution == Opaque {
		return &Packet{id: res.ID, fields: []interface{}{append([]byte{}, payload...)}}, nil
	}
	fields, err := res.Layout.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("unpack %v (%s layout %v): %w", res.ID, res.Resolution, res.Layout, err)
	}
	return &Packet{id: res.ID, fields: fields}, nil
}

// Pack encodes a packet with the Default registry.
func Pack(p *Packet) ([]byte, error) {
	return Default.Pack(p)
}

// Unpack decodes a packet with the Default registry.
func Unpack(raw []byte) (*Packet, error) {
	return Default.Unpack(raw)
}

// MarshalBinary encodes the packet with the Default registry.
func (p *Packet) MarshalBinary() ([]byte, error) {
	return Default.Pack(p)
}

// UnmarshalBinary replaces the packet with the decoding of data, using the Default registry.  The
// packet is not modified on error.
func (p *Packet) UnmarshalBinary(data []byte) error {
	result, err := Default.Unpack(data)
	if err != nil {
		return err
	}
	*p = *result
	return nil
}
