package tsip

import "errors"

var (
	// ErrStillFramed is returned when a packet handed to the decoder still carries the <DLE>
	// ... <DLE> <ETX> link-level framing.  Strip it (see Packetizer) before decoding.
	ErrStillFramed = errors.New("packet still carries DLE/ETX framing")

	// ErrUnknownPacket is returned when packing an identity that the registry has no layout for.
	ErrUnknownPacket = errors.New("unknown packet identity")

	// ErrSubcodeNotSupported is returned when a sub-code is attached to a packet code that does
	// not carry one.
	ErrSubcodeNotSupported = errors.New("packet code does not take a sub-code")

	// ErrFieldCount is returned when the number of fields does not match the layout.
	ErrFieldCount = errors.New("field count does not match layout")

	// ErrFieldType is returned when a field's Go type does not match the layout.
	ErrFieldType = errors.New("field type does not match layout")

	// ErrPayloadLength is returned when the payload of a catalogued packet is not exactly the
	// layout's width.
	ErrPayloadLength = errors.New("payload length does not match layout")

	ErrEmptyPacket = errors.New("empty packet")
	ErrBadLayout   = errors.New("invalid layout format")
)
