package tsip

const (
	DLE = 0x10
	ETX = 0x03
)

// IsFramed reports whether b still carries link-level framing.  DLE is not a valid packet code, so
// a leading DLE means the packet was not unframed, whether or not the trailing <DLE> <ETX> is
// still there.  A trailing <DLE> <ETX> alone is not checked; after de-stuffing, those can be the
// last two bytes of a legitimate payload.
func IsFramed(b []byte) bool {
	return len(b) > 0 && b[0] == DLE
}

// Frame wraps a packed packet in <DLE> ... <DLE> <ETX>, doubling any DLE bytes in the packet.
func Frame(packet []byte) []byte {
	out := make([]byte, 0, len(packet)+4)
	out = append(out, DLE)
	for _, b := range packet {
		if b == DLE {
			out = append(out, DLE)
		}
		out = append(out, b)
	}
	return append(out, DLE, ETX)
}

// Packetizer is an io.Writer that collects TSIP bytes and emits full packets for further processing.
type Packetizer struct {
	// Channel C produces TSIP packets, in the format of <id> <packet data> (no TSIP protocol
	// padding or stuffed DLE bytes).  Write blocks until each packet is received.
	C chan []byte

	buf     []byte
	fullDLE bool // true if the last byte in buf is actually two DLE bytes
}

// NewPacketizer returns a Packetizer whose channel has the given buffer size.
func NewPacketizer(buffer int) *Packetizer {
	return &Packetizer{C: make(chan []byte, buffer)}
}

// Write collects TSIP bytes to be packetized.
func (p *Packetizer) Write(in []byte) (int, error) {
	for _, b := range in {
		// A DLE byte indicates that we are about to read <DLE> <id> for a new packet, <DLE>
		// <ETX> for the end of the packet, or <DLE> <DLE> for a literal DLE octet in the data.
		if l := len(p.buf); l > 0 && !p.fullDLE && p.buf[l-1] == DLE {
			switch b {
			case ETX:
				for s, c := range p.buf {
					// Find the first DLE byte and send from there (usually 0).  There is no
					// guarantee that TSIP is even in the buffer; gpspipe prints JSON to
					// stdout at the beginning and then switches to TSIP.  A DLE byte in that
					// JSON confuses the next stage with garbage data, but it will
					// resynchronize on the next packet.
					if c == DLE {
						if s+1 < l-1 {
							p.C <- append([]byte{}, p.buf[s+1:l-1]...)
						}
						break
					}
				}
				p.buf = p.buf[:0]
				continue
			case DLE:
				// The last byte was DLE, so don't add another byte, and tell the next
				// iteration of the loop not to treat the DLE as anything other than data.
				p.fullDLE = true
				continue
			}
		}

		p.buf = append(p.buf, b)
		p.fullDLE = false
	}
	return len(in), nil
}
