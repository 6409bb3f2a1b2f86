package tsip

import "fmt"

// Resolution says how a packet's layout was found.
type Resolution int

const (
	// Specific means the layout was registered for the packet's code and sub-code.
	Specific Resolution = iota + 1
	// Generic means the layout was registered for the packet's code alone.
	Generic
	// Opaque means no layout was found, and the payload is carried as a single []byte field.
	Opaque
)

func (r Resolution) String() string {
	switch r {
	case Specific:
		return "specific"
	case Generic:
		return "generic"
	case Opaque:
		return "opaque"
	}
	return fmt.Sprintf("Resolution(%d)", int(r))
}

// Resolved is the result of classifying a raw packet.
type Resolved struct {
	ID         ID
	Layout     Layout // Zero when Resolution is Opaque.
	Resolution Resolution
	IDLen      int // Number of leading bytes that make up the identity; the payload follows.
}

// ForPack returns the layout used to encode a packet with the given identity.  The sub-code
// specific layout is preferred, then the code's default layout.  Unlike Classify, there is no
// opaque fallback; an identity that is not in the registry is an error.
func (r *Registry) ForPack(id ID) (Layout, error) {
	if err := id.Validate(); err != nil {
		return Layout{}, err
	}
	if id.HasSubcode {
		if l, ok := r.Lookup(id.Code, id.Subcode); ok {
			return l, nil
		}
	}
	if l, ok := r.LookupCode(id.Code); ok {
		return l, nil
	}
	return Layout{}, fmt.Errorf("packet %v: %w", id, ErrUnknownPacket)
}

// Classify works out the identity and layout of a raw, de-framed packet.  The second byte is
// tried as a sub-code first; if the registry has no layout for that, it is treated as the first
// byte of the payload of the code's default layout.  When neither exists, the packet is Opaque.
// Classify only fails on empty input, or input that still has its framing.
func (r *Registry) Classify(raw []byte) (Resolved, error) {
	if len(raw) == 0 {
		return Resolved{}, ErrEmptyPacket
	}
	if IsFramed(raw) {
		return Resolved{}, ErrStillFramed
	}
	code := raw[0]
	if len(raw) >= 2 {
		if l, ok := r.Lookup(code, raw[1]); ok {
			return Resolved{ID: Sub(code, raw[1]), Layout: l, Resolution: Specific, IDLen: 2}, nil
		}
	}
	if l, ok := r.LookupCode(code); ok {
		return Resolved{ID: Code(code), Layout: l, Resolution: Generic, IDLen: 1}, nil
	}
	return Resolved{ID: Code(code), Resolution: Opaque, IDLen: 1}, nil
}
