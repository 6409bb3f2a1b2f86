package tsip

import (
	"fmt"
	"sort"
)

// Definition describes one catalogued packet type.
type Definition struct {
	ID     ID
	Name   string
	Format string // Payload layout, in the form accepted by ParseLayout.
}

// Registry maps packet identities to payload layouts.  A code that does not take a sub-code maps to
// exactly one layout; a code that does may map to a default layout, a layout per sub-code, or
// both.  A Registry is never modified after NewRegistry returns, so it is safe for concurrent use.
type Registry struct {
	layouts    map[byte]Layout
	sublayouts map[byte]map[byte]Layout
	defs       map[ID]Definition
}

// NewRegistry builds a registry from a catalogue of definitions.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		layouts:    make(map[byte]Layout),
		sublayouts: make(map[byte]map[byte]Layout),
		defs:       make(map[ID]Definition),
	}
	for _, d := range defs {
		if err := d.ID.Validate(); err != nil {
			return nil, fmt.Errorf("definition %v (%s): %w", d.ID, d.Name, err)
		}
		if _, ok := r.defs[d.ID]; ok {
			return nil, fmt.Errorf("definition %v (%s): duplicate packet identity", d.ID, d.Name)
		}
		l, err := ParseLayout(d.Format)
		if err != nil {
			return nil, fmt.Errorf("definition %v (%s): %w", d.ID, d.Name, err)
		}
		if d.ID.HasSubcode {
			subs, ok := r.sublayouts[d.ID.Code]
			if !ok {
				subs = make(map[byte]Layout)
				r.sublayouts[d.ID.Code] = subs
			}
			subs[d.ID.Subcode] = l
		} else {
			r.layouts[d.ID.Code] = l
		}
		r.defs[d.ID] = d
	}
	return r, nil
}

// MustRegistry is like NewRegistry, but panics on error.
func MustRegistry(defs []Definition) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the layout for a code and sub-code.  It never falls back to the code-only layout.
func (r *Registry) Lookup(code, subcode byte) (Layout, bool) {
	l, ok := r.sublayouts[code][subcode]
	return l, ok
}

// LookupCode returns the layout registered for a code without a sub-code.
func (r *Registry) LookupCode(code byte) (Layout, bool) {
	l, ok := r.layouts[code]
	return l, ok
}

// Name returns the catalogued name of a packet type, or "".
func (r *Registry) Name(id ID) string {
	return r.defs[id].Name
}

// Definitions returns every definition in the registry, ordered by code and then sub-code.
func (r *Registry) Definitions() []Definition {
	result := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].ID, result[j].ID
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.HasSubcode != b.HasSubcode {
			return !a.HasSubcode
		}
		return a.Subcode < b.Subcode
	})
	return result
}
