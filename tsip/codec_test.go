package tsip

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type packetView struct {
	ID     ID
	Fields []interface{}
}

func view(p *Packet) *packetView {
	if p == nil {
		return nil
	}
	return &packetView{ID: p.ID(), Fields: p.Fields()}
}

func mustBase64(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("base64 %q: %v", s, err)
	}
	return b
}

func TestUnpack(t *testing.T) {
	testData := []struct {
		name    string
		input   string
		want    *packetView
		wantErr error
	}{
		{
			name:  "primary timing",
			input: "j6sAA+1TB8oAEgMFHRcbAwfi",
			want: &packetView{
				ID: Sub(0x8f, 0xab),
				Fields: []interface{}{
					uint32(257363), uint16(1994), int16(18), uint8(3),
					uint8(5), uint8(29), uint8(23), uint8(27), uint8(3), uint16(2018),
				},
			},
		},
		{
			name:  "supplemental timing",
			input: "j6wHAAAAAAAAAAAAAAAAAABHsfslRJ6WMQAAAAAAAAAAQgu6oAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAEGJS0cAAAAA",
			want: &packetView{
				ID: Sub(0x8f, 0xac),
				Fields: []interface{}{
					uint8(7), uint8(0), uint8(0), uint32(0), uint16(0), uint16(0),
					uint8(0), uint8(0), uint8(0), uint8(0),
					float32(91126.2890625), float32(1268.6934814453125), uint32(0),
					float32(0), float32(34.9322509765625),
					float64(0), float64(0), float64(0),
					float32(17.16175651550293), uint32(0),
				},
			},
		},
		{
			name:  "raw measurement",
			input: "Wgs/gAAAQjYAAEZ65Z7B14TbQQ9qmCAAAAA=",
			want: &packetView{
				ID: Code(0x5a),
				Fields: []interface{}{
					uint8(11), float32(1), float32(45.5), float32(16057.404296875),
					float32(-26.939870834350586), float64(257363.015625),
				},
			},
		},
		{
			name:  "tracking status",
			input: "XBoAAAAAAAAASOqnIj3NKoFAVJgRAQAAAQ==",
			want: &packetView{
				ID: Code(0x5c),
				Fields: []interface{}{
					uint8(26), uint8(0), uint8(0), uint8(0),
					float32(0), float32(480569.0625), float32(0.10017872601747513), float32(3.3217813968658447),
					uint8(1), uint8(0), uint8(0), uint8(1),
				},
			},
		},
		{
			name:  "all in view is opaque",
			input: "bS0AAAAAAAAAAAAAAAAAAAAACBI=",
			want: &packetView{
				ID: Code(0x6d),
				Fields: []interface{}{
					[]byte{0x2d, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x08, 0x12},
				},
			},
		},
		{
			name:    "truncated single-precision fix",
			input:   "QgA=",
			wantErr: ErrPayloadLength,
		},
		{
			name:    "framed",
			input:   "EI+rEAM=",
			wantErr: ErrStillFramed,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrEmptyPacket,
		},
	}

	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			got, err := Unpack(mustBase64(t, test.input))
			if want := test.wantErr; !errors.Is(err, want) {
				t.Errorf("unpack error:\n  got: %v\n want: %v", err, want)
			}
			if err != nil && got != nil {
				t.Errorf("unpack returned a packet along with error %v: %v", err, got)
			}
			if diff := cmp.Diff(test.want, view(got)); diff != "" {
				t.Errorf("unpack (-want +got):\n%s", diff)
			}
		})
	}
}

// sample returns a value of the given kind that exercises every byte of its encoding.
func sample(k Kind, i int) interface{} {
	switch k {
	case Int8:
		return int8(-1 - i)
	case Uint8:
		return uint8(DLE + i)
	case Int16:
		return int16(-1234 - i)
	case Uint16:
		return uint16(0xbe00 + i)
	case Int32:
		return int32(-123456 - i)
	case Uint32:
		return uint32(0xdeadbe00 + uint32(i))
	case Int64:
		return int64(-1<<40 - i)
	case Uint64:
		return uint64(1<<63 + uint64(i))
	case Float32:
		return float32(i) + 0.5
	case Float64:
		return -float64(i) - 0.25
	}
	panic(fmt.Sprintf("no sample for %v", k))
}

func TestRoundTrip(t *testing.T) {
	for _, def := range Catalog {
		t.Run(def.ID.String(), func(t *testing.T) {
			l := MustLayout(def.Format)
			var fields []interface{}
			for i, k := range l.Kinds() {
				fields = append(fields, sample(k, i))
			}
			p, err := New(def.ID, fields...)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			raw, err := Pack(p)
			if err != nil {
				t.Fatalf("pack: %v", err)
			}
			if got, want := len(raw), def.ID.Len()+l.Size(); got != want {
				t.Errorf("packed length:\n  got: %v\n want: %v", got, want)
			}
			got, err := Unpack(raw)
			if err != nil {
				t.Fatalf("unpack %x: %v", raw, err)
			}
			if diff := cmp.Diff(view(p), view(got)); diff != "" {
				t.Errorf("round trip (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpaqueFallback(t *testing.T) {
	for n := 0; n < 70; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		raw := append([]byte{0xf7}, payload...)
		got, err := Unpack(raw)
		if err != nil {
			t.Fatalf("unpack %d byte payload: %v", n, err)
		}
		want := &packetView{ID: Code(0xf7), Fields: []interface{}{payload}}
		if diff := cmp.Diff(want, view(got)); diff != "" {
			t.Errorf("unpack %d byte payload (-want +got):\n%s", n, diff)
		}
	}
}

func TestOpaqueFieldIsCopied(t *testing.T) {
	raw := []byte{0x47, 1, 2, 3}
	p, err := Unpack(raw)
	if err != nil {
		t.Fatal(err)
	}
	raw[1] = 0xff
	b, err := p.Bytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, b); diff != "" {
		t.Errorf("opaque field aliases the input (-want +got):\n%s", diff)
	}
}

func TestUnknownSubcodeIsOpaque(t *testing.T) {
	got, err := Unpack([]byte{0x8f, 0x99, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := &packetView{ID: Code(0x8f), Fields: []interface{}{[]byte{0x99, 1, 2}}}
	if diff := cmp.Diff(want, view(got)); diff != "" {
		t.Errorf("unknown sub-code (-want +got):\n%s", diff)
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry([]Definition{
		{Code(0x26), "Request health", ""},
		{Code(0x8e), "Generic timing command", ">B"},
		{Sub(0x8e, 0x4f), "Set PPS width", ">d"},
		{Code(0x3c), "Request tracking status", ">B"},
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r
}

func TestSubcodeDisambiguation(t *testing.T) {
	r := testRegistry(t)
	raw := []byte{0x8e, 0x4f, 0x3f, 0xb9, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}

	res, err := r.Classify(raw)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got, want := res.Resolution, Specific; got != want {
		t.Errorf("resolution:\n  got: %v\n want: %v", got, want)
	}
	if got, want := res.IDLen, 2; got != want {
		t.Errorf("identity length:\n  got: %v\n want: %v", got, want)
	}

	got, err := r.Unpack(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	want := &packetView{ID: Sub(0x8e, 0x4f), Fields: []interface{}{0.1}}
	if diff := cmp.Diff(want, view(got)); diff != "" {
		t.Errorf("unpack (-want +got):\n%s", diff)
	}

	// An unknown sub-code falls back to the code's own layout, and the second byte is data.
	got, err = r.Unpack([]byte{0x8e, 0x42})
	if err != nil {
		t.Fatalf("unpack generic: %v", err)
	}
	want = &packetView{ID: Code(0x8e), Fields: []interface{}{uint8(0x42)}}
	if diff := cmp.Diff(want, view(got)); diff != "" {
		t.Errorf("unpack generic (-want +got):\n%s", diff)
	}
}

func TestClassify(t *testing.T) {
	r := testRegistry(t)
	testData := []struct {
		input []byte
		want  Resolved
	}{
		{
			input: []byte{0x26},
			want:  Resolved{ID: Code(0x26), Layout: MustLayout(""), Resolution: Generic, IDLen: 1},
		},
		{
			input: []byte{0x8e},
			want:  Resolved{ID: Code(0x8e), Layout: MustLayout(">B"), Resolution: Generic, IDLen: 1},
		},
		{
			input: []byte{0x3c, 0x4f},
			want:  Resolved{ID: Code(0x3c), Layout: MustLayout(">B"), Resolution: Generic, IDLen: 1},
		},
		{
			input: []byte{0x99},
			want:  Resolved{ID: Code(0x99), Resolution: Opaque, IDLen: 1},
		},
		{
			input: []byte{0x99, 0x4f, 0x00},
			want:  Resolved{ID: Code(0x99), Resolution: Opaque, IDLen: 1},
		},
	}

	for _, test := range testData {
		t.Run(fmt.Sprintf("%x", test.input), func(t *testing.T) {
			for i := 0; i < 2; i++ {
				got, err := r.Classify(test.input)
				if err != nil {
					t.Fatalf("classify (attempt %d): %v", i, err)
				}
				if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(Layout{})); diff != "" {
					t.Errorf("classify (attempt %d) (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestSingleByte(t *testing.T) {
	got, err := Unpack([]byte{0x26})
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if diff := cmp.Diff(&packetView{ID: Code(0x26)}, view(got)); diff != "" {
		t.Errorf("unpack (-want +got):\n%s", diff)
	}
}

func TestPayloadLength(t *testing.T) {
	good, err := Pack(mustPacket(t, Sub(0x8f, 0xab),
		uint32(257363), uint16(1994), int16(18), uint8(3),
		uint8(5), uint8(29), uint8(23), uint8(27), uint8(3), uint16(2018)))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	short := good[:len(good)-1]
	if _, err := Unpack(short); !errors.Is(err, ErrPayloadLength) {
		t.Errorf("unpack short packet: got %v, want %v", err, ErrPayloadLength)
	}
	long := append(append([]byte{}, good...), 0)
	if _, err := Unpack(long); !errors.Is(err, ErrPayloadLength) {
		t.Errorf("unpack long packet: got %v, want %v", err, ErrPayloadLength)
	}
	if _, err := Unpack([]byte{0x26, 0x00}); !errors.Is(err, ErrPayloadLength) {
		t.Errorf("unpack 0x26 with a payload: got %v, want %v", err, ErrPayloadLength)
	}
}

func TestPackErrors(t *testing.T) {
	testData := []struct {
		name   string
		packet *Packet
		want   error
	}{
		{
			name:   "unknown code",
			packet: &Packet{id: Code(0xf7)},
			want:   ErrUnknownPacket,
		},
		{
			name:   "unknown subcode",
			packet: &Packet{id: Sub(0x8f, 0x99)},
			want:   ErrUnknownPacket,
		},
		{
			name:   "subcode on plain code",
			packet: &Packet{id: Sub(0x26, 0x01)},
			want:   ErrSubcodeNotSupported,
		},
		{
			name:   "too few fields",
			packet: &Packet{id: Code(0x23), fields: []interface{}{float32(1), float32(2)}},
			want:   ErrFieldCount,
		},
		{
			name:   "too many fields",
			packet: &Packet{id: Code(0x26), fields: []interface{}{uint8(1)}},
			want:   ErrFieldCount,
		},
		{
			name:   "float64 for float32",
			packet: &Packet{id: Code(0x23), fields: []interface{}{float32(1), float32(2), 3.0}},
			want:   ErrFieldType,
		},
		{
			name:   "int for uint8",
			packet: &Packet{id: Code(0x3c), fields: []interface{}{1}},
			want:   ErrFieldType,
		},
		{
			name:   "opaque blob",
			packet: &Packet{id: Code(0x3c), fields: []interface{}{[]byte{1}}},
			want:   ErrFieldType,
		},
	}

	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			got, err := Pack(test.packet)
			if want := test.want; !errors.Is(err, want) {
				t.Errorf("pack error:\n  got: %v\n want: %v", err, want)
			}
			if got != nil {
				t.Errorf("pack returned bytes along with error: %x", got)
			}
		})
	}
}

func TestPackSubcodeZero(t *testing.T) {
	r, err := NewRegistry([]Definition{{Sub(0x1c, 0x00), "zero", ">B"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Pack(mustPacket(t, Sub(0x1c, 0x00), uint8(7)))
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if diff := cmp.Diff([]byte{0x1c, 0x00, 0x07}, got); diff != "" {
		t.Errorf("pack (-want +got):\n%s", diff)
	}
}

func TestBinaryMarshaler(t *testing.T) {
	p, err := NewFromArgs(0x8e, 0x4f, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := []byte{0x8e, 0x4f, 0x3f, 0xb9, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9a}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("marshal (-want +got):\n%s", diff)
	}

	got := new(Packet)
	if err := got.UnmarshalBinary(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(view(p), view(got)); diff != "" {
		t.Errorf("unmarshal (-want +got):\n%s", diff)
	}

	if err := got.UnmarshalBinary(raw[:3]); !errors.Is(err, ErrPayloadLength) {
		t.Errorf("unmarshal short packet: got %v, want %v", err, ErrPayloadLength)
	}
	if diff := cmp.Diff(view(p), view(got)); diff != "" {
		t.Errorf("failed unmarshal modified the packet (-want +got):\n%s", diff)
	}
}

func TestNewRegistryErrors(t *testing.T) {
	testData := []struct {
		name string
		defs []Definition
	}{
		{"bad format", []Definition{{Code(0x26), "x", ">Z"}}},
		{"little endian", []Definition{{Code(0x26), "x", "<H"}}},
		{"duplicate", []Definition{{Code(0x26), "x", ""}, {Code(0x26), "y", ">B"}}},
		{"subcode on plain code", []Definition{{Sub(0x26, 1), "x", ""}}},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewRegistry(test.defs); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func mustPacket(t *testing.T, id ID, fields ...interface{}) *Packet {
	t.Helper()
	p, err := New(id, fields...)
	if err != nil {
		t.Fatalf("new packet %v: %v", id, err)
	}
	return p
}
