package tsip

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLayout(t *testing.T) {
	testData := []struct {
		format string
		size   int
		kinds  []Kind
		str    string
	}{
		{"", 0, nil, ">"},
		{">", 0, nil, ">"},
		{">IHhBBBBBBH", 16, []Kind{Uint32, Uint16, Int16, Uint8, Uint8, Uint8, Uint8, Uint8, Uint8, Uint16}, ">IHhBBBBBBH"},
		{"!bB", 2, []Kind{Int8, Uint8}, ">bB"},
		{"chfffff", 23, []Kind{Uint8, Int16, Float32, Float32, Float32, Float32, Float32}, ">Bhfffff"},
		{">qQlLd", 32, []Kind{Int64, Uint64, Int32, Uint32, Float64}, ">qQiId"},
		{">BBBIHHBBBBffIffdddfI", 67, nil, ">BBBIHHBBBBffIffdddfI"},
	}
	for _, test := range testData {
		t.Run(test.format, func(t *testing.T) {
			l, err := ParseLayout(test.format)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got, want := l.Size(), test.size; got != want {
				t.Errorf("size:\n  got: %v\n want: %v", got, want)
			}
			if test.kinds != nil {
				if diff := cmp.Diff(test.kinds, l.Kinds()); diff != "" {
					t.Errorf("kinds (-want +got):\n%s", diff)
				}
			}
			if got, want := l.String(), test.str; got != want {
				t.Errorf("string:\n  got: %v\n want: %v", got, want)
			}
		})
	}
}

func TestParseLayoutErrors(t *testing.T) {
	for _, format := range []string{"<H", "=H", "@H", ">x", ">3s", ">B?", "H>"} {
		if _, err := ParseLayout(format); !errors.Is(err, ErrBadLayout) {
			t.Errorf("parse %q: got %v, want %v", format, err, ErrBadLayout)
		}
	}
	if _, err := NewLayout(Uint8, Bytes); !errors.Is(err, ErrBadLayout) {
		t.Errorf("layout with bytes: got %v, want %v", err, ErrBadLayout)
	}
}

func TestEncodeDecode(t *testing.T) {
	l := MustLayout(">bBhHiIqQfd")
	fields := []interface{}{
		int8(-2), uint8(0xfe), int16(-3), uint16(0xfffd), int32(-4), uint32(0xfffffffc),
		int64(-5), uint64(0xfffffffffffffffb), float32(-1.5), float64(2.5),
	}
	want := []byte{
		0xfe, 0xfe, 0xff, 0xfd, 0xff, 0xfd, 0xff, 0xff, 0xff, 0xfc, 0xff, 0xff, 0xff, 0xfc,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfb, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfb,
		0xbf, 0xc0, 0x00, 0x00, 0x40, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	got, err := l.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("encode (-want +got):\n%s", diff)
	}

	decoded, err := l.Decode(got)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(fields, decoded); diff != "" {
		t.Errorf("decode (-want +got):\n%s", diff)
	}
}

func TestKindOf(t *testing.T) {
	testData := []struct {
		v    interface{}
		want Kind
	}{
		{int8(0), Int8},
		{byte(0), Uint8},
		{uint64(0), Uint64},
		{float32(0), Float32},
		{0.0, Float64},
		{[]byte{}, Bytes},
		{0, Invalid},
		{"x", Invalid},
		{nil, Invalid},
	}
	for _, test := range testData {
		if got, want := KindOf(test.v), test.want; got != want {
			t.Errorf("KindOf(%#v):\n  got: %v\n want: %v", test.v, got, want)
		}
	}
}
