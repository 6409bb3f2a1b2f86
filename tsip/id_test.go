package tsip

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	testData := []struct {
		in      string
		want    ID
		wantErr error
	}{
		{in: "26", want: Code(0x26)},
		{in: "0x5A", want: Code(0x5a)},
		{in: "f", want: Code(0x0f)},
		{in: "8f/ab", want: Sub(0x8f, 0xab)},
		{in: "0x8e/0x4f", want: Sub(0x8e, 0x4f)},
		{in: "8fab", want: Sub(0x8f, 0xab)},
		{in: " 0x1e4b ", want: Sub(0x1e, 0x4b)},
		{in: "26/01", wantErr: ErrSubcodeNotSupported},
		{in: "2601", wantErr: ErrSubcodeNotSupported},
	}
	for _, test := range testData {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseID(test.in)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("parse error:\n  got: %v\n want: %v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if want := test.want; got != want {
				t.Errorf("parse:\n  got: %v\n want: %v", got, want)
			}
		})
	}

	for _, in := range []string{"", "xyz", "8f/", "/ab", "123", "12345", "1ff/00"} {
		if _, err := ParseID(in); err == nil {
			t.Errorf("parse %q: expected error", in)
		}
	}
}

func TestIDString(t *testing.T) {
	if got, want := Sub(0x8f, 0xab).String(), "8f/ab"; got != want {
		t.Errorf("string:\n  got: %v\n want: %v", got, want)
	}
	if got, want := Code(0x05).String(), "05"; got != want {
		t.Errorf("string:\n  got: %v\n want: %v", got, want)
	}
}
