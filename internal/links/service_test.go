package links

import (
	"errors"
	"testing"
)

func TestValidateTelegramID(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "123456789", want: "123456789"},
		{raw: " 42 ", want: "42"},
		{raw: "0", want: "0"},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "12a34", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "123456789012345678901", wantErr: true},
		{raw: "../other", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ValidateTelegramID(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ValidateTelegramID(%q): expected error, got %q", tc.raw, got)
			}
			if !errors.Is(err, ErrInvalidTelegramID) {
				t.Fatalf("ValidateTelegramID(%q): error %v is not ErrInvalidTelegramID", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ValidateTelegramID(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ValidateTelegramID(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
