package transform

import (
	"strings"
	"testing"
)

func TestEpochToTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{name: "known instant", input: int64(1700000000), expected: "2023-11-14T22:13:20.000Z"},
		{name: "zero means never", input: int64(0), expected: nil},
		{name: "nil", input: nil, expected: nil},
		{name: "empty string", input: "", expected: nil},
		{name: "non-numeric string", input: "yesterday", expected: nil},
		{name: "numeric string", input: "1700000000", expected: "2023-11-14T22:13:20.000Z"},
		{name: "epoch start of 2000", input: int64(946684800), expected: "2000-01-01T00:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EpochToTimestamp(tt.input); got != tt.expected {
				t.Errorf("EpochToTimestamp(%#v) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIntToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{name: "one", input: int64(1), expected: true},
		{name: "zero", input: int64(0), expected: false},
		{name: "nil", input: nil, expected: false},
		{name: "negative is truthy", input: int64(-1), expected: true},
		{name: "numeric string", input: "1", expected: true},
		{name: "garbage string", input: "yes", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntToBool(tt.input); got != tt.expected {
				t.Errorf("IntToBool(%#v) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToString(t *testing.T) {
	if got := ToString(int64(15622252279)); got != "15622252279" {
		t.Errorf("ToString(int64) = %#v", got)
	}
	if got := ToString(2.5); got != "2.5" {
		t.Errorf("ToString(float64) = %#v", got)
	}
	if got := ToString("already"); got != "already" {
		t.Errorf("ToString(string) = %#v", got)
	}
	if got := ToString(nil); got != nil {
		t.Errorf("ToString(nil) = %#v", got)
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateCode(8)
		if len(code) != 8 {
			t.Fatalf("GenerateCode(8) length = %d", len(code))
		}
		for _, ch := range code {
			if !strings.ContainsRune(codeAlphabet, ch) {
				t.Fatalf("GenerateCode produced %q outside alphabet", ch)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Errorf("GenerateCode(8) produced only %d distinct codes out of 100", len(seen))
	}
}
