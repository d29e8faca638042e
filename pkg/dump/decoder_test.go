package dump

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected any
	}{
		{name: "bare NULL", token: "NULL", expected: nil},
		{name: "lowercase null", token: "null", expected: nil},
		{name: "quoted NULL is a string", token: "'NULL'", expected: "NULL"},
		{name: "integer", token: "1633", expected: int64(1633)},
		{name: "negative integer", token: "-42", expected: int64(-42)},
		{name: "decimal", token: "3.25", expected: 3.25},
		{name: "quoted string", token: "'ouyang'", expected: "ouyang"},
		{name: "double quoted string", token: `"hello"`, expected: "hello"},
		{name: "escaped quote", token: `'O\'Brien'`, expected: "O'Brien"},
		{name: "escaped backslash", token: `'a\\b'`, expected: `a\b`},
		{name: "escaped newline", token: `'line1\nline2'`, expected: "line1\nline2"},
		{name: "quoted number stays string", token: "'007'", expected: "007"},
		{name: "bare enum token", token: "active", expected: "active"},
		{name: "empty quoted string", token: "''", expected: ""},
		{name: "surrounding whitespace", token: "  99 ", expected: int64(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.token)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Decode(%q) = %#v (%T), want %#v (%T)", tt.token, got, got, tt.expected, tt.expected)
			}
		})
	}
}
