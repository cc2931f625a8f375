package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"form feed and crlf", "Hello\r\nWorld\n\f", "Hello\nWorld"},
		{"tabs and runs of spaces", "a\t\tb    c  ", "a b c"},
		{"blank line runs", "one\n\n\n\n  \ntwo", "one\n\ntwo"},
		{"box rules", "Total\n-----\n12.00", "Total\n\n12.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}
