package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaanlabs/dukaan/pkg/scanner"
)

func TestSymbologyDecoder_Classification(t *testing.T) {
	cases := []struct {
		raw  string
		want scanner.Symbology
	}{
		{"8901030865275", scanner.SymbologyEAN13},
		{"4006381333931", scanner.SymbologyEAN13},
		{"036000291452", scanner.SymbologyUPCA},
		{"73513537", scanner.SymbologyEAN8},
		{"04252614", scanner.SymbologyUPCE}, // fails EAN-8 mod-10, passes UPC-E expansion
		{"ABC-123", scanner.SymbologyCode39},
		{"ITEM/42+B", scanner.SymbologyCode39},
		{"sku#42", scanner.SymbologyCode128},
		{"lowercase ok", scanner.SymbologyCode128},
	}
	var d scanner.SymbologyDecoder
	for _, c := range cases {
		code, sym, err := d.Decode(c.raw)
		require.NoError(t, err, "Decode(%q)", c.raw)
		assert.Equal(t, c.raw, code)
		assert.Equal(t, c.want, sym, "Decode(%q)", c.raw)
	}
}

func TestSymbologyDecoder_Rejects(t *testing.T) {
	var d scanner.SymbologyDecoder
	for _, raw := range []string{
		"",
		"\x01\x02",
		"8901030865278", // EAN-13 length, wrong check digit
	} {
		_, _, err := d.Decode(raw)
		assert.Error(t, err, "Decode(%q) should reject", raw)
	}
}
