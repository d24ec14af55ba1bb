package extraction

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText reads uploaded bytes as UTF-8, falling back to Latin-1 when the input is
// not valid UTF-8. Latin-1 maps every byte, so decoding never fails.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(bytes.TrimPrefix(raw, utf8BOM))
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(bytes.ToValidUTF8(raw, nil))
	}
	return string(out)
}
