package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode detects the encoding of raw table bytes, strips any BOM and
// returns UTF-8 text. Exported CSVs from POS backends show up as
// UTF-8 (with or without BOM), UTF-16 with BOM, or Latin-1.
func Decode(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), data[2:])
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), data[2:])
	case utf8.Valid(data):
		return string(data), nil
	default:
		return decodeWith(charmap.ISO8859_1.NewDecoder(), data)
	}
}

func decodeWith(dec *encoding.Decoder, data []byte) (string, error) {
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("parser: decode: %w", err)
	}
	return string(out), nil
}
