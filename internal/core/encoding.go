package core

// encoding.go decodes upload bytes into UTF-8 text.
//
// Uploads come from spreadsheet tools on every platform, so the loader tries
// an ordered list of encodings and keeps the first one that decodes cleanly.
// Single-byte charsets are decoded with golang.org/x/text.

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is commonly prepended by Windows programs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encoding is a named decoder from raw bytes to UTF-8.
type Encoding struct {
	Name   string
	Decode func([]byte) ([]byte, error)
}

var (
	// UTF8 accepts only well-formed UTF-8.
	UTF8 = Encoding{Name: "utf-8", Decode: decodeUTF8}

	// Latin1 is ISO-8859-1.
	Latin1 = Encoding{Name: "latin-1", Decode: charmapDecoder(charmap.ISO8859_1)}

	// Windows1252 is the Western European Windows code page.
	Windows1252 = Encoding{Name: "windows-1252", Decode: charmapDecoder(charmap.Windows1252)}
)

// DefaultEncodings is the order in which uploads are decoded.
var DefaultEncodings = []Encoding{UTF8, Latin1, Windows1252}

func decodeUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid utf-8 byte sequence at offset %d", firstInvalidUTF8(data))
	}
	return data, nil
}

func charmapDecoder(cm *charmap.Charmap) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		return cm.NewDecoder().Bytes(data)
	}
}

// firstInvalidUTF8 returns the offset of the first byte that does not start
// a valid rune.
func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}
