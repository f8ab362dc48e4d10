// Package csvenc normalizes the character encoding of tabular reference and
// trip files. TLC exports are usually UTF-8 but older extracts carry
// Windows-1252 bytes in zone and vendor name columns.
package csvenc

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Reader returns a reader that yields valid UTF-8. Input that is already
// valid UTF-8 passes through untouched; anything else is decoded as
// Windows-1252.
func Reader(r io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder()), nil
}
