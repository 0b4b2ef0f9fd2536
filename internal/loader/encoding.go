package loader

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is one entry of the ordered fallback list.
type Encoding struct {
	Name string
	enc  encoding.Encoding
	// strict rejects input that is not already valid in this encoding.
	strict bool
}

var (
	// UTF8 strips a leading byte order mark and rejects invalid sequences.
	UTF8 = Encoding{Name: "utf-8", enc: unicode.UTF8BOM, strict: true}
	// ISO88591 maps every byte to the code point of the same value.
	ISO88591 = Encoding{Name: "iso-8859-1", enc: charmap.ISO8859_1}
	// Latin1 uses Windows-1252, which is what files labelled latin-1 carry in practice.
	Latin1 = Encoding{Name: "latin-1", enc: charmap.Windows1252}
)

// DefaultEncodings is the fallback order used by DefaultOptions.
func DefaultEncodings() []Encoding {
	return []Encoding{UTF8, ISO88591, Latin1}
}

// Decode converts raw file bytes to a UTF-8 string.
func (e Encoding) Decode(raw []byte) (string, error) {
	if e.enc == nil {
		return "", fmt.Errorf("encoding %q has no decoder", e.Name)
	}
	if e.strict && !utf8.Valid(raw) {
		return "", fmt.Errorf("invalid %s byte sequence at offset %d", e.Name, firstInvalidUTF8(raw))
	}
	out, _, err := transform.Bytes(e.enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", e.Name, err)
	}
	return string(out), nil
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
