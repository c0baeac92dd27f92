package parsers

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// DecodeReader normalizes an uploaded CSV stream to UTF-8. UTF-16 files
// (either byte order) are detected by BOM, a UTF-8 BOM is stripped, and
// anything that is not valid UTF-8 is assumed to be a Windows-1252 export,
// which is what spreadsheet tools on Windows typically produce.
func DecodeReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)

	peeked, err := br.Peek(3)
	if err != nil && len(peeked) < 2 {
		return br
	}

	if len(peeked) >= 2 && (bytes.HasPrefix(peeked, bomUTF16BE) || bytes.HasPrefix(peeked, bomUTF16LE)) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, dec)
	}
	if len(peeked) >= 3 && bytes.HasPrefix(peeked, bomUTF8) {
		br.Discard(3)
		return br
	}

	sample, _ := br.Peek(4096)
	if !utf8.Valid(trimPartialRune(sample)) {
		return transform.NewReader(br, charmap.Windows1252.NewDecoder())
	}
	return br
}

// trimPartialRune drops trailing bytes that may be the start of a rune cut
// off by the peek window, so a truncated sample is not misread as invalid.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
