package messages

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

var nsStringMarker = []byte("NSString")

// textFromAttributedBody pulls the plain string out of a message's
// attributedBody column, an NSAttributedString archived as a typedstream.
//
// Newer macOS releases leave message.text NULL and only fill this blob. The
// string follows the first NSString class reference: a '+' type tag, a
// typedstream length (one byte, or 0x81 + uint16, or 0x82 + uint32, little
// endian), then that many UTF-8 bytes.
func textFromAttributedBody(blob []byte) (string, bool) {
	i := bytes.Index(blob, nsStringMarker)
	if i < 0 {
		return "", false
	}
	rest := blob[i+len(nsStringMarker):]

	j := bytes.IndexByte(rest, '+')
	if j < 0 || j+1 >= len(rest) {
		return "", false
	}
	rest = rest[j+1:]

	var n, width int
	switch rest[0] {
	case 0x81:
		if len(rest) < 3 {
			return "", false
		}
		n, width = int(binary.LittleEndian.Uint16(rest[1:3])), 3
	case 0x82:
		if len(rest) < 5 {
			return "", false
		}
		n, width = int(binary.LittleEndian.Uint32(rest[1:5])), 5
	default:
		n, width = int(rest[0]), 1
	}

	if n <= 0 || width+n > len(rest) {
		return "", false
	}
	text := rest[width : width+n]
	if !utf8.Valid(text) {
		return "", false
	}
	return string(text), true
}
