package messages

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestTextFromAttributedBody(t *testing.T) {
	text, ok := textFromAttributedBody(attributedBody("hello there"))
	be.True(t, ok)
	be.Equal(t, text, "hello there")

	// Strings of 128 bytes or more carry a 0x81 prefix and a uint16 length.
	long := strings.Repeat("grüße ", 40)
	text, ok = textFromAttributedBody(attributedBody(long))
	be.True(t, ok)
	be.Equal(t, text, long)

	_, ok = textFromAttributedBody([]byte("no marker here"))
	be.True(t, !ok)

	_, ok = textFromAttributedBody(nil)
	be.True(t, !ok)
}

func TestTextFromAttributedBodyTruncated(t *testing.T) {
	blob := attributedBody("hello there")
	cut := bytes.Index(blob, []byte("hello")) + 3
	_, ok := textFromAttributedBody(blob[:cut])
	be.True(t, !ok)

	// Cut inside the uint16 length that follows the 0x81 prefix.
	blob = attributedBody(strings.Repeat("x", 200))
	prefix := bytes.LastIndexByte(blob[:bytes.Index(blob, []byte("xxxx"))], 0x81)
	_, ok = textFromAttributedBody(blob[:prefix+2])
	be.True(t, !ok)
}

func attributedBody(text string) []byte {
	blob := []byte("\x04\x0bstreamtyped\x81\xe8\x03\x84\x01@\x84\x84\x84\x12NSAttributedString\x00\x84\x84\x08NSObject\x00\x85\x92\x84\x84\x84\x08NSString\x01\x94\x84\x01+")
	n := len(text)
	switch {
	case n < 0x80:
		blob = append(blob, byte(n))
	case n <= 0xffff:
		blob = append(blob, 0x81, byte(n), byte(n>>8))
	default:
		blob = append(blob, 0x82, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	}
	blob = append(blob, text...)
	blob = append(blob, []byte("\x86\x84\x02iI\x01\x0b\x92\x84\x84\x84\x0cNSDictionary\x00\x94\x84\x01i\x01\x92\x84\x96\x96\x1d__kIMMessagePartAttributeName")...)
	return blob
}
