package frame

import "bytes"

// Marker is the two-byte delimiter the device places at both ends of a
// framed header. The value is fixed by the device protocol.
var Marker = []byte{0x02, 0x03}

// MarkerLen is the length of Marker in bytes.
const MarkerLen = 2

// Span is the inclusive byte range of an extracted frame within its buffer.
type Span struct {
	Start int
	End   int // exclusive, covers the trailing marker
}

// Extract scans buf for the first marker-delimited frame: the first
// occurrence of Marker, then the next occurrence after it. The returned
// slice includes both markers. ok is false when no complete marker pair is
// present yet, which signals the caller to accumulate more transport bytes.
func Extract(buf []byte) ([]byte, Span, bool) {
	start := bytes.Index(buf, Marker)
	if start < 0 {
		return nil, Span{}, false
	}
	rest := buf[start+MarkerLen:]
	next := bytes.Index(rest, Marker)
	if next < 0 {
		return nil, Span{}, false
	}
	end := start + MarkerLen + next + MarkerLen
	return buf[start:end], Span{Start: start, End: end}, true
}

// Wrap prefixes and suffixes the marker around body. The body length is
// unrestricted; the caller is responsible for keeping marker sequences out
// of it.
func Wrap(body []byte) []byte {
	out := make([]byte, 0, len(body)+2*MarkerLen)
	out = append(out, Marker...)
	out = append(out, body...)
	out = append(out, Marker...)
	return out
}
