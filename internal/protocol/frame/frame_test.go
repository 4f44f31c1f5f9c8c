package frame

import (
	"bytes"
	"testing"
)

func TestExtractWithSurroundingNoise(t *testing.T) {
	body := []byte{0xaa, 0xbb, 0xcc}
	framed := Wrap(body)
	buf := append([]byte{0xff, 0x10}, framed...)
	buf = append(buf, 0xde, 0xad)

	got, span, ok := Extract(buf)
	if !ok {
		t.Fatalf("expected a complete frame")
	}
	if !bytes.Equal(got, framed) {
		t.Fatalf("frame mismatch: got % x want % x", got, framed)
	}
	if span.Start != 2 || span.End != 2+len(framed) {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestExtractIncomplete(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x01, 0x04, 0x05},
		{0x02},
		append([]byte{}, Marker...),
		append(append([]byte{}, Marker...), 0x11, 0x22),
	}
	for i, buf := range cases {
		if _, _, ok := Extract(buf); ok {
			t.Fatalf("case %d: expected incomplete, got frame from % x", i, buf)
		}
	}
}

func TestWrapExtractRoundTrip(t *testing.T) {
	body := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}
	got, _, ok := Extract(Wrap(body))
	if !ok {
		t.Fatalf("expected frame")
	}
	if !bytes.Equal(got[MarkerLen:len(got)-MarkerLen], body) {
		t.Fatalf("body mismatch: got % x", got)
	}
}

func TestExtractEmptyBody(t *testing.T) {
	got, _, ok := Extract(Wrap(nil))
	if !ok {
		t.Fatalf("expected frame")
	}
	if len(got) != 2*MarkerLen {
		t.Fatalf("expected bare marker pair, got % x", got)
	}
}
