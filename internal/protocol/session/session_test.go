package session

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/protocol"
)

type scriptedTransport struct {
	wrote  [][]byte
	chunks [][]byte
	stall  bool
}

func (s *scriptedTransport) WriteBytes(_ context.Context, p []byte) error {
	s.wrote = append(s.wrote, append([]byte(nil), p...))
	return nil
}

func (s *scriptedTransport) ReadBytes(ctx context.Context, _ int) ([]byte, error) {
	if len(s.chunks) == 0 {
		if s.stall {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, errors.New("script exhausted")
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func fragment(raw []byte, size int) [][]byte {
	var out [][]byte
	for len(raw) > 0 {
		n := size
		if n > len(raw) {
			n = len(raw)
		}
		out = append(out, raw[:n])
		raw = raw[n:]
	}
	return out
}

func TestRoundTripFragmentedReads(t *testing.T) {
	h := protocol.Header{Port: 1, Parameter: 0x10, Operation: 0x01}
	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	resp := protocol.BuildCommand(h, payload)

	for _, size := range []int{1, 3, 5, len(resp)} {
		tr := &scriptedTransport{chunks: fragment(resp, size)}
		ex := New(tr, DefaultConfig(), zerolog.Nop())

		got, err := ex.RoundTrip(context.Background(), []byte{0xaa})
		if err != nil {
			t.Fatalf("size %d: round trip: %v", size, err)
		}
		if !bytes.Equal(got, resp) {
			t.Fatalf("size %d: response mismatch", size)
		}
		env, err := protocol.DecodeResponse(got)
		if err != nil {
			t.Fatalf("size %d: decode: %v", size, err)
		}
		if !bytes.Equal(env.Payload, payload) {
			t.Fatalf("size %d: payload mismatch", size)
		}
	}
}

func TestRoundTripWritesCommand(t *testing.T) {
	resp := protocol.BuildCommand(protocol.Header{Port: 1}, nil)
	tr := &scriptedTransport{chunks: [][]byte{resp}}
	ex := New(tr, DefaultConfig(), zerolog.Nop())

	cmd := []byte{0x01, 0x02, 0x03}
	if _, err := ex.RoundTrip(context.Background(), cmd); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(tr.wrote) != 1 || !bytes.Equal(tr.wrote[0], cmd) {
		t.Fatalf("command not written verbatim: %v", tr.wrote)
	}
}

func TestRoundTripStallTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 20 * time.Millisecond
	tr := &scriptedTransport{stall: true}
	ex := New(tr, cfg, zerolog.Nop())

	_, err := ex.RoundTrip(context.Background(), []byte{0x01})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRoundTripSizeBound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxResponseBytes = 8
	// Garbage with no marker pair keeps accumulation going past the bound.
	tr := &scriptedTransport{chunks: [][]byte{
		{0xff, 0xff, 0xff, 0xff, 0xff},
		{0xff, 0xff, 0xff, 0xff, 0xff},
	}}
	ex := New(tr, cfg, zerolog.Nop())

	_, err := ex.RoundTrip(context.Background(), []byte{0x01})
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestRoundTripFatalHeaderSurfaces(t *testing.T) {
	// A complete frame shorter than a full header is fatal, not a retry.
	tr := &scriptedTransport{chunks: [][]byte{{0x02, 0x03, 0x99, 0x02, 0x03}}}
	ex := New(tr, DefaultConfig(), zerolog.Nop())

	_, err := ex.RoundTrip(context.Background(), []byte{0x01})
	if !errors.Is(err, protocol.ErrHeaderTooShort) {
		t.Fatalf("expected ErrHeaderTooShort, got %v", err)
	}
}
