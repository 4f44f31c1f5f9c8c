package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/observability"
	"github.com/pauloved/uploader/internal/protocol"
)

// ErrResponseTooLarge means accumulation exceeded Config.MaxResponseBytes
// before a complete response formed. Usually a corrupted length field.
var ErrResponseTooLarge = errors.New("session: response exceeds size bound")

// Transport is the excluded raw-transport collaborator. ReadBytes returns a
// single discrete read, possibly shorter than max; the endpoint address is
// fixed when the transport is opened.
type Transport interface {
	WriteBytes(ctx context.Context, p []byte) error
	ReadBytes(ctx context.Context, max int) ([]byte, error)
}

// Exchanger pairs one outgoing command with one fully reassembled response.
type Exchanger struct {
	transport Transport
	cfg       Config
	log       zerolog.Logger
	buf       []byte
}

func New(t Transport, cfg Config, log zerolog.Logger) *Exchanger {
	if cfg.MaxReadBytes <= 0 {
		cfg.MaxReadBytes = DefaultConfig().MaxReadBytes
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultConfig().MaxResponseBytes
	}
	return &Exchanger{transport: t, cfg: cfg, log: log}
}

// RoundTrip writes cmd and accumulates transport reads until the declared
// payload length is satisfied, then returns the raw response bytes. Each
// suspension point carries its own timeout; on failure the in-flight buffer
// is discarded so a retry starts clean.
func (e *Exchanger) RoundTrip(ctx context.Context, cmd []byte) ([]byte, error) {
	wctx := ctx
	if e.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, e.cfg.WriteTimeout)
		defer cancel()
	}
	if err := e.transport.WriteBytes(wctx, cmd); err != nil {
		return nil, fmt.Errorf("session: write: %w", err)
	}

	e.buf = e.buf[:0]
	for {
		total, err := protocol.ResponseLength(e.buf)
		switch {
		case err == nil:
			if len(e.buf) >= total {
				observability.ObserveFrameReassembled()
				out := make([]byte, total)
				copy(out, e.buf[:total])
				e.buf = e.buf[:0]
				return out, nil
			}
		case errors.Is(err, protocol.ErrFrameIncomplete):
			// keep reading
		default:
			e.buf = e.buf[:0]
			return nil, err
		}

		if len(e.buf) > e.cfg.MaxResponseBytes {
			e.buf = e.buf[:0]
			return nil, ErrResponseTooLarge
		}

		chunk, err := e.read(ctx)
		if err != nil {
			e.buf = e.buf[:0]
			return nil, err
		}
		e.buf = append(e.buf, chunk...)
		e.log.Trace().Int("chunk", len(chunk)).Int("accumulated", len(e.buf)).
			Msg("transport read")
	}
}

func (e *Exchanger) read(ctx context.Context) ([]byte, error) {
	rctx := ctx
	if e.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, e.cfg.ReadTimeout)
		defer cancel()
	}
	chunk, err := e.transport.ReadBytes(rctx, e.cfg.MaxReadBytes)
	if err != nil {
		return nil, fmt.Errorf("session: read: %w", err)
	}
	observability.ObserveTransportRead()
	return chunk, nil
}
