// Package driver orchestrates one full retrieval pass against the pump:
// settings enumeration, history fetch, reconstruction, and record-builder
// dispatch. The whole pipeline is a strict request/await/decode sequence;
// no two device requests are ever outstanding at once.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/history"
	"github.com/pauloved/uploader/internal/observability"
	"github.com/pauloved/uploader/internal/protocol"
	"github.com/pauloved/uploader/internal/protocol/session"
	"github.com/pauloved/uploader/internal/reconstruct"
	"github.com/pauloved/uploader/internal/settings"
)

// ErrNoNewRecords means the device held nothing at or after the upload
// boundary. Not an integrity failure; there is simply nothing to upload.
var ErrNoNewRecords = errors.New("driver: no new records since last upload")

// historyRequest is the addressing triplet for the bulk history fetch,
// fixed by the device specification.
var historyRequest = protocol.Header{Port: 2, Parameter: 0x60, Operation: 0x01}

// historyRequestPayload mirrors the settings request shape: a selector byte
// followed by zeros.
var historyRequestPayload = []byte{0x00, 0x00, 0x00, 0x00}

// Driver drives the retrieval pipeline over one exchanger.
type Driver struct {
	exch *session.Exchanger
	cfg  config
	log  zerolog.Logger
}

func New(t session.Transport, opts ...Option) *Driver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{
		exch: session.New(t, cfg.Session, cfg.Logger),
		cfg:  cfg,
		log:  cfg.Logger,
	}
}

// Request implements settings.Requester: build, exchange, validate.
func (d *Driver) Request(ctx context.Context, h protocol.Header, payload []byte) (*protocol.Envelope, error) {
	cmd := protocol.BuildCommand(h, payload)
	raw, err := d.exch.RoundTrip(ctx, cmd)
	if err != nil {
		return nil, err
	}
	env, err := protocol.DecodeResponse(raw)
	if err != nil {
		observeDecodeFailure(err)
		return nil, err
	}
	return env, nil
}

// FetchSettings enumerates all device settings in table order.
func (d *Driver) FetchSettings(ctx context.Context) (settings.Map, error) {
	d.log.Debug().Msg("enumerating settings")
	return settings.Fetch(ctx, d)
}

// FetchHistory retrieves and parses the bulk history payload.
func (d *Driver) FetchHistory(ctx context.Context) ([]history.Record, error) {
	d.log.Debug().Msg("fetching history")
	env, err := d.Request(ctx, historyRequest, historyRequestPayload)
	if err != nil {
		return nil, fmt.Errorf("driver: history request: %w", err)
	}
	records, err := history.Parse(env.Payload)
	if err != nil {
		return nil, err
	}
	d.log.Debug().Int("records", len(records)).Msg("history decoded")
	return records, nil
}

// Run performs the full pipeline and hands every reconstructed entity to b.
// It returns ErrNoNewRecords when no record lies at or after the configured
// upload boundary.
func (d *Driver) Run(ctx context.Context, b RecordBuilder) (*Batch, error) {
	cfg, err := d.FetchSettings(ctx)
	if err != nil {
		return nil, err
	}

	records, err := d.FetchHistory(ctx)
	if err != nil {
		return nil, err
	}

	classified := history.Classify(records, d.cfg.UploadBoundary)
	if len(classified.Events) == 0 && len(classified.Basal) == 0 && len(classified.Bolus) == 0 {
		return nil, ErrNoNewRecords
	}

	segments := reconstruct.Basal(classified.Basal, classified.Carry, d.log)
	episodes := reconstruct.Bolus(classified.Bolus, d.log)
	d.log.Info().
		Int("events", len(classified.Events)).
		Int("basal_segments", len(segments)).
		Int("bolus_episodes", len(episodes)).
		Msg("reconstruction complete")

	return d.build(b, cfg, classified.Events, segments, episodes)
}

func (d *Driver) build(
	b RecordBuilder,
	cfg settings.Map,
	events []history.Event,
	segments []*reconstruct.Segment,
	episodes []reconstruct.Episode,
) (*Batch, error) {
	tz := d.cfg.TimezoneOffsetMinutes
	var batch Batch

	rec, err := b.Settings(cfg, tz)
	if err != nil {
		return nil, fmt.Errorf("driver: build settings record: %w", err)
	}
	batch.Records = append(batch.Records, rec)

	for _, seg := range segments {
		rec, err := b.BasalSegment(seg, tz)
		if err != nil {
			return nil, fmt.Errorf("driver: build basal record: %w", err)
		}
		batch.Records = append(batch.Records, rec)
	}
	for _, ep := range episodes {
		rec, err := b.Bolus(ep, tz)
		if err != nil {
			return nil, fmt.Errorf("driver: build bolus record: %w", err)
		}
		batch.Records = append(batch.Records, rec)
	}
	for _, ev := range events {
		rec, err := b.Event(ev, tz)
		if err != nil {
			return nil, fmt.Errorf("driver: build event record: %w", err)
		}
		batch.Records = append(batch.Records, rec)
	}
	return &batch, nil
}

func observeDecodeFailure(err error) {
	switch {
	case errors.Is(err, protocol.ErrChecksumMismatch):
		observability.ObserveIntegrityFailure("checksum")
	case errors.Is(err, protocol.ErrDigestMismatch):
		observability.ObserveIntegrityFailure("digest")
	case errors.Is(err, protocol.ErrLengthMismatch):
		observability.ObserveIntegrityFailure("length")
	case errors.Is(err, protocol.ErrHeaderTooShort):
		observability.ObserveIntegrityFailure("header")
	}
}
