package main

import (
	"time"

	"github.com/pauloved/uploader/internal/history"
	"github.com/pauloved/uploader/internal/reconstruct"
	"github.com/pauloved/uploader/internal/settings"
)

// jsonBuilder is a local stand-in for the platform record builder: it shapes
// each reconstructed entity into a flat JSON document.
type jsonBuilder struct{}

type basalRecord struct {
	Type          string    `json:"type"`
	RatePerHour   float64   `json:"rate_per_hour"`
	Start         time.Time `json:"start"`
	DurationMs    int64     `json:"duration_ms"`
	TzOffsetMin   int       `json:"tz_offset_min"`
	HasContinuity bool      `json:"has_continuity"`
}

type bolusRecord struct {
	Type        string    `json:"type"`
	Kind        string    `json:"kind"`
	Amount      float64   `json:"amount"`
	Extended    float64   `json:"extended,omitempty"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
	Time        time.Time `json:"time"`
	TzOffsetMin int       `json:"tz_offset_min"`
}

type eventRecord struct {
	Type        string    `json:"type"`
	Kind        string    `json:"kind,omitempty"`
	Glucose     uint16    `json:"glucose,omitempty"`
	Time        time.Time `json:"time"`
	RecordID    uint32    `json:"record_id"`
	TzOffsetMin int       `json:"tz_offset_min"`
}

type settingsRecord struct {
	Type        string       `json:"type"`
	Settings    settings.Map `json:"settings"`
	TzOffsetMin int          `json:"tz_offset_min"`
}

func (jsonBuilder) Settings(m settings.Map, tz int) (any, error) {
	return settingsRecord{Type: "settings", Settings: m, TzOffsetMin: tz}, nil
}

func (jsonBuilder) BasalSegment(seg *reconstruct.Segment, tz int) (any, error) {
	return basalRecord{
		Type:          "basal",
		RatePerHour:   seg.Rate,
		Start:         seg.Start,
		DurationMs:    seg.Duration.Milliseconds(),
		TzOffsetMin:   tz,
		HasContinuity: seg.Previous != nil,
	}, nil
}

func (jsonBuilder) Bolus(ep reconstruct.Episode, tz int) (any, error) {
	return bolusRecord{
		Type:        "bolus",
		Kind:        ep.Kind.String(),
		Amount:      ep.Amount,
		Extended:    ep.Extended,
		DurationMs:  ep.Duration.Milliseconds(),
		Time:        ep.Time,
		TzOffsetMin: tz,
	}, nil
}

func (jsonBuilder) Event(ev history.Event, tz int) (any, error) {
	rec := eventRecord{
		Time:        ev.Time,
		RecordID:    ev.RecordID,
		TzOffsetMin: tz,
	}
	switch ev.Category {
	case history.CategoryAlarm:
		rec.Type = "alarm"
		rec.Kind = ev.Kind.String()
	case history.CategoryStatus:
		rec.Type = "status"
		rec.Kind = ev.Kind.String()
	case history.CategoryReservoirChange:
		rec.Type = "reservoir_change"
	case history.CategoryPrime:
		rec.Type = "prime"
	case history.CategoryGlucose:
		rec.Type = "glucose"
		rec.Glucose = ev.Glucose
	}
	return rec, nil
}
