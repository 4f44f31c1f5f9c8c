package reconstruct

import (
	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/history"
)

// Basal reconstructs scheduled-basal segments from rate samples in ascending
// time order. Every sample except the last becomes a segment whose duration
// is the gap to the next sample, capped at MaxSegmentDuration. carry, when
// present, is the most recent pre-boundary sample; it is unshifted onto the
// front of the sequence so the first real segment has continuity. The
// carry-derived segment itself lies before the upload boundary and is
// reachable only through the first returned segment's Previous link, never
// returned for emission.
func Basal(samples []history.Sample, carry *history.Sample, log zerolog.Logger) []*Segment {
	withCarry := carry != nil
	if withCarry {
		samples = append([]history.Sample{*carry}, samples...)
	}
	if len(samples) < 2 {
		return nil
	}

	segments := make([]*Segment, 0, len(samples)-1)
	var prev *Segment
	for i := 0; i+1 < len(samples); i++ {
		gap := samples[i+1].Time.Sub(samples[i].Time)
		if gap < 0 {
			log.Warn().
				Uint32("record_id", samples[i].RecordID).
				Dur("gap", gap).
				Msg("negative gap between basal samples, clamping to zero")
			gap = 0
		}
		if gap > MaxSegmentDuration {
			gap = MaxSegmentDuration
		}
		seg := &Segment{
			Rate:     float64(samples[i].Raw) * BasalRateScale,
			Start:    samples[i].Time,
			Duration: gap,
			Previous: prev,
		}
		segments = append(segments, seg)
		prev = seg
	}
	if withCarry {
		segments = segments[1:]
	}
	return segments
}
