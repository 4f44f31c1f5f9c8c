package reconstruct

import (
	"math"
	"time"
)

// Device constants. The bolus threshold and the rate scale factors come from
// the hardware specification without documented derivation; they are
// preserved as-is, not re-derived.
const (
	// MaxSegmentDuration caps inferred basal segment durations at one week
	// minus one millisecond, bounding runaway durations from missing samples.
	MaxSegmentDuration = 604_799_999 * time.Millisecond

	// NormalBolusThresholdRaw splits bolus samples: raw rates above it mark
	// immediate (normal) delivery, at or below it extended (square) delivery.
	NormalBolusThresholdRaw = 12800

	// BolusRateScale converts a raw bolus rate to units per hour.
	BolusRateScale = 0.00625

	// BasalRateScale converts a raw basal rate to units per hour.
	BasalRateScale = 0.0125

	// DoseQuantum is the device's delivery resolution in units.
	DoseQuantum = 0.025

	// doseStepsPerUnit is 1/DoseQuantum. Quantization multiplies by this
	// instead of dividing by the quantum so exact half-step ties survive
	// floating point.
	doseStepsPerUnit = 40
)

// Segment is one reconstructed scheduled-basal interval. Previous links the
// chronologically preceding segment; the chain gives downstream consumers
// rate-change continuity.
type Segment struct {
	Rate     float64 // units per hour
	Start    time.Time
	Duration time.Duration
	Previous *Segment
}

// EpisodeKind tags a reconstructed bolus delivery.
type EpisodeKind int

const (
	EpisodeNormal EpisodeKind = iota
	EpisodeSquare
	EpisodeDualSquare
)

var episodeNames = map[EpisodeKind]string{
	EpisodeNormal:     "normal",
	EpisodeSquare:     "square",
	EpisodeDualSquare: "dual/square",
}

func (k EpisodeKind) String() string {
	if s, ok := episodeNames[k]; ok {
		return s
	}
	return "unknown"
}

// Episode is one reconstructed bolus delivery. Amount is the immediate
// component, Extended the square component (dual only), both in units
// quantized to DoseQuantum.
type Episode struct {
	Kind     EpisodeKind
	Amount   float64
	Extended float64
	Duration time.Duration
	Time     time.Time
}

// Quantize snaps units to the nearest DoseQuantum, rounding up on an exact
// half-step tie.
func Quantize(units float64) float64 {
	return math.Floor(units*doseStepsPerUnit+0.5) / doseStepsPerUnit
}
