package reconstruct

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/history"
)

var t0 = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

func sample(raw uint16, at time.Time) history.Sample {
	return history.Sample{Raw: raw, Time: at, RecordID: 1}
}

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQuantize(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{0.024, 0.025},
		{0.026, 0.025},
		{1.55, 1.55},
		{1.5625, 1.575}, // exact half-step tie rounds up
		{62.5, 62.5},
	}
	for _, tc := range cases {
		if got := Quantize(tc.in); !almost(got, tc.want) {
			t.Fatalf("Quantize(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBasalSegments(t *testing.T) {
	samples := []history.Sample{
		sample(120, t0),
		sample(160, t0.Add(30*time.Minute)),
		sample(80, t0.Add(90*time.Minute)),
	}
	segs := Basal(samples, nil, zerolog.Nop())
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments (last sample dropped), got %d", len(segs))
	}
	if !almost(segs[0].Rate, 1.5) || segs[0].Duration != 30*time.Minute {
		t.Fatalf("segment 0: %+v", segs[0])
	}
	if !almost(segs[1].Rate, 2.0) || segs[1].Duration != time.Hour {
		t.Fatalf("segment 1: %+v", segs[1])
	}
	if segs[0].Previous != nil || segs[1].Previous != segs[0] {
		t.Fatalf("continuity chain broken")
	}
}

func TestBasalDurationCap(t *testing.T) {
	samples := []history.Sample{
		sample(100, t0),
		sample(100, t0.Add(30*24*time.Hour)),
	}
	segs := Basal(samples, nil, zerolog.Nop())
	if len(segs) != 1 || segs[0].Duration != MaxSegmentDuration {
		t.Fatalf("expected capped duration, got %+v", segs)
	}
}

func TestBasalCarrySeedsFirstSegment(t *testing.T) {
	carry := sample(200, t0.Add(-2*time.Hour))
	samples := []history.Sample{sample(120, t0), sample(120, t0.Add(time.Hour))}
	segs := Basal(samples, &carry, zerolog.Nop())
	if len(segs) != 1 {
		t.Fatalf("expected 1 emitted segment, got %d", len(segs))
	}
	if !segs[0].Start.Equal(t0) {
		t.Fatalf("first emitted segment starts at %v, want first real sample", segs[0].Start)
	}
	prev := segs[0].Previous
	if prev == nil || !almost(prev.Rate, 2.5) || !prev.Start.Equal(carry.Time) {
		t.Fatalf("carry did not seed continuity: %+v", prev)
	}
}

func TestBasalCarrySegmentNotEmitted(t *testing.T) {
	carry := sample(200, t0.Add(-2*time.Hour))
	samples := []history.Sample{
		sample(120, t0),
		sample(160, t0.Add(time.Hour)),
		sample(80, t0.Add(2*time.Hour)),
	}
	segs := Basal(samples, &carry, zerolog.Nop())
	if len(segs) != 2 {
		t.Fatalf("expected 2 emitted segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if seg.Start.Before(t0) {
			t.Fatalf("segment %d starts before the first real sample: %v", i, seg.Start)
		}
	}

	// A lone real sample after a carry gives nothing to emit either: the
	// only buildable segment is the carry-derived one.
	segs = Basal([]history.Sample{sample(120, t0)}, &carry, zerolog.Nop())
	if len(segs) != 0 {
		t.Fatalf("carry-derived segment leaked: %+v", segs)
	}
}

func TestBasalCarryOnlyIsNotEnough(t *testing.T) {
	carry := sample(200, t0)
	if segs := Basal(nil, &carry, zerolog.Nop()); segs != nil {
		t.Fatalf("expected no segments from a lone carry sample, got %+v", segs)
	}
}

func TestBasalNegativeGapClamped(t *testing.T) {
	samples := []history.Sample{
		sample(100, t0),
		sample(100, t0.Add(-time.Minute)), // device clock glitch
		sample(100, t0.Add(time.Hour)),
	}
	segs := Basal(samples, nil, zerolog.Nop())
	if len(segs) != 2 {
		t.Fatalf("expected best-effort reconstruction, got %d segments", len(segs))
	}
	if segs[0].Duration != 0 {
		t.Fatalf("negative gap not clamped: %v", segs[0].Duration)
	}
}

func TestBolusSquareRun(t *testing.T) {
	// [500(t0), 3000(t1), 0(t2)] with rates at or below the threshold.
	run := []history.Sample{
		sample(500, t0),
		sample(3000, t0.Add(time.Hour)),
		sample(0, t0.Add(2*time.Hour)),
	}
	eps := Bolus(run, zerolog.Nop())
	if len(eps) != 1 {
		t.Fatalf("expected a single square episode, got %d", len(eps))
	}
	ep := eps[0]
	if ep.Kind != EpisodeSquare {
		t.Fatalf("kind %s", ep.Kind)
	}
	// 500*0.00625*1h + 3000*0.00625*1h = 3.125 + 18.75
	if !almost(ep.Amount, Quantize(21.875)) {
		t.Fatalf("amount %v", ep.Amount)
	}
	if ep.Duration != 2*time.Hour {
		t.Fatalf("duration %v, want run span", ep.Duration)
	}
	if !ep.Time.Equal(t0) {
		t.Fatalf("time %v", ep.Time)
	}
}

func TestBolusNormalRun(t *testing.T) {
	// [20000(t0), 0(t1)] is above the threshold: one normal episode.
	run := []history.Sample{
		sample(20000, t0),
		sample(0, t0.Add(30*time.Minute)),
	}
	eps := Bolus(run, zerolog.Nop())
	if len(eps) != 1 || eps[0].Kind != EpisodeNormal {
		t.Fatalf("expected one normal episode, got %+v", eps)
	}
	// 20000*0.00625*0.5h = 62.5
	if !almost(eps[0].Amount, 62.5) {
		t.Fatalf("amount %v", eps[0].Amount)
	}
	if eps[0].Duration != 0 {
		t.Fatalf("normal episode carries no duration, got %v", eps[0].Duration)
	}
}

func TestBolusDualRun(t *testing.T) {
	// [20000(t0), 500(t1), 0(t2)]: both components present.
	run := []history.Sample{
		sample(20000, t0),
		sample(500, t0.Add(30*time.Minute)),
		sample(0, t0.Add(90*time.Minute)),
	}
	eps := Bolus(run, zerolog.Nop())
	if len(eps) != 1 || eps[0].Kind != EpisodeDualSquare {
		t.Fatalf("expected one dual episode, got %+v", eps)
	}
	ep := eps[0]
	if !almost(ep.Amount, Quantize(62.5)) { // 20000*0.00625*0.5h
		t.Fatalf("normal component %v", ep.Amount)
	}
	if !almost(ep.Extended, Quantize(3.125)) { // 500*0.00625*1h
		t.Fatalf("extended component %v", ep.Extended)
	}
	if ep.Duration != time.Hour { // sum of square-bearing gaps
		t.Fatalf("duration %v", ep.Duration)
	}
}

func TestBolusMultipleRuns(t *testing.T) {
	samples := []history.Sample{
		sample(0, t0), // zero in idle state is ignored
		sample(20000, t0.Add(time.Minute)),
		sample(0, t0.Add(2*time.Minute)),
		sample(400, t0.Add(10*time.Minute)),
		sample(0, t0.Add(40*time.Minute)),
	}
	eps := Bolus(samples, zerolog.Nop())
	if len(eps) != 2 {
		t.Fatalf("expected 2 episodes, got %+v", eps)
	}
	if eps[0].Kind != EpisodeNormal || eps[1].Kind != EpisodeSquare {
		t.Fatalf("kinds: %s, %s", eps[0].Kind, eps[1].Kind)
	}
}

func TestBolusUnterminatedRunDropped(t *testing.T) {
	samples := []history.Sample{
		sample(20000, t0),
		sample(20000, t0.Add(time.Minute)),
	}
	if eps := Bolus(samples, zerolog.Nop()); len(eps) != 0 {
		t.Fatalf("unterminated run must not emit episodes, got %+v", eps)
	}
}
