package reconstruct

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/pauloved/uploader/internal/history"
)

// Bolus groups rate samples into delivery episodes. The grouping is a two
// state machine: a non-zero sample opens or extends a run, a zero-rate
// sample terminates it. The terminator joins the run as its closing
// timestamp and the buffered run is classified as a whole. A run still open
// when the samples end has no terminator and therefore no inferable
// duration; it is logged and dropped.
func Bolus(samples []history.Sample, log zerolog.Logger) []Episode {
	var episodes []Episode
	var run []history.Sample
	for _, s := range samples {
		if s.Raw == 0 {
			if len(run) == 0 {
				continue
			}
			run = append(run, s)
			episodes = append(episodes, classifyRun(run)...)
			run = nil
			continue
		}
		run = append(run, s)
	}
	if len(run) > 0 {
		log.Warn().
			Int("samples", len(run)).
			Uint32("record_id", run[0].RecordID).
			Msg("bolus run without terminator at end of history, dropping")
	}
	return episodes
}

// classifyRun turns one buffered run (terminator included) into episodes.
// Raw rates above NormalBolusThresholdRaw mark the run normal-bearing,
// non-zero rates at or below it square-bearing. A run with both becomes a
// single dual episode; a normal-only run emits one episode per sample; a
// square-only run collapses into one episode spanning the run.
func classifyRun(run []history.Sample) []Episode {
	samples := run[:len(run)-1]

	hasNormal, hasSquare := false, false
	for _, s := range samples {
		if s.Raw > NormalBolusThresholdRaw {
			hasNormal = true
		} else if s.Raw > 0 {
			hasSquare = true
		}
	}

	switch {
	case hasNormal && hasSquare:
		return []Episode{dualEpisode(run)}
	case hasNormal:
		return normalEpisodes(run)
	case hasSquare:
		return []Episode{squareEpisode(run)}
	default:
		return nil
	}
}

// sampleAmount is the units delivered between sample i and its successor:
// raw rate scaled to units per hour, times the gap in hours.
func sampleAmount(run []history.Sample, i int) float64 {
	gap := gapTo(run, i)
	return float64(run[i].Raw) * BolusRateScale * gap.Seconds() / 3600
}

func gapTo(run []history.Sample, i int) time.Duration {
	gap := run[i+1].Time.Sub(run[i].Time)
	if gap < 0 {
		gap = 0
	}
	return gap
}

func dualEpisode(run []history.Sample) Episode {
	var normal, extended float64
	var squareSpan time.Duration
	for i := 0; i+1 < len(run); i++ {
		switch {
		case run[i].Raw > NormalBolusThresholdRaw:
			normal += sampleAmount(run, i)
		case run[i].Raw > 0:
			extended += sampleAmount(run, i)
			squareSpan += gapTo(run, i)
		}
	}
	return Episode{
		Kind:     EpisodeDualSquare,
		Amount:   Quantize(normal),
		Extended: Quantize(extended),
		Duration: squareSpan,
		Time:     run[0].Time,
	}
}

func normalEpisodes(run []history.Sample) []Episode {
	var out []Episode
	for i := 0; i+1 < len(run); i++ {
		if run[i].Raw == 0 {
			continue
		}
		out = append(out, Episode{
			Kind:   EpisodeNormal,
			Amount: Quantize(sampleAmount(run, i)),
			Time:   run[i].Time,
		})
	}
	return out
}

func squareEpisode(run []history.Sample) Episode {
	var amount float64
	for i := 0; i+1 < len(run); i++ {
		amount += sampleAmount(run, i)
	}
	return Episode{
		Kind:     EpisodeSquare,
		Amount:   Quantize(amount),
		Duration: run[len(run)-1].Time.Sub(run[0].Time),
		Time:     run[0].Time,
	}
}
