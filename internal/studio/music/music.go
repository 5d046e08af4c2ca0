// Package music generates deterministic background tracks with additive
// synthesis. No external assets: every style is a handful of enveloped
// oscillator layers summed and clipped into 16-bit stereo PCM.
package music

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// SampleRate is fixed across the subsystem; the mixer and exporter assume it.
const SampleRate = 44100

// Style names one of the three built-in musical moods.
type Style string

const (
	StyleUpbeat    Style = "upbeat"
	StyleCalm      Style = "calm"
	StyleCorporate Style = "corporate"
)

func (s Style) String() string {
	return string(s)
}

// ParseStyle validates a caller-supplied style name.
func ParseStyle(name string) (Style, error) {
	switch Style(name) {
	case StyleUpbeat, StyleCalm, StyleCorporate:
		return Style(name), nil
	case "":
		return StyleCorporate, nil
	default:
		return "", fmt.Errorf("unknown music style %q", name)
	}
}

// Styles lists the available style names for CLI help and validation.
func Styles() []Style {
	return []Style{StyleUpbeat, StyleCalm, StyleCorporate}
}

// Track is an in-memory stereo buffer of interleaved 16-bit samples.
// It lives only long enough to be mixed or encoded.
type Track struct {
	SampleRate int
	Samples    []int16 // interleaved L,R
}

// NewTrack packs float frames in [-1, 1] into a 16-bit track, clipping
// out-of-range samples the same way Generate does.
func NewTrack(frames [][2]float64) *Track {
	samples := make([]int16, len(frames)*2)
	for i, fr := range frames {
		samples[2*i] = clip16(fr[0])
		samples[2*i+1] = clip16(fr[1])
	}
	return &Track{SampleRate: SampleRate, Samples: samples}
}

// Frames returns the number of stereo frames in the track.
func (t *Track) Frames() int {
	return len(t.Samples) / 2
}

// Duration returns the playing time of the track.
func (t *Track) Duration() time.Duration {
	return time.Duration(float64(t.Frames()) / float64(t.SampleRate) * float64(time.Second))
}

// Frame returns the left/right samples of frame i as floats in [-1, 1).
func (t *Track) Frame(i int) (left, right float64) {
	return float64(t.Samples[2*i]) / 32768.0, float64(t.Samples[2*i+1]) / 32768.0
}

// styleParams drives the per-style layer mix. Chord tones are absolute
// frequencies so each style sits in a different key.
type styleParams struct {
	tempoBPM   float64
	chord      []float64 // bass pad tones
	arpeggio   []float64 // melodic tones cycled on the beat subdivision
	arpPerBeat int       // arpeggio notes per beat (rhythmic density)
	bassGain   float64
	arpGain    float64
	pulseGain  float64
	percussion bool // noise-burst hits on the beat
}

var styles = map[Style]styleParams{
	// A major, fast arpeggio, percussion on.
	StyleUpbeat: {
		tempoBPM:   128,
		chord:      []float64{110.00, 138.59, 164.81},
		arpeggio:   []float64{440.00, 554.37, 659.26, 880.00},
		arpPerBeat: 2,
		bassGain:   0.22,
		arpGain:    0.16,
		pulseGain:  0.10,
		percussion: true,
	},
	// D minor, slow and sparse, no percussion.
	StyleCalm: {
		tempoBPM:   70,
		chord:      []float64{73.42, 87.31, 110.00},
		arpeggio:   []float64{293.66, 349.23, 440.00},
		arpPerBeat: 1,
		bassGain:   0.26,
		arpGain:    0.10,
		pulseGain:  0.0,
		percussion: false,
	},
	// C major, steady mid tempo, gentle pulse.
	StyleCorporate: {
		tempoBPM:   100,
		chord:      []float64{130.81, 164.81, 196.00},
		arpeggio:   []float64{523.25, 659.26, 783.99},
		arpPerBeat: 1,
		bassGain:   0.24,
		arpGain:    0.12,
		pulseGain:  0.08,
		percussion: false,
	},
}

// Generate renders a stereo track of the requested duration. It is pure:
// the same (style, duration) always yields the same waveform, which is what
// makes mixes reproducible and testable. Unknown styles render corporate.
func Generate(style Style, d time.Duration) *Track {
	p, ok := styles[style]
	if !ok {
		p = styles[StyleCorporate]
	}

	frames := int(d.Seconds() * SampleRate)
	if frames < 0 {
		frames = 0
	}
	samples := make([]int16, frames*2)

	beat := 60.0 / p.tempoBPM
	arpNote := beat / float64(p.arpPerBeat)

	// Percussion bursts use a fixed-seed source so the noise is part of the
	// deterministic waveform.
	rng := rand.New(rand.NewSource(1974))
	noise := make([]float64, frames)
	if p.percussion {
		for i := range noise {
			noise[i] = rng.Float64()*2 - 1
		}
	}

	fade := math.Min(1.5, d.Seconds()/4)

	for i := 0; i < frames; i++ {
		t := float64(i) / SampleRate

		// Bass chord pad with a slow swell so it breathes.
		var bass float64
		for _, f := range p.chord {
			bass += math.Sin(2 * math.Pi * f * t)
		}
		bass *= p.bassGain / float64(len(p.chord))
		bass *= 0.75 + 0.25*math.Sin(2*math.Pi*t/(4*beat))

		// Arpeggio: cycle tones on the beat subdivision, each note decaying
		// over its slot.
		noteIdx := int(t/arpNote) % len(p.arpeggio)
		notePhase := math.Mod(t, arpNote) / arpNote
		arp := math.Sin(2*math.Pi*p.arpeggio[noteIdx]*t) * math.Exp(-3*notePhase) * p.arpGain

		// Rhythmic pulse keyed to the tempo: a low thump at each beat.
		beatPhase := math.Mod(t, beat) / beat
		pulse := math.Sin(2*math.Pi*55*t) * math.Exp(-8*beatPhase) * p.pulseGain

		// Percussive noise burst on the off-beat.
		var perc float64
		if p.percussion {
			offPhase := math.Mod(t+beat/2, beat) / beat
			perc = noise[i] * math.Exp(-20*offPhase) * 0.08
		}

		env := masterEnvelope(t, d.Seconds(), fade)

		// Slight stereo spread: arpeggio leans right, pulse leans left.
		left := (bass + 0.8*arp + 1.0*pulse + perc) * env
		right := (bass + 1.0*arp + 0.8*pulse + perc) * env

		samples[2*i] = clip16(left)
		samples[2*i+1] = clip16(right)
	}

	return &Track{SampleRate: SampleRate, Samples: samples}
}

// masterEnvelope fades the track in and out so it starts and ends cleanly
// regardless of requested duration.
func masterEnvelope(t, total, fade float64) float64 {
	if fade <= 0 {
		return 1
	}
	switch {
	case t < fade:
		return t / fade
	case t > total-fade:
		return math.Max(0, (total-t)/fade)
	default:
		return 1
	}
}

// clip16 clamps to the valid 16-bit range before packing.
func clip16(v float64) int16 {
	s := v * 32767
	if s > 32767 {
		return 32767
	}
	if s < -32768 {
		return -32768
	}
	return int16(s)
}
