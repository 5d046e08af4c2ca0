package music

import (
	"testing"
	"time"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(StyleCalm, 5*time.Second)
	b := Generate(StyleCalm, 5*time.Second)

	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("samples differ at %d: %d vs %d", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestGenerateDuration(t *testing.T) {
	track := Generate(StyleUpbeat, 2*time.Second)
	if track.Frames() != 2*SampleRate {
		t.Errorf("frames = %d, want %d", track.Frames(), 2*SampleRate)
	}
	if got := track.Duration(); got != 2*time.Second {
		t.Errorf("duration = %v, want 2s", got)
	}
	if len(track.Samples) != track.Frames()*2 {
		t.Errorf("samples not interleaved stereo: %d samples for %d frames",
			len(track.Samples), track.Frames())
	}
}

func TestGenerateStylesAreDistinct(t *testing.T) {
	d := 3 * time.Second
	upbeat := Generate(StyleUpbeat, d)
	calm := Generate(StyleCalm, d)
	corporate := Generate(StyleCorporate, d)

	if samplesEqual(upbeat, calm) || samplesEqual(calm, corporate) || samplesEqual(upbeat, corporate) {
		t.Error("expected the three styles to produce different waveforms")
	}
}

func TestGenerateFadesInAndOut(t *testing.T) {
	track := Generate(StyleCorporate, 4*time.Second)
	if track.Samples[0] != 0 {
		t.Errorf("first sample = %d, want 0 (fade-in)", track.Samples[0])
	}
	last := track.Samples[len(track.Samples)-2]
	if last > 300 || last < -300 {
		t.Errorf("final sample = %d, expected near-silence from fade-out", last)
	}
}

func TestGenerateZeroDuration(t *testing.T) {
	track := Generate(StyleCalm, 0)
	if track.Frames() != 0 {
		t.Errorf("zero duration should yield an empty track, got %d frames", track.Frames())
	}
}

func TestParseStyle(t *testing.T) {
	if _, err := ParseStyle("upbeat"); err != nil {
		t.Errorf("upbeat should parse: %v", err)
	}
	if s, err := ParseStyle(""); err != nil || s != StyleCorporate {
		t.Errorf("empty style should default to corporate, got %q, %v", s, err)
	}
	if _, err := ParseStyle("jazz"); err == nil {
		t.Error("unknown style should be rejected")
	}
}

func TestNewTrackPacksAndClips(t *testing.T) {
	track := NewTrack([][2]float64{{0.5, -0.5}, {2.0, -2.0}})

	if track.Frames() != 2 {
		t.Fatalf("frames = %d, want 2", track.Frames())
	}
	l, r := track.Frame(0)
	if l < 0.49 || l > 0.51 || r > -0.49 || r < -0.51 {
		t.Errorf("frame 0 = (%f, %f), want about (0.5, -0.5)", l, r)
	}
	if track.Samples[2] != 32767 || track.Samples[3] != -32768 {
		t.Errorf("out-of-range samples not clipped: %d, %d", track.Samples[2], track.Samples[3])
	}
}

func TestStreamerDeliversEveryFrame(t *testing.T) {
	track := Generate(StyleCorporate, time.Second)
	src := track.Streamer()

	got := 0
	buf := make([][2]float64, 512)
	for {
		n, ok := src.Stream(buf)
		for i := 0; i < n; i++ {
			l, r := track.Frame(got + i)
			if buf[i][0] != l || buf[i][1] != r {
				t.Fatalf("frame %d streamed as (%f, %f), want (%f, %f)",
					got+i, buf[i][0], buf[i][1], l, r)
			}
		}
		got += n
		if !ok {
			break
		}
	}
	if got != track.Frames() {
		t.Errorf("streamed %d frames, want %d", got, track.Frames())
	}
	if f := track.Format(); f.NumChannels != 2 || int(f.SampleRate) != SampleRate {
		t.Errorf("format = %+v, want stereo at %d Hz", f, SampleRate)
	}
}

func samplesEqual(a, b *Track) bool {
	if len(a.Samples) != len(b.Samples) {
		return false
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			return false
		}
	}
	return true
}
