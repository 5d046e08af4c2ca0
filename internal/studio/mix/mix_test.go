package mix

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"promovoice/internal/studio/music"
)

func TestMasterDegradesOnUndecodableVoice(t *testing.T) {
	dir := t.TempDir()
	voicePath := filepath.Join(dir, "voice.mp3")
	outPath := filepath.Join(dir, "out.mp3")

	garbage := []byte("this is not audio at all")
	if err := os.WriteFile(voicePath, garbage, 0644); err != nil {
		t.Fatal(err)
	}

	mixed, err := Master(voicePath, outPath, music.StyleCorporate, true, Options{})
	if err != nil {
		t.Fatalf("degradation must not surface an error, got %v", err)
	}
	if mixed {
		t.Error("degraded output must report mixed=false")
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("deliverable missing: %v", err)
	}
	if !bytes.Equal(out, garbage) {
		t.Error("degraded deliverable must be a verbatim copy of the voice render")
	}
}

func TestMasterAlwaysProducesDeliverable(t *testing.T) {
	dir := t.TempDir()
	voicePath := filepath.Join(dir, "voice.wav")
	outPath := filepath.Join(dir, "out.mp3")

	writeSineWAV(t, voicePath, time.Second)

	_, err := Master(voicePath, outPath, music.StyleCalm, false, Options{})
	if err != nil {
		t.Fatalf("Master failed: %v", err)
	}
	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("deliverable missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("deliverable is empty")
	}
}

func TestOverlayPlacesVoiceAfterLeadIn(t *testing.T) {
	voice := [][2]float64{{0.5, 0.5}, {0.4, 0.4}}
	opts := DefaultOptions()
	lead := int(opts.LeadIn.Seconds() * music.SampleRate)
	trail := int(opts.Trail.Seconds() * music.SampleRate)

	// Silent music track spanning the whole padded timeline, so the voice
	// placement is visible in isolation.
	silent := music.NewTrack(make([][2]float64, lead+len(voice)+trail))
	out := overlay(voice, silent, opts)

	if want := lead + len(voice) + trail; len(out) != want {
		t.Fatalf("frames = %d, want %d", len(out), want)
	}
	if out[lead][0] != 0.5 {
		t.Errorf("voice not placed at lead-in boundary, got %f", out[lead][0])
	}
}

func TestOverlayWithoutMusicAddsNoPadding(t *testing.T) {
	voice := [][2]float64{{0.5, 0.5}, {0.4, 0.4}}

	out := overlay(voice, nil, DefaultOptions())

	if len(out) != len(voice) {
		t.Fatalf("voice-only overlay has %d frames, want %d (no silent padding)", len(out), len(voice))
	}
	if out[0][0] != 0.5 {
		t.Errorf("voice must start immediately, first frame = %f", out[0][0])
	}
}

func TestOverlayAttenuatesMusic(t *testing.T) {
	track := music.Generate(music.StyleUpbeat, 2*time.Second)
	voice := make([][2]float64, music.SampleRate/2)

	out := overlay(voice, track, DefaultOptions())

	gain := math.Pow(10, -14.0/20)
	// Pick a frame inside the music body and compare against the raw track.
	idx := music.SampleRate
	l, _ := track.Frame(idx)
	if got := out[idx][0]; math.Abs(got-l*gain) > 1e-9 {
		t.Errorf("music frame %d = %f, want %f after -14 dB", idx, got, l*gain)
	}
}

func TestNormalizeLoudnessHitsTarget(t *testing.T) {
	frames := make([][2]float64, 44100)
	for i := range frames {
		frames[i][0] = 0.5
		frames[i][1] = 0.5
	}

	normalizeLoudness(frames, -16)

	var sum float64
	for _, fr := range frames {
		sum += fr[0]*fr[0] + fr[1]*fr[1]
	}
	rms := math.Sqrt(sum / float64(len(frames)*2))
	want := math.Pow(10, -16.0/20)
	if math.Abs(rms-want) > 0.001 {
		t.Errorf("rms after normalization = %f, want %f", rms, want)
	}
}

func TestNormalizeLoudnessSilenceIsNoop(t *testing.T) {
	frames := make([][2]float64, 100)
	normalizeLoudness(frames, -16)
	for i, fr := range frames {
		if fr[0] != 0 || fr[1] != 0 {
			t.Fatalf("silent frame %d changed to %v", i, fr)
		}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.MusicGainDB != -14 || o.TargetLoudnessDB != -16 {
		t.Errorf("zero options did not pick up defaults: %+v", o)
	}
	if o.LeadIn != time.Second || o.Trail != 500*time.Millisecond {
		t.Errorf("zero padding did not pick up defaults: %+v", o)
	}

	o = Options{MusicGainDB: -20}.withDefaults()
	if o.MusicGainDB != -20 {
		t.Errorf("explicit gain overwritten: %+v", o)
	}
}

func TestPreviewStyleCaches(t *testing.T) {
	dir := t.TempDir()

	first, err := PreviewStyle(dir, music.StyleCalm)
	if err != nil {
		t.Fatalf("PreviewStyle failed: %v", err)
	}
	info, err := os.Stat(first)
	if err != nil || info.Size() == 0 {
		t.Fatalf("preview file missing or empty: %v", err)
	}

	second, err := PreviewStyle(dir, music.StyleCalm)
	if err != nil {
		t.Fatalf("cached PreviewStyle failed: %v", err)
	}
	if first != second {
		t.Errorf("cache miss on second call: %s vs %s", first, second)
	}
}

func writeSineWAV(t *testing.T, path string, d time.Duration) {
	t.Helper()
	frames := make([][2]float64, int(d.Seconds()*music.SampleRate))
	for i := range frames {
		v := 0.4 * math.Sin(2*math.Pi*440*float64(i)/music.SampleRate)
		frames[i][0], frames[i][1] = v, v
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := writeWAV(f, frames); err != nil {
		t.Fatal(err)
	}
}
