// Package mix overlays rendered voice tracks with generated music and
// masters the result into the delivery format.
package mix

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/sirupsen/logrus"

	"promovoice/internal/studio/music"
)

// Quality is the delivery format of mastered files.
const Quality = "stereo 320kbps 44.1kHz"

// Options are the mastering targets. Zero values fall back to defaults so
// a caller can pass Options{} safely.
type Options struct {
	MusicGainDB      float64       // music attenuation relative to voice
	TargetLoudnessDB float64       // RMS target for the mixed buffer
	LeadIn           time.Duration // music alone before the voice starts
	Trail            time.Duration // music alone after the voice ends
}

func DefaultOptions() Options {
	return Options{
		MusicGainDB:      -14,
		TargetLoudnessDB: -16,
		LeadIn:           time.Second,
		Trail:            500 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MusicGainDB == 0 {
		o.MusicGainDB = d.MusicGainDB
	}
	if o.TargetLoudnessDB == 0 {
		o.TargetLoudnessDB = d.TargetLoudnessDB
	}
	if o.LeadIn == 0 {
		o.LeadIn = d.LeadIn
	}
	if o.Trail == 0 {
		o.Trail = d.Trail
	}
	return o
}

// Master produces the deliverable at outPath from the voice-only render at
// voicePath, overlaying generated music of the given style when withMusic
// is set. Mixing failures never fail the job: the voice-only render is
// copied verbatim to outPath instead. The returned bool reports whether
// music actually made it into the deliverable.
func Master(voicePath, outPath string, style music.Style, withMusic bool, opts Options) (bool, error) {
	opts = opts.withDefaults()

	frames, err := decodeVoice(voicePath)
	if err != nil {
		logrus.WithError(err).WithField("voice", filepath.Base(voicePath)).
			Warn("voice decode failed, delivering voice-only render")
		return false, copyFile(voicePath, outPath)
	}

	var track *music.Track
	if withMusic {
		voiceDur := time.Duration(float64(len(frames)) / music.SampleRate * float64(time.Second))
		track = music.Generate(style, voiceDur+opts.LeadIn+opts.Trail)
	}

	mixed := overlay(frames, track, opts)
	normalizeLoudness(mixed, opts.TargetLoudnessDB)

	if err := exportMP3(mixed, outPath); err != nil {
		logrus.WithError(err).WithField("out", filepath.Base(outPath)).
			Warn("mp3 export failed, delivering voice-only render")
		return false, copyFile(voicePath, outPath)
	}
	return withMusic, nil
}

// decodeVoice reads a provider render (MP3 or WAV) into stereo frames at
// the pipeline sample rate.
func decodeVoice(path string) ([][2]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != music.SampleRate {
		src = beep.Resample(4, format.SampleRate, music.SampleRate, streamer)
	}

	frames := collectFrames(src, music.SampleRate*10)
	if len(frames) == 0 {
		return nil, fmt.Errorf("no audio frames in %s", filepath.Base(path))
	}
	return frames, nil
}

// overlay places the voice after the lead-in and sums the attenuated music
// under the whole timeline. The music is truncated to the padded voice
// length; if it runs short the tail is simply silent. Without a music
// track there is nothing to play under the padding, so none is added.
func overlay(voice [][2]float64, track *music.Track, opts Options) [][2]float64 {
	var lead, trail int
	if track != nil {
		lead = int(opts.LeadIn.Seconds() * music.SampleRate)
		trail = int(opts.Trail.Seconds() * music.SampleRate)
	}
	total := lead + len(voice) + trail

	out := make([][2]float64, total)
	for i, fr := range voice {
		out[lead+i] = fr
	}

	if track != nil {
		gain := math.Pow(10, opts.MusicGainDB/20)
		n := track.Frames()
		if n > total {
			n = total
		}
		for i := 0; i < n; i++ {
			l, r := track.Frame(i)
			out[i][0] += l * gain
			out[i][1] += r * gain
		}
	}

	for i := range out {
		out[i][0] = clamp(out[i][0])
		out[i][1] = clamp(out[i][1])
	}
	return out
}

// normalizeLoudness applies one gain computed as target minus measured RMS
// to the whole buffer. Deliberately not a compressor: the dynamics of the
// voice are preserved, only the overall level moves.
func normalizeLoudness(frames [][2]float64, targetDB float64) {
	var sum float64
	for _, fr := range frames {
		sum += fr[0]*fr[0] + fr[1]*fr[1]
	}
	if len(frames) == 0 || sum == 0 {
		return
	}
	rms := math.Sqrt(sum / float64(len(frames)*2))
	measuredDB := 20 * math.Log10(rms)
	gain := math.Pow(10, (targetDB-measuredDB)/20)

	for i := range frames {
		frames[i][0] = clamp(frames[i][0] * gain)
		frames[i][1] = clamp(frames[i][1] * gain)
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// exportMP3 writes the frames as a temporary WAV and transcodes to the
// delivery format with ffmpeg. A missing ffmpeg is an error here; the
// caller decides how to degrade.
func exportMP3(frames [][2]float64, outPath string) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), "master-*.wav")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeWAV(tmp, frames); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	cmd := exec.Command(ffmpeg, "-y", "-i", tmpPath,
		"-codec:a", "libmp3lame", "-b:a", "320k", "-ar", "44100", "-ac", "2",
		outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %v: %s", err, out)
	}
	return nil
}

func writeWAV(w io.WriteSeeker, frames [][2]float64) error {
	track := music.NewTrack(frames)
	return wav.Encode(w, track.Streamer(), track.Format())
}

// collectFrames drains a streamer into an in-memory frame buffer.
func collectFrames(src beep.Streamer, sizeHint int) [][2]float64 {
	frames := make([][2]float64, 0, sizeHint)
	buf := make([][2]float64, 512)
	for {
		n, ok := src.Stream(buf)
		frames = append(frames, buf[:n]...)
		if !ok {
			break
		}
	}
	return frames
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading voice render: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("writing deliverable: %w", err)
	}
	return nil
}
