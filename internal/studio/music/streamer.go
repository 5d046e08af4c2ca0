package music

import "github.com/faiface/beep"

// Format returns the beep format matching the track buffer.
func (t *Track) Format() beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(t.SampleRate),
		NumChannels: 2,
		Precision:   2,
	}
}

// Streamer adapts the track to a beep.Streamer so it can be mixed and
// encoded with the rest of the audio pipeline.
func (t *Track) Streamer() beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= t.Frames() {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= t.Frames() {
				break
			}
			l, r := t.Frame(pos)
			samples[i][0] = l
			samples[i][1] = r
			pos++
			n++
		}
		return n, true
	})
}
