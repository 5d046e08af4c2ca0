package mix

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"promovoice/internal/studio/music"
)

const previewDuration = 8 * time.Second

// PreviewStyle renders a short sample of a music style so a caller can
// audition it before committing to a full production run. Renders are
// cached under cacheDir and reused on later calls; the preview is
// normalized louder than a production bed since it plays on its own.
func PreviewStyle(cacheDir string, style music.Style) (string, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating preview cache: %w", err)
	}

	mp3Path := filepath.Join(cacheDir, fmt.Sprintf("preview_%s.mp3", style))
	if _, err := os.Stat(mp3Path); err == nil {
		logrus.WithField("style", style).Debug("music preview served from cache")
		return mp3Path, nil
	}
	wavPath := filepath.Join(cacheDir, fmt.Sprintf("preview_%s.wav", style))
	if _, err := os.Stat(wavPath); err == nil {
		logrus.WithField("style", style).Debug("music preview served from cache")
		return wavPath, nil
	}

	track := music.Generate(style, previewDuration)
	frames := collectFrames(track.Streamer(), track.Frames())
	normalizeLoudness(frames, -14)

	if err := exportMP3(frames, mp3Path); err == nil {
		return mp3Path, nil
	}

	// No ffmpeg on this machine: a WAV preview still lets the caller listen.
	f, err := os.Create(wavPath)
	if err != nil {
		return "", fmt.Errorf("writing preview: %w", err)
	}
	defer f.Close()
	if err := writeWAV(f, frames); err != nil {
		os.Remove(wavPath)
		return "", fmt.Errorf("encoding preview: %w", err)
	}
	return wavPath, nil
}
