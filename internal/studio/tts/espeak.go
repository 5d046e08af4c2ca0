package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"promovoice/internal/domain/voice"
)

// ESpeakEngine synthesizes speech with the local eSpeak/eSpeak-NG binary.
// It needs no credentials and serves as the last-resort provider.
type ESpeakEngine struct {
	binPath string
}

func NewESpeakEngine() (*ESpeakEngine, error) {
	path, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	engine := &ESpeakEngine{binPath: path}
	if err := engine.testInstallation(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}
	return engine, nil
}

func findESpeakExecutable() (string, error) {
	candidates := []string{"espeak-ng", "espeak"}
	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

func (e *ESpeakEngine) testInstallation() error {
	return exec.Command(e.binPath, "--version").Run()
}

func (e *ESpeakEngine) Provider() Provider {
	return ProviderESpeak
}

func (e *ESpeakEngine) Capabilities() Capabilities {
	return Capabilities{
		AudioFormat:        "wav",
		PronunciationHacks: true,
		RequiresNetwork:    false,
		MaxTextLength:      0, // no practical limit
	}
}

func (e *ESpeakEngine) Synthesize(ctx context.Context, text string, v voice.Descriptor, s voice.Settings) ([]byte, error) {
	tmp, err := os.CreateTemp("", "espeak-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp wav: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{"-w", tmpPath}

	if v.ID != "" && v.ID != "default" {
		args = append(args, "-v", v.ID)
	}

	// Speed in words per minute, default is 175.
	speed := 175
	if s.Speed > 0 {
		speed = int(175 * s.Speed)
	}
	args = append(args, "-s", strconv.Itoa(speed))

	// Full amplitude; loudness is handled at mastering time.
	args = append(args, "-a", "150")

	args = append(args, text)

	cmd := exec.CommandContext(ctx, e.binPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: espeak: %v: %s", ErrProviderRequest, err, out)
	}

	audio, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading espeak output: %w", err)
	}
	return audio, nil
}
