// Package studio is the application facade. It loads production requests,
// resolves a speech engine, fans the work out through the scheduler and
// records each session's manifest on disk.
package studio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"promovoice/internal/config"
	"promovoice/internal/domain/script"
	"promovoice/internal/domain/voice"
	"promovoice/internal/studio/mix"
	"promovoice/internal/studio/music"
	"promovoice/internal/studio/pipeline"
	"promovoice/internal/studio/tts"
)

// Request is the JSON document handed over by the campaign orchestration
// layer. VoiceChoices maps variant ids (as JSON object keys) to the 1-based
// pool position picked after a preview round; Selection carries the
// advisory voice pick and the synthesis settings applied to every job.
type Request struct {
	Variants     []script.Variant `json:"variants"`
	Country      string           `json:"country"`
	Language     string           `json:"language"`
	Provider     string           `json:"provider,omitempty"`
	MusicStyle   string           `json:"music_style,omitempty"`
	VoiceChoices map[string]int   `json:"voice_choices,omitempty"`
	Selection    *voice.Selection `json:"voice_selection,omitempty"`
}

// LoadRequest reads and validates a request file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	if len(req.Variants) == 0 {
		return nil, fmt.Errorf("request has no variants")
	}
	return &req, nil
}

func (r *Request) settings() voice.Settings {
	if r.Selection != nil && r.Selection.Settings != (voice.Settings{}) {
		return r.Selection.Settings
	}
	return voice.DefaultSettings()
}

// voiceChoice returns the chosen pool position for a variant, defaulting
// to the first voice when the orchestrator never made a pick.
func (r *Request) voiceChoice(variantID int) int {
	if c, ok := r.VoiceChoices[strconv.Itoa(variantID)]; ok {
		return c
	}
	return 1
}

// Session is the outcome of one preview or production run.
type Session struct {
	ID        string
	Mode      string
	Dir       string
	Provider  tts.Provider
	Pool      voice.Pool
	Artifacts []pipeline.Artifact
	Summary   pipeline.Summary
}

// Studio wires configuration, engine resolution and scheduling together.
type Studio struct {
	cfg *config.Config

	// resolve is swapped out in tests so no real provider is contacted.
	resolve func(ctx context.Context, override tts.Provider, country, language string, s voice.Settings) (*tts.Context, error)
}

func New(cfg *config.Config) *Studio {
	return &Studio{
		cfg: cfg,
		resolve: func(ctx context.Context, override tts.Provider, country, language string, s voice.Settings) (*tts.Context, error) {
			return tts.Resolve(ctx, cfg, override, country, language, s)
		},
	}
}

// Preview voices every variant's hook with all three pool voices, without
// music, so the orchestrator can pick a voice per variant.
func (s *Studio) Preview(ctx context.Context, req *Request) (*Session, error) {
	return s.run(ctx, req, "preview")
}

// Produce renders the final deliverables: every non-empty section of each
// variant in its chosen voice, mixed with background music and mastered.
func (s *Studio) Produce(ctx context.Context, req *Request) (*Session, error) {
	return s.run(ctx, req, "final")
}

func (s *Studio) run(ctx context.Context, req *Request, mode string) (*Session, error) {
	ec, err := s.resolve(ctx, tts.Provider(req.Provider), req.Country, req.Language, req.settings())
	if err != nil {
		return nil, fmt.Errorf("resolving speech engine: %w", err)
	}

	style, err := music.ParseStyle(req.MusicStyle)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:       sessionID(),
		Mode:     mode,
		Provider: ec.Provider,
		Pool:     ec.Pool,
	}
	sess.Dir = filepath.Join(s.cfg.OutputsDir, fmt.Sprintf("%s_%s", mode, sess.ID))
	if err := os.MkdirAll(sess.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}

	var jobs []pipeline.Job
	for _, v := range req.Variants {
		if mode == "preview" {
			jobs = append(jobs, pipeline.PreviewJobs(v, ec.Pool, sess.Dir)...)
		} else {
			jobs = append(jobs, pipeline.ProduceJobs(v, ec.Pool, req.voiceChoice(v.VariantID), style, sess.Dir)...)
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no speakable sections in any variant")
	}

	logrus.WithFields(logrus.Fields{
		"session":  sess.ID,
		"mode":     mode,
		"provider": ec.Provider,
		"jobs":     len(jobs),
		"variants": len(req.Variants),
	}).Info("starting production session")

	sched := pipeline.NewScheduler(s.cfg, ec, req.Country, req.Language)
	sess.Artifacts, sess.Summary = sched.Run(ctx, jobs)
	// A whole-batch fallback may have switched provider and pool mid-run.
	sess.Provider = sess.Summary.Provider
	sess.Pool = sched.Pool()

	if err := s.writeManifest(sess, req); err != nil {
		logrus.WithError(err).Warn("could not write session manifest")
	}
	return sess, nil
}

// PreviewMusic renders (or fetches from cache) a short sample of a style.
func (s *Studio) PreviewMusic(styleName string) (string, error) {
	style, err := music.ParseStyle(styleName)
	if err != nil {
		return "", err
	}
	return mix.PreviewStyle(filepath.Join(s.cfg.OutputsDir, "music_previews"), style)
}

// VoicePool returns the pool the given market would resolve to, without
// contacting any provider. Used by the voices listing command.
func (s *Studio) VoicePool(providerName, country, language string) (tts.Provider, voice.Pool) {
	p := tts.Provider(providerName)
	if p == "" || p == tts.ProviderAuto {
		p = tts.ProviderElevenLabs
	}
	return p, tts.PoolFor(p, country, language)
}

// manifest is the results.json document written into each session dir so
// the orchestration layer can pick up file paths and voice metadata.
type manifest struct {
	SessionID string              `json:"session_id"`
	Mode      string              `json:"mode"`
	CreatedAt time.Time           `json:"created_at"`
	Country   string              `json:"country,omitempty"`
	Language  string              `json:"language,omitempty"`
	Provider  tts.Provider        `json:"provider"`
	Voices    []voice.Descriptor  `json:"voices"`
	Summary   pipeline.Summary    `json:"summary"`
	Artifacts []pipeline.Artifact `json:"artifacts"`
}

func (s *Studio) writeManifest(sess *Session, req *Request) error {
	m := manifest{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		CreatedAt: time.Now().UTC(),
		Country:   req.Country,
		Language:  req.Language,
		Provider:  sess.Provider,
		Voices:    sess.Pool[:],
		Summary:   sess.Summary,
		Artifacts: sess.Artifacts,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(sess.Dir, "results.json"), data, 0644)
}

// sessionID returns a short random id used to keep session dirs apart.
func sessionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b)
}
