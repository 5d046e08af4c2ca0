// Package pipeline schedules synthesis jobs with bounded concurrency and
// owns the whole-batch provider fallback policy.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"promovoice/internal/config"
	"promovoice/internal/domain/script"
	"promovoice/internal/domain/voice"
	"promovoice/internal/studio/mix"
	"promovoice/internal/studio/music"
	"promovoice/internal/studio/normalize"
	"promovoice/internal/studio/tts"
)

// Job is one unit of work: synthesize a text fragment with one voice and
// master it into a deliverable file. VoiceIndex is the 1-based position in
// the provider pool, kept so a fallback batch can re-map the job onto the
// next provider's pool.
type Job struct {
	VariantID  int
	Section    script.Section
	Text       string
	Voice      voice.Descriptor
	VoiceIndex int
	OutputPath string
	WithMusic  bool
	MusicStyle music.Style
}

// Artifact is the outcome of one job. Failed jobs carry Err and no file;
// they never abort the batch.
type Artifact struct {
	FilePath   string         `json:"file_path,omitempty"`
	FileName   string         `json:"file_name,omitempty"`
	SizeBytes  int64          `json:"size_bytes,omitempty"`
	Provider   tts.Provider   `json:"provider"`
	VoiceID    string         `json:"voice_id"`
	VoiceIndex int            `json:"voice_index"`
	VoiceLabel string         `json:"voice_label,omitempty"`
	Section    script.Section `json:"section"`
	VariantID  int            `json:"variant_id"`
	MusicMixed bool           `json:"music_mixed"`
	Err        error          `json:"-"`
	Error      string         `json:"error,omitempty"`
}

// Summary aggregates a finished batch for the caller-facing report.
type Summary struct {
	Generated       int          `json:"total_generated"`
	Failed          int          `json:"total_failed"`
	Provider        tts.Provider `json:"provider"`
	Quality         string       `json:"quality"`
	BackgroundMusic bool         `json:"background_music"`
	MusicStyle      music.Style  `json:"music_style,omitempty"`
}

// Scheduler runs batches of jobs against one resolved engine context. When
// every job in a batch fails it re-resolves onto the next provider and
// retries the whole batch exactly once.
type Scheduler struct {
	cfg *config.Config
	ec  *tts.Context

	// resolveNext is swapped out in tests; the default asks the engine
	// resolver for the next provider in the fallback order.
	resolveNext func(ctx context.Context, exclude tts.Provider) (*tts.Context, error)
}

func NewScheduler(cfg *config.Config, ec *tts.Context, country, language string) *Scheduler {
	return &Scheduler{
		cfg: cfg,
		ec:  ec,
		resolveNext: func(ctx context.Context, exclude tts.Provider) (*tts.Context, error) {
			return tts.ResolveNext(ctx, cfg, exclude, country, language, ec.Settings)
		},
	}
}

// Run executes the batch and returns one artifact per job, in job order.
// Individual failures are isolated; only a fully failed batch triggers the
// provider fallback, and the retry's artifacts replace the originals.
func (s *Scheduler) Run(ctx context.Context, jobs []Job) ([]Artifact, Summary) {
	results := s.runBatch(ctx, jobs)

	if len(jobs) > 0 && allFailed(results) {
		logrus.WithFields(logrus.Fields{
			"provider": s.ec.Provider,
			"jobs":     len(jobs),
		}).Warn("entire batch failed, falling back to next provider")

		if next, err := s.resolveNext(ctx, s.ec.Provider); err != nil {
			logrus.WithError(err).Error("no fallback provider available")
		} else {
			s.ec = next
			results = s.runBatch(ctx, remapJobs(jobs, next.Pool))
		}
	}

	return results, s.summarize(jobs, results)
}

// Pool returns the voice pool of the provider that served the last batch.
// After a fallback this is the replacement provider's pool, which is the
// one the artifacts' voice ids belong to.
func (s *Scheduler) Pool() voice.Pool {
	return s.ec.Pool
}

func (s *Scheduler) runBatch(ctx context.Context, jobs []Job) []Artifact {
	limit := s.cfg.MaxConcurrentJobs
	if limit <= 0 {
		limit = 5
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]Artifact, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = s.runJob(gctx, job)
			return nil
		})
	}
	g.Wait()
	return results
}

func (s *Scheduler) runJob(ctx context.Context, job Job) Artifact {
	art := Artifact{
		Provider:   s.ec.Provider,
		VoiceID:    job.Voice.ID,
		VoiceIndex: job.VoiceIndex,
		VoiceLabel: job.Voice.Label,
		Section:    job.Section,
		VariantID:  job.VariantID,
	}
	fail := func(err error) Artifact {
		logrus.WithError(err).WithFields(logrus.Fields{
			"variant": job.VariantID,
			"section": job.Section,
			"voice":   job.Voice.ID,
		}).Error("synthesis job failed")
		art.Err = err
		art.Error = err.Error()
		return art
	}

	caps := s.ec.Engine.Capabilities()
	text := normalize.Clean(job.Text, caps.PronunciationHacks)
	if text == "" {
		return fail(fmt.Errorf("no speakable text left after normalization"))
	}
	if caps.MaxTextLength > 0 {
		text = truncateText(text, caps.MaxTextLength)
	}

	sctx := ctx
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	audio, err := s.ec.Engine.Synthesize(sctx, text, job.Voice, s.ec.Settings)
	if err != nil {
		return fail(fmt.Errorf("synthesizing %s: %w", job.Section, err))
	}

	format := caps.AudioFormat
	if format == "" {
		format = "mp3"
	}
	tmp, err := os.CreateTemp("", "voice-*."+format)
	if err != nil {
		return fail(fmt.Errorf("staging voice render: %w", err))
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fail(fmt.Errorf("staging voice render: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("staging voice render: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(job.OutputPath), 0755); err != nil {
		return fail(fmt.Errorf("creating output dir: %w", err))
	}

	mixed, err := mix.Master(tmpPath, job.OutputPath, job.MusicStyle, job.WithMusic, mix.Options{
		MusicGainDB:      s.cfg.MusicGainDB,
		TargetLoudnessDB: s.cfg.TargetLoudnessDB,
	})
	if err != nil {
		return fail(fmt.Errorf("mastering %s: %w", job.Section, err))
	}

	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return fail(fmt.Errorf("finished deliverable missing: %w", err))
	}

	art.FilePath = job.OutputPath
	art.FileName = filepath.Base(job.OutputPath)
	art.SizeBytes = info.Size()
	art.MusicMixed = mixed

	logrus.WithFields(logrus.Fields{
		"variant": job.VariantID,
		"section": job.Section,
		"file":    art.FileName,
		"bytes":   art.SizeBytes,
		"music":   mixed,
	}).Info("synthesis job finished")
	return art
}

func (s *Scheduler) summarize(jobs []Job, results []Artifact) Summary {
	sum := Summary{Provider: s.ec.Provider, Quality: mix.Quality}
	for _, a := range results {
		if a.Err == nil {
			sum.Generated++
		} else {
			sum.Failed++
		}
	}
	for _, j := range jobs {
		if j.WithMusic {
			sum.BackgroundMusic = true
			sum.MusicStyle = j.MusicStyle
			break
		}
	}
	return sum
}

func allFailed(results []Artifact) bool {
	for _, a := range results {
		if a.Err == nil {
			return false
		}
	}
	return true
}

// remapJobs rebinds each job's voice to the same pool position on the new
// provider's pool so a fallback batch keeps its voice variety.
func remapJobs(jobs []Job, pool voice.Pool) []Job {
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		idx := clampChoice(j.VoiceIndex)
		j.Voice = pool[idx-1]
		out[i] = j
	}
	return out
}

// sectionOrder fixes the scheduling order of final-phase sections.
var sectionOrder = []script.Section{
	script.SectionMain,
	script.SectionFallback1,
	script.SectionFallback2,
	script.SectionClosure,
}

// PreviewJobs expands a variant into one hook job per pool voice, so the
// caller can hear every candidate voice. Previews never carry music.
func PreviewJobs(v script.Variant, pool voice.Pool, dir string) []Job {
	hook := v.HookText()
	if strings.TrimSpace(hook) == "" {
		return nil
	}
	jobs := make([]Job, 0, voice.PoolSize)
	for i, d := range pool {
		name := fmt.Sprintf("variant_%d_voice%d_hook.mp3", v.VariantID, i+1)
		jobs = append(jobs, Job{
			VariantID:  v.VariantID,
			Section:    script.SectionHookPreview,
			Text:       hook,
			Voice:      d,
			VoiceIndex: i + 1,
			OutputPath: filepath.Join(dir, name),
		})
	}
	return jobs
}

// ProduceJobs expands a variant into one job per non-empty section, all
// voiced by the caller's chosen pool voice, with background music on.
// An out-of-range choice clamps rather than fails.
func ProduceJobs(v script.Variant, pool voice.Pool, choice int, style music.Style, dir string) []Job {
	idx := clampChoice(choice)
	d := pool[idx-1]

	sections := v.Sections()
	jobs := make([]Job, 0, len(sections))
	for _, sec := range sectionOrder {
		text, ok := sections[sec]
		if !ok {
			continue
		}
		jobs = append(jobs, Job{
			VariantID:  v.VariantID,
			Section:    sec,
			Text:       text,
			Voice:      d,
			VoiceIndex: idx,
			OutputPath: filepath.Join(dir, script.FileStem(v.VariantID, sec)+".mp3"),
			WithMusic:  true,
			MusicStyle: style,
		})
	}
	return jobs
}

// truncateText cuts text to at most max bytes without splitting a rune,
// so a provider byte limit never receives invalid UTF-8.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func clampChoice(choice int) int {
	if choice < 1 {
		return 1
	}
	if choice > voice.PoolSize {
		return voice.PoolSize
	}
	return choice
}
