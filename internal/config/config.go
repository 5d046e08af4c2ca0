package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the read-once configuration for a production run. It is built
// from viper at startup and shared read-only by all concurrent jobs.
type Config struct {
	ElevenLabsAPIKey       string
	ElevenLabsBaseURL      string
	ElevenLabsModel        string
	ElevenLabsOutputFormat string

	GoogleCredentialsFile string

	OutputsDir        string
	MaxConcurrentJobs int
	RequestTimeout    time.Duration

	// Mastering targets.
	MusicGainDB      float64
	TargetLoudnessDB float64

	// Minimum remaining characters before a premium quota counts as usable.
	QuotaFloorChars int
}

func SetDefaults() {
	viper.SetDefault("outputs.dir", "outputs")
	viper.SetDefault("jobs.max_concurrent", 5)
	viper.SetDefault("jobs.request_timeout", "60s")
	viper.SetDefault("elevenlabs.base_url", "https://api.elevenlabs.io")
	viper.SetDefault("elevenlabs.model", "eleven_multilingual_v2")
	viper.SetDefault("elevenlabs.output_format", "mp3_44100_128")
	viper.SetDefault("elevenlabs.quota_floor_chars", 1000)
	viper.SetDefault("master.music_gain_db", -14.0)
	viper.SetDefault("master.target_loudness_db", -16.0)
}

// Load builds the Config from viper and the environment. Credentials come
// from env vars first so deployments never write keys into config files.
func Load() *Config {
	key := os.Getenv("ELEVENLABS_API_KEY")
	if key == "" {
		key = viper.GetString("elevenlabs.api_key")
	}

	return &Config{
		ElevenLabsAPIKey:       key,
		ElevenLabsBaseURL:      viper.GetString("elevenlabs.base_url"),
		ElevenLabsModel:        viper.GetString("elevenlabs.model"),
		ElevenLabsOutputFormat: viper.GetString("elevenlabs.output_format"),
		GoogleCredentialsFile:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		OutputsDir:             viper.GetString("outputs.dir"),
		MaxConcurrentJobs:      viper.GetInt("jobs.max_concurrent"),
		RequestTimeout:         viper.GetDuration("jobs.request_timeout"),
		MusicGainDB:            viper.GetFloat64("master.music_gain_db"),
		TargetLoudnessDB:       viper.GetFloat64("master.target_loudness_db"),
		QuotaFloorChars:        viper.GetInt("elevenlabs.quota_floor_chars"),
	}
}

// HasElevenLabsKey reports whether a real-looking ElevenLabs key is
// configured. Placeholder values from sample .env files count as absent.
func (c *Config) HasElevenLabsKey() bool {
	k := strings.TrimSpace(c.ElevenLabsAPIKey)
	if k == "" {
		return false
	}
	lower := strings.ToLower(k)
	return !strings.HasPrefix(lower, "your-") && lower != "changeme" && lower != "xxx"
}

// HasGoogleCredentials reports whether a Google service account is wired up.
func (c *Config) HasGoogleCredentials() bool {
	return c.GoogleCredentialsFile != ""
}
