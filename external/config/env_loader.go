package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	internalconfig "github.com/foxseedlab/mensetsukun/internal/config"
)

type envConfig struct {
	Env               string `env:"ENV" envDefault:"production"`
	ServerURL         string `env:"SERVER_URL" envDefault:"http://localhost:8000"`
	RequestTimeoutSec int    `env:"REQUEST_TIMEOUT_SEC" envDefault:"60"`
	FeedbackDwellMS   int    `env:"FEEDBACK_DWELL_MS" envDefault:"3000"`
	TotalQuestions    int    `env:"TOTAL_QUESTIONS" envDefault:"10"`
	AudioSampleRate   int    `env:"AUDIO_SAMPLE_RATE" envDefault:"16000"`
	CaptureCommand    string `env:"CAPTURE_COMMAND" envDefault:"arecord -q -f S16_LE -c 1 -r {rate} -t raw -"`
	PlaybackCommand   string `env:"PLAYBACK_COMMAND" envDefault:"ffplay -nodisp -autoexit -loglevel quiet {file}"`
	HistoryDBPath     string `env:"HISTORY_DB_PATH" envDefault:"mensetsukun.db"`
}

func Load() (*internalconfig.Config, error) {
	// A .env file is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:               raw.Env,
		ServerURL:         raw.ServerURL,
		RequestTimeoutSec: raw.RequestTimeoutSec,
		FeedbackDwellMS:   raw.FeedbackDwellMS,
		TotalQuestions:    raw.TotalQuestions,
		AudioSampleRate:   raw.AudioSampleRate,
		CaptureCommand:    raw.CaptureCommand,
		PlaybackCommand:   raw.PlaybackCommand,
		HistoryDBPath:     raw.HistoryDBPath,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
