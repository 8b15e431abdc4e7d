package config

import (
	"fmt"
	"net/url"
	"time"
)

// Sample rates the opus encoder accepts. Raw capture is restricted to the
// same set so the preferred encoder never has to resample.
var supportedSampleRates = map[int]struct{}{
	8000:  {},
	12000: {},
	16000: {},
	24000: {},
	48000: {},
}

type Config struct {
	Env               string
	ServerURL         string
	RequestTimeoutSec int
	FeedbackDwellMS   int
	TotalQuestions    int
	AudioSampleRate   int
	CaptureCommand    string
	PlaybackCommand   string
	HistoryDBPath     string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("SERVER_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("SERVER_URL must be http or https, got %q", c.ServerURL)
	}
	if c.RequestTimeoutSec <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SEC must be positive, got %d", c.RequestTimeoutSec)
	}
	if c.FeedbackDwellMS < 0 {
		return fmt.Errorf("FEEDBACK_DWELL_MS must not be negative, got %d", c.FeedbackDwellMS)
	}
	if c.TotalQuestions <= 0 {
		return fmt.Errorf("TOTAL_QUESTIONS must be positive, got %d", c.TotalQuestions)
	}
	if _, ok := supportedSampleRates[c.AudioSampleRate]; !ok {
		return fmt.Errorf("AUDIO_SAMPLE_RATE must be one of 8000, 12000, 16000, 24000, 48000, got %d", c.AudioSampleRate)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "SERVER_URL", value: c.ServerURL},
		{name: "CAPTURE_COMMAND", value: c.CaptureCommand},
		{name: "HISTORY_DB_PATH", value: c.HistoryDBPath},
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) FeedbackDwell() time.Duration {
	return time.Duration(c.FeedbackDwellMS) * time.Millisecond
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
