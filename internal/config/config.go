// Package config defines service configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// WANGCAI_CONFIG, then WANGCAI_* environment variables. A .env file in the
// working directory is read into the environment first.
package config

import (
	"context"
	"runtime"
	"time"
)

// Gemini holds the model endpoint settings.
type Gemini struct {
	// APIKey authenticates every model call. Empty keys fail at call time.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the public endpoint, mostly for tests.
	BaseURL string `koanf:"base_url"`

	TextModel  string `koanf:"text_model"`
	ImageModel string `koanf:"image_model"`

	// TextTimeout and ImageTimeout bound each generation stage.
	TextTimeout  time.Duration `koanf:"text_timeout"`
	ImageTimeout time.Duration `koanf:"image_timeout"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PublicURL is the link placed in share texts. Empty means the request host.
	PublicURL string `koanf:"public_url"`

	// QueueSize bounds the in-memory generation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of generation workers.
	WorkerCount int `koanf:"worker_count"`

	// MaxSessions caps live sessions; the least recently used is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// SessionTTL expires idle sessions.
	SessionTTL time.Duration `koanf:"session_ttl"`

	Gemini Gemini `koanf:"gemini"`
}

// New returns a Config holding the defaults. The context is unused today and
// kept for symmetry with Load.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		Addr:        ":9080",
		QueueSize:   1_024,
		WorkerCount: runtime.NumCPU() * 2,
		MaxSessions: 10_000,
		SessionTTL:  30 * time.Minute,
		Gemini: Gemini{
			BaseURL:      "https://generativelanguage.googleapis.com",
			TextModel:    "gemini-3-pro-preview",
			ImageModel:   "gemini-2.5-flash-image",
			TextTimeout:  60 * time.Second,
			ImageTimeout: 90 * time.Second,
		},
	}
}

// Validate reports the first setting that cannot run a service.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive")
	case c.WorkerCount <= 0:
		return invalid("worker_count must be positive")
	case c.MaxSessions <= 0:
		return invalid("max_sessions must be positive")
	case c.SessionTTL <= 0:
		return invalid("session_ttl must be positive")
	case c.Gemini.TextTimeout <= 0:
		return invalid("gemini.text_timeout must be positive")
	case c.Gemini.ImageTimeout <= 0:
		return invalid("gemini.image_timeout must be positive")
	case c.Gemini.TextModel == "" || c.Gemini.ImageModel == "":
		return invalid("gemini model names must not be empty")
	}
	return nil
}
