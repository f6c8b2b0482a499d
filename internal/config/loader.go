package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "WANGCAI_"
	envFile    = "WANGCAI_CONFIG"
	envDotenv  = "WANGCAI_DOTENV"
	dotenvPath = ".env"
)

// Fallback variables consulted, in order, when gemini.api_key is unset.
var apiKeyFallbacks = []string{"GEMINI_API_KEY", "API_KEY"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if WANGCAI_CONFIG is set
//  3. env (prefix WANGCAI_)
//
// Variables from .env (or WANGCAI_DOTENV) never override the real environment.
func Load(ctx context.Context) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadErr(path, err)
		}
	}

	// WANGCAI_QUEUE_SIZE -> queue_size, WANGCAI_GEMINI_API_KEY -> gemini.api_key
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, loadErr("env", err)
	}

	cfg := New(ctx)
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadErr("unmarshal", err)
	}

	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		for _, name := range apiKeyFallbacks {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				cfg.Gemini.APIKey = v
				break
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(s, "gemini_"); ok {
		return "gemini." + rest
	}
	return s
}

func loadDotenv() error {
	path := os.Getenv(envDotenv)
	if path == "" {
		path = dotenvPath
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return loadErr(path, err)
	}
	return nil
}
