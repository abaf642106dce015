// Package config loads bridge settings with the precedence
// defaults → config.toml → .env/.env.local → process env.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultHistoryLimit  = 20
)

type Config struct {
	Gemini       GeminiConfig     `toml:"gemini"`
	ElevenLabs   ElevenLabsConfig `toml:"elevenlabs"`
	HistoryLimit int              `toml:"history_limit"`
	Verbose      bool             `toml:"verbose"`
}

type GeminiConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	// APIKey comes from the environment only; it is never persisted.
	APIKey string `toml:"-"`
}

type ElevenLabsConfig struct {
	BaseURL string `toml:"base_url"`
	Voice   string `toml:"voice"`
	APIKey  string `toml:"-"`
}

func Default() Config {
	return Config{
		Gemini: GeminiConfig{
			BaseURL: DefaultGeminiBaseURL,
			Model:   DefaultGeminiModel,
		},
		ElevenLabs: ElevenLabsConfig{
			BaseURL: "https://api.elevenlabs.io",
		},
		HistoryLimit: DefaultHistoryLimit,
	}
}

func Load() (Config, error) {
	if err := loadDotEnvPrecedence(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := mergeUserConfig(&cfg); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	return cfg, nil
}

// loadDotEnvPrecedence reads .env then .env.local; explicit process env wins
// over both.
func loadDotEnvPrecedence() error {
	for _, name := range []string{".env", ".env.local"} {
		values, err := godotenv.Read(name)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, exists := os.LookupEnv(k); !exists {
				if setErr := os.Setenv(k, v); setErr != nil {
					return setErr
				}
			}
		}
	}
	return nil
}

func mergeUserConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err = toml.DecodeFile(path, cfg)
	return err
}

func mergeEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_MODEL")); v != "" {
		cfg.Gemini.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); v != "" {
		cfg.Gemini.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")); v != "" {
		cfg.ElevenLabs.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("ELEVENLABS_BASE_URL")); v != "" {
		cfg.ElevenLabs.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ELEVENLABS_VOICE_ID")); v != "" {
		cfg.ElevenLabs.Voice = v
	}
	if v := strings.TrimSpace(os.Getenv("REAPERBRIDGE_HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REAPERBRIDGE_VERBOSE")); v != "" {
		cfg.Verbose = v == "1" || strings.EqualFold(v, "true")
	}
}

// ConfigPath returns the path to the user's config.toml file.
func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "reaperbridge", "config.toml"), nil
}

// Save writes the config to the user config directory.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// SaveSecret writes a key=value pair into .env.local. If the key already
// exists it is updated; otherwise it is appended. The environment variable is
// also set in the current process.
func SaveSecret(key, value string) error {
	const path = ".env.local"
	env := map[string]string{}
	existing, err := godotenv.Read(path)
	if err == nil {
		env = existing
	}
	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Setenv(key, value)
}

// DeleteSecret removes a key from .env.local and unsets it in the process env.
func DeleteSecret(key string) error {
	const path = ".env.local"
	env := map[string]string{}
	existing, err := godotenv.Read(path)
	if err == nil {
		env = existing
	}
	delete(env, key)
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Unsetenv(key); err != nil {
		return fmt.Errorf("unsetting %s: %w", key, err)
	}
	return nil
}
