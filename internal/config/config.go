package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Receiver   ReceiverConfig
	Display    DisplayConfig
	Transcript TranscriptConfig
	Sessions   SessionsConfig
	Storage    StorageConfig
}

type ReceiverConfig struct {
	GRPCPort int    `toml:"grpc_port"`
	HTTPPort int    `toml:"http_port"`
	Bind     string `toml:"bind"`
}

type DisplayConfig struct {
	FeedBufferSize int `toml:"feed_buffer_size"`
	RefreshRateMS  int `toml:"refresh_rate_ms"`
}

type TranscriptConfig struct {
	// QuestionTool identifies the interactive multiple-choice question
	// tool in incoming events.
	QuestionTool string `toml:"question_tool"`
}

type SessionsConfig struct {
	// LiveThresholdSeconds is how recently a session must have produced an
	// event to count as actively streaming.
	LiveThresholdSeconds int `toml:"live_threshold_seconds"`
}

type StorageConfig struct {
	// DBPath is the SQLite database location. Empty disables persistence.
	DBPath        string `toml:"db_path"`
	RetentionDays int    `toml:"retention_days"`
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

func DefaultConfig() Config {
	return Config{
		Receiver: ReceiverConfig{
			GRPCPort: 4317,
			HTTPPort: 4318,
			Bind:     "127.0.0.1",
		},
		Display: DisplayConfig{
			FeedBufferSize: 200,
			RefreshRateMS:  500,
		},
		Transcript: TranscriptConfig{
			QuestionTool: "AskUserQuestion",
		},
		Sessions: SessionsConfig{
			LiveThresholdSeconds: 30,
		},
		Storage: StorageConfig{
			DBPath:        "~/.config/cc-view/cc-view.db",
			RetentionDays: 30,
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cc-view", "config.toml")
}

func Load() (*LoadResult, error) {
	return LoadFrom(defaultConfigPath())
}

func LoadFrom(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LoadResult{Config: DefaultConfig()}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromString(string(data))
}

// LoadFromString parses config TOML over the defaults. Only keys present in
// the file override defaults; unknown keys produce warnings, not errors.
func LoadFromString(data string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}

	if data == "" {
		return result, nil
	}

	var raw map[string]any
	if _, err := toml.Decode(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	knownTopLevel := map[string]bool{
		"receiver":   true,
		"display":    true,
		"transcript": true,
		"sessions":   true,
		"storage":    true,
	}
	for key := range raw {
		if !knownTopLevel[key] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key))
		}
	}

	var tf tomlFile
	if _, err := toml.Decode(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	mergeFromRaw(&result.Config, &tf, raw)

	if err := validate(&result.Config); err != nil {
		return nil, err
	}

	return result, nil
}

type tomlFile struct {
	Receiver   *ReceiverConfig   `toml:"receiver"`
	Display    *DisplayConfig    `toml:"display"`
	Transcript *TranscriptConfig `toml:"transcript"`
	Sessions   *SessionsConfig   `toml:"sessions"`
	Storage    *StorageConfig    `toml:"storage"`
}

func mergeFromRaw(cfg *Config, tf *tomlFile, raw map[string]any) {
	if tf.Receiver != nil {
		if section, ok := rawSection(raw, "receiver"); ok {
			if _, exists := section["grpc_port"]; exists {
				cfg.Receiver.GRPCPort = tf.Receiver.GRPCPort
			}
			if _, exists := section["http_port"]; exists {
				cfg.Receiver.HTTPPort = tf.Receiver.HTTPPort
			}
			if _, exists := section["bind"]; exists {
				cfg.Receiver.Bind = tf.Receiver.Bind
			}
		}
	}
	if tf.Display != nil {
		if section, ok := rawSection(raw, "display"); ok {
			if _, exists := section["feed_buffer_size"]; exists {
				cfg.Display.FeedBufferSize = tf.Display.FeedBufferSize
			}
			if _, exists := section["refresh_rate_ms"]; exists {
				cfg.Display.RefreshRateMS = tf.Display.RefreshRateMS
			}
		}
	}
	if tf.Transcript != nil {
		if section, ok := rawSection(raw, "transcript"); ok {
			if _, exists := section["question_tool"]; exists {
				cfg.Transcript.QuestionTool = tf.Transcript.QuestionTool
			}
		}
	}
	if tf.Sessions != nil {
		if section, ok := rawSection(raw, "sessions"); ok {
			if _, exists := section["live_threshold_seconds"]; exists {
				cfg.Sessions.LiveThresholdSeconds = tf.Sessions.LiveThresholdSeconds
			}
		}
	}
	if tf.Storage != nil {
		if section, ok := rawSection(raw, "storage"); ok {
			if _, exists := section["db_path"]; exists {
				cfg.Storage.DBPath = tf.Storage.DBPath
			}
			if _, exists := section["retention_days"]; exists {
				cfg.Storage.RetentionDays = tf.Storage.RetentionDays
			}
		}
	}
}

func rawSection(raw map[string]any, key string) (map[string]any, bool) {
	v, ok := raw[key]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Receiver.GRPCPort < 1 || cfg.Receiver.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("grpc_port must be 1-65535, got %d", cfg.Receiver.GRPCPort))
	}
	if cfg.Receiver.HTTPPort < 1 || cfg.Receiver.HTTPPort > 65535 {
		errs = append(errs, fmt.Sprintf("http_port must be 1-65535, got %d", cfg.Receiver.HTTPPort))
	}

	if cfg.Display.FeedBufferSize < 1 {
		errs = append(errs, fmt.Sprintf("feed_buffer_size must be positive, got %d", cfg.Display.FeedBufferSize))
	}
	if cfg.Display.RefreshRateMS < 1 {
		errs = append(errs, fmt.Sprintf("refresh_rate_ms must be positive, got %d", cfg.Display.RefreshRateMS))
	}

	if strings.TrimSpace(cfg.Transcript.QuestionTool) == "" {
		errs = append(errs, "question_tool must not be empty")
	}

	if cfg.Sessions.LiveThresholdSeconds < 1 {
		errs = append(errs, fmt.Sprintf("live_threshold_seconds must be positive, got %d", cfg.Sessions.LiveThresholdSeconds))
	}

	if cfg.Storage.RetentionDays < 1 {
		errs = append(errs, fmt.Sprintf("storage retention_days must be positive, got %d", cfg.Storage.RetentionDays))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation error: %s", strings.Join(errs, "; "))
	}
	return nil
}
