// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	STT      STTConfig      `yaml:"stt"`
	Audio    AudioConfig    `yaml:"audio"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Dedupe   DedupeConfig   `yaml:"dedupe"`
	Narrator NarratorConfig `yaml:"narrator"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
}

// LLMConfig holds settings for the summarization model.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // "gemini", "ollama", "none"
	Model      string `yaml:"model"`
	Key        string `yaml:"key"`
	OllamaHost string `yaml:"ollama_host"`
}

// TTSConfig holds speech synthesis settings.
type TTSConfig struct {
	Engine   string  `yaml:"engine"` // "orpheus", "openai"
	Endpoint string  `yaml:"endpoint"`
	Key      string  `yaml:"key"`
	Model    string  `yaml:"model"`
	Speed    float64 `yaml:"speed"`
}

// STTConfig holds transcription settings for the dedupe pass.
type STTConfig struct {
	Model   string `yaml:"model"`
	Key     string `yaml:"key"`
	BaseURL string `yaml:"base_url"`
}

// AudioConfig holds audio assembly settings.
type AudioConfig struct {
	OutputDir string `yaml:"output_dir"`
	PauseMs   int    `yaml:"pause_ms"` // silence inserted between chunks
}

// ChunkerConfig holds text chunking settings.
type ChunkerConfig struct {
	MaxChunkLength int `yaml:"max_chunk_length"`
}

// DedupeConfig holds repeat-detection tuning.
type DedupeConfig struct {
	Enabled      bool `yaml:"enabled"`
	MinWords     int  `yaml:"min_words"`
	MaxPhraseLen int  `yaml:"max_phrase_len"`
	MaxGapMs     int  `yaml:"max_gap_ms"`
}

// NarratorConfig holds narration defaults.
type NarratorConfig struct {
	UserVoice string `yaml:"user_voice"`
	Prompt    string `yaml:"prompt"` // default prompt template name
	PromptDir string `yaml:"prompt_dir"`
	Username  string `yaml:"username"` // substituted into prompt templates
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			Key:        "",
			OllamaHost: "http://localhost:11434",
		},
		TTS: TTSConfig{
			Engine:   "orpheus",
			Endpoint: "http://localhost:5005/v1/audio/speech",
			Model:    "orpheus-tts",
			Speed:    1.0,
		},
		STT: STTConfig{
			Model:   "whisper-1",
			BaseURL: "https://api.openai.com/v1",
		},
		Audio: AudioConfig{
			OutputDir: "./outputs",
			PauseMs:   1000,
		},
		Chunker: ChunkerConfig{
			MaxChunkLength: 750,
		},
		Dedupe: DedupeConfig{
			Enabled:      true,
			MinWords:     1,
			MaxPhraseLen: 20,
			MaxGapMs:     2000,
		},
		Narrator: NarratorConfig{
			UserVoice: "Tara",
			Prompt:    "legal_summary_only",
			PromptDir: "configs/prompts",
			Username:  "Deponent",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/docvoice.db",
		},
		Server: ServerConfig{
			Address: "localhost:1930",
		},
	}
}

// Load loads the configuration from the given path. If the file does not
// exist, it is created with defaults. Existing files are merged over the
// defaults but never written back, to preserve user formatting. Secrets
// left empty fall back to the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	applyEnvFallbacks(cfg)
	return cfg, nil
}

func applyEnvFallbacks(cfg *Config) {
	if cfg.LLM.Key == "" {
		cfg.LLM.Key = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.TTS.Key == "" {
		cfg.TTS.Key = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.STT.Key == "" {
		cfg.STT.Key = os.Getenv("OPENAI_API_KEY")
	}
	if ep := os.Getenv("TTS_ENDPOINT"); ep != "" && cfg.TTS.Endpoint == DefaultConfig().TTS.Endpoint {
		cfg.TTS.Endpoint = ep
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" && cfg.LLM.OllamaHost == DefaultConfig().LLM.OllamaHost {
		cfg.LLM.OllamaHost = host
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# docvoice configuration
# ----------------------
# API keys may be left empty here and provided via the environment:
#   GOOGLE_API_KEY, OPENAI_API_KEY, TTS_ENDPOINT, OLLAMA_HOST

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
