package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// FileConfig mirrors the optional YAML config file. Zero fields leave
// the corresponding App field untouched.
type FileConfig struct {
	Voice         string        `yaml:"voice"`
	ChatModel     string        `yaml:"chat_model"`
	ChatProvider  string        `yaml:"chat_provider"`
	Persona       string        `yaml:"persona"`
	AudioBackend  string        `yaml:"audio_backend"`
	SampleRate    int           `yaml:"sample_rate"`
	ChunkSize     int           `yaml:"chunk_size"`
	RecordSeconds int           `yaml:"record_seconds"`
	MaxHistory    int           `yaml:"max_history"`
	MaxFailures   int           `yaml:"max_failures"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	ListenAddr    string        `yaml:"listen_addr"`
	EventsFile    string        `yaml:"events_file"`
	LogLevel      string        `yaml:"log_level"`
	ExitPhrases   []string      `yaml:"exit_phrases"`
	IntentPrefix  bool          `yaml:"intent_prefix"`
}

// DefaultConfigPath returns ~/.banter/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".banter", "config.yaml")
}

// LoadFile reads and parses a YAML config file. A missing file at the
// default path is not an error; a missing explicit path is.
func LoadFile(path string) (*FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
		if path == "" {
			return nil, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// SaveFile writes the config file, creating ~/.banter if needed.
func SaveFile(path string, fc *FileConfig) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return fmt.Errorf("cannot resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyFile overlays non-zero file values onto the App config.
func (c *App) ApplyFile(fc *FileConfig) {
	if fc == nil {
		return
	}
	if fc.Voice != "" {
		c.Voice = fc.Voice
	}
	if fc.ChatModel != "" {
		c.ChatModel = fc.ChatModel
	}
	if fc.ChatProvider != "" {
		c.ChatProvider = fc.ChatProvider
	}
	if fc.Persona != "" {
		c.PersonaPrompt = fc.Persona
	}
	if fc.AudioBackend != "" {
		c.AudioBackend = fc.AudioBackend
	}
	if fc.SampleRate > 0 {
		c.SampleRate = fc.SampleRate
	}
	if fc.ChunkSize > 0 {
		c.ChunkSize = fc.ChunkSize
	}
	if fc.RecordSeconds > 0 {
		c.MaxRecordSeconds = fc.RecordSeconds
	}
	if fc.MaxHistory > 0 {
		c.MaxHistory = fc.MaxHistory
	}
	if fc.MaxFailures > 0 {
		c.MaxFailures = fc.MaxFailures
	}
	if fc.IdleTimeout > 0 {
		c.IdleTimeout = fc.IdleTimeout
	}
	if fc.ListenAddr != "" {
		c.ListenAddr = fc.ListenAddr
	}
	if fc.EventsFile != "" {
		c.EventsFile = fc.EventsFile
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if len(fc.ExitPhrases) > 0 {
		c.ExitPhrases = append([]string(nil), fc.ExitPhrases...)
	}
	if fc.IntentPrefix {
		c.IntentPrefix = true
	}
}

// Load resolves the full configuration: defaults, then .env, then the
// config file, then real environment variables. Later sources win.
func Load(filePath string) (App, error) {
	_ = godotenv.Load()

	app := DefaultApp()
	fc, err := LoadFile(filePath)
	if err != nil {
		return app, err
	}
	app.ApplyFile(fc)
	app.LoadEnv()
	return app, nil
}
