package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultApp(t *testing.T) {
	cfg := DefaultApp()

	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if cfg.ChunkSize != 1024 {
		t.Errorf("ChunkSize = %d, want 1024", cfg.ChunkSize)
	}
	if cfg.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", cfg.MaxHistory)
	}
	if cfg.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cfg.MaxFailures)
	}
	if cfg.IdleTimeout != 30*time.Second {
		t.Errorf("IdleTimeout = %v, want 30s", cfg.IdleTimeout)
	}
	if len(cfg.ExitPhrases) != 6 {
		t.Errorf("ExitPhrases = %v, want 6 phrases", cfg.ExitPhrases)
	}
	if cfg.PersonaPrompt == "" {
		t.Error("PersonaPrompt should have a default")
	}
}

func TestValidate(t *testing.T) {
	valid := func() App {
		cfg := DefaultApp()
		cfg.ElevenLabsKey = "el-key"
		cfg.OpenAIKey = "oa-key"
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		cfg := valid()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("missing elevenlabs key", func(t *testing.T) {
		cfg := valid()
		cfg.ElevenLabsKey = ""
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected error for missing ElevenLabs key")
		}
		var ce *ConfigError
		if !asConfigError(err, &ce) || ce.Field != "ElevenLabsKey" {
			t.Errorf("error = %v, want ConfigError on ElevenLabsKey", err)
		}
	})

	t.Run("gemini key alone satisfies chat requirement", func(t *testing.T) {
		cfg := valid()
		cfg.OpenAIKey = ""
		cfg.GeminiKey = "gm-key"
		cfg.ChatProvider = "gemini"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	t.Run("no chat key at all", func(t *testing.T) {
		cfg := valid()
		cfg.OpenAIKey = ""
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error when no chat provider key is set")
		}
	})

	t.Run("unknown chat provider", func(t *testing.T) {
		cfg := valid()
		cfg.ChatProvider = "claude"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for unknown chat provider")
		}
	})

	t.Run("zero history", func(t *testing.T) {
		cfg := valid()
		cfg.MaxHistory = 0
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for zero history")
		}
	})

	t.Run("empty exit phrases", func(t *testing.T) {
		cfg := valid()
		cfg.ExitPhrases = nil
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for empty exit phrases")
		}
	})
}

func asConfigError(err error, target **ConfigError) bool {
	ce, ok := err.(*ConfigError)
	if ok {
		*target = ce
	}
	return ok
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "oa-env")
	t.Setenv("ELEVENLABS_API_KEY", "el-env")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice-env")
	t.Setenv("SAMPLE_RATE", "22050")
	t.Setenv("RECORD_SECONDS", "7")
	t.Setenv("BANTER_EXIT_PHRASES", "later, that's all ,")

	cfg := DefaultApp()
	cfg.LoadEnv()

	if cfg.OpenAIKey != "oa-env" {
		t.Errorf("OpenAIKey = %q", cfg.OpenAIKey)
	}
	if cfg.ElevenLabsKey != "el-env" {
		t.Errorf("ElevenLabsKey = %q", cfg.ElevenLabsKey)
	}
	if cfg.Voice != "voice-env" {
		t.Errorf("Voice = %q", cfg.Voice)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", cfg.SampleRate)
	}
	if cfg.MaxRecordSeconds != 7 {
		t.Errorf("MaxRecordSeconds = %d, want 7", cfg.MaxRecordSeconds)
	}
	want := []string{"later", "that's all"}
	if len(cfg.ExitPhrases) != len(want) {
		t.Fatalf("ExitPhrases = %v, want %v", cfg.ExitPhrases, want)
	}
	for i := range want {
		if cfg.ExitPhrases[i] != want[i] {
			t.Errorf("ExitPhrases[%d] = %q, want %q", i, cfg.ExitPhrases[i], want[i])
		}
	}
}

func TestLoadEnvBadInt(t *testing.T) {
	t.Setenv("SAMPLE_RATE", "not-a-number")

	cfg := DefaultApp()
	cfg.LoadEnv()

	if cfg.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want default %d on bad env value", cfg.SampleRate, DefaultSampleRate)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"long key", "sk-abcdefghijklmnop", "sk-a****mnop"},
		{"short key", "tiny", "****"},
		{"empty key", "", "****"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.want {
				t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestApplyFile(t *testing.T) {
	cfg := DefaultApp()
	cfg.ApplyFile(&FileConfig{
		Voice:         "charlotte",
		ChatModel:     "gpt-4o",
		RecordSeconds: 12,
		ExitPhrases:   []string{"cheerio"},
	})

	if cfg.Voice != "charlotte" {
		t.Errorf("Voice = %q", cfg.Voice)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %q", cfg.ChatModel)
	}
	if cfg.MaxRecordSeconds != 12 {
		t.Errorf("MaxRecordSeconds = %d", cfg.MaxRecordSeconds)
	}
	if len(cfg.ExitPhrases) != 1 || cfg.ExitPhrases[0] != "cheerio" {
		t.Errorf("ExitPhrases = %v", cfg.ExitPhrases)
	}
	// Untouched fields keep defaults.
	if cfg.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want default", cfg.SampleRate)
	}

	cfg.ApplyFile(nil) // no-op
	if cfg.Voice != "charlotte" {
		t.Error("ApplyFile(nil) should not reset fields")
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	src := &FileConfig{
		Voice:       "adam",
		MaxHistory:  4,
		ListenAddr:  ":8090",
		ExitPhrases: []string{"goodbye", "done"},
	}
	if err := SaveFile(path, src); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if fc.Voice != "adam" || fc.MaxHistory != 4 || fc.ListenAddr != ":8090" {
		t.Errorf("round trip mismatch: %+v", fc)
	}
	if len(fc.ExitPhrases) != 2 {
		t.Errorf("ExitPhrases = %v", fc.ExitPhrases)
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("voice: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parse config file") {
			t.Fatalf("LoadFile = %v, want parse error", err)
		}
	})
}
