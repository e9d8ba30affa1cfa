package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.StructuralWords != DefaultStructuralWords {
		t.Errorf("structural words = %d, want %d", cfg.Engine.StructuralWords, DefaultStructuralWords)
	}
	if cfg.Engine.ContextWindow != DefaultContextWindow {
		t.Errorf("context window = %d, want %d", cfg.Engine.ContextWindow, DefaultContextWindow)
	}
	if cfg.Segmenter.Strategy != "sentence" {
		t.Errorf("strategy = %q, want sentence", cfg.Segmenter.Strategy)
	}
	if cfg.Checkers.Spelling.Debounce.Std() != DefaultSpellingDebounce {
		t.Errorf("spelling debounce = %v", cfg.Checkers.Spelling.Debounce.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file keeps defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("level = %q, want info", cfg.Logging.Level)
		}
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prosecheck.toml")
		data := `
[engine]
structural_words = 25
dev_mode = true

[segmenter]
strategy = "word-window"
window_words = 40

[checkers.spelling]
enabled = true
dictionary = "/usr/share/dict/words"
debounce = "750ms"

[checkers.grammar]
endpoint = "http://localhost:9009/check"

[checkers.style]
rules = ["rules/intensifiers.lua", "rules/passive.lua"]

[logging]
level = "debug"
`
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Engine.StructuralWords != 25 || !cfg.Engine.DevMode {
			t.Errorf("engine section not applied: %+v", cfg.Engine)
		}
		if cfg.Segmenter.Strategy != "word-window" || cfg.Segmenter.WindowWords != 40 {
			t.Errorf("segmenter section not applied: %+v", cfg.Segmenter)
		}
		if cfg.Checkers.Spelling.Debounce.Std() != 750*time.Millisecond {
			t.Errorf("debounce = %v, want 750ms", cfg.Checkers.Spelling.Debounce.Std())
		}
		if cfg.Checkers.Grammar.Endpoint != "http://localhost:9009/check" {
			t.Errorf("endpoint = %q", cfg.Checkers.Grammar.Endpoint)
		}
		if len(cfg.Checkers.Style.Rules) != 2 {
			t.Errorf("rules = %v", cfg.Checkers.Style.Rules)
		}
		// Untouched sections keep their defaults.
		if cfg.Checkers.Grammar.Model != DefaultLLMModel {
			t.Errorf("model = %q, want default", cfg.Checkers.Grammar.Model)
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[engine\nnope"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatal("expected parse error")
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("expected *ParseError, got %T", err)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prosecheck.toml")
		if err := os.WriteFile(path, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PROSECHECK_LOG_LEVEL", "debug")
		t.Setenv("PROSECHECK_GRAMMAR_ENDPOINT", "http://env:1234/check")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("level = %q, want debug", cfg.Logging.Level)
		}
		if cfg.Checkers.Grammar.Endpoint != "http://env:1234/check" {
			t.Errorf("endpoint = %q", cfg.Checkers.Grammar.Endpoint)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad strategy", func(c *Config) { c.Segmenter.Strategy = "paragraph" }, "segmenter.strategy"},
		{"zero structural words", func(c *Config) { c.Engine.StructuralWords = 0 }, "engine.structural_words"},
		{"negative context window", func(c *Config) { c.Engine.ContextWindow = -1 }, "engine.context_window"},
		{"negative debounce", func(c *Config) { c.Checkers.Style.Debounce = Duration(-time.Second) }, "checkers.style.debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1500ms")); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if d.Std() != 1500*time.Millisecond {
		t.Errorf("duration = %v", d.Std())
	}
	out, err := d.MarshalText()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "1.5s" {
		t.Errorf("text = %q", out)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("expected error for garbage duration")
	}
}
