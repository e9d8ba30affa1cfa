package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default values applied before the file and environment are consulted.
const (
	DefaultSpellingDebounce = 500 * time.Millisecond
	DefaultGrammarDebounce  = 2 * time.Second
	DefaultStyleDebounce    = time.Second

	DefaultStructuralWords = 10
	DefaultContextWindow   = 20

	DefaultLLMModel = "gpt-4o-mini"
)

// EnvAPIKey is the environment variable holding the LLM API key. The key
// never lives in the config file.
const EnvAPIKey = "PROSECHECK_API_KEY"

// Config is the full prosecheck configuration.
type Config struct {
	Engine    Engine    `toml:"engine"`
	Segmenter Segmenter `toml:"segmenter"`
	Checkers  Checkers  `toml:"checkers"`
	Logging   Logging   `toml:"logging"`
}

// Engine configures the suggestion service itself.
type Engine struct {
	// StructuralWords is the typed-word count that fires an immediate
	// analysis pass.
	StructuralWords int `toml:"structural_words"`

	// ContextWindow is the dismissal fingerprint context size in bytes.
	ContextWindow int64 `toml:"context_window"`

	// DevMode makes segmentation invariant violations fatal.
	DevMode bool `toml:"dev_mode"`
}

// Segmenter configures how documents are cut into analysis units.
type Segmenter struct {
	// Strategy is "sentence" or "word-window".
	Strategy string `toml:"strategy"`

	// WindowWords is the unit size for the word-window strategy.
	WindowWords int `toml:"window_words"`
}

// Checkers holds the per-category checker configuration.
type Checkers struct {
	Spelling Spelling `toml:"spelling"`
	Grammar  Grammar  `toml:"grammar"`
	Style    Style    `toml:"style"`
}

// Spelling configures the offline dictionary checker.
type Spelling struct {
	Enabled    bool     `toml:"enabled"`
	Dictionary string   `toml:"dictionary"`
	Debounce   Duration `toml:"debounce"`
}

// Grammar configures the grammar checker. When Endpoint is set the checker
// talks to an HTTP service; otherwise, with an API key in the environment,
// it uses the LLM backend.
type Grammar struct {
	Enabled  bool     `toml:"enabled"`
	Endpoint string   `toml:"endpoint"`
	Model    string   `toml:"model"`
	BaseURL  string   `toml:"base_url"`
	Debounce Duration `toml:"debounce"`
}

// Style configures the Lua rule checker.
type Style struct {
	Enabled  bool     `toml:"enabled"`
	Rules    []string `toml:"rules"`
	Debounce Duration `toml:"debounce"`
}

// Logging configures log output.
type Logging struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// File is the log destination; empty means stderr.
	File string `toml:"file"`
}

// Duration is a time.Duration that unmarshals from a TOML string like
// "500ms" or "2s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration with every default applied.
func Default() *Config {
	return &Config{
		Engine: Engine{
			StructuralWords: DefaultStructuralWords,
			ContextWindow:   DefaultContextWindow,
		},
		Segmenter: Segmenter{
			Strategy: "sentence",
		},
		Checkers: Checkers{
			Spelling: Spelling{
				Enabled:  true,
				Debounce: Duration(DefaultSpellingDebounce),
			},
			Grammar: Grammar{
				Enabled:  true,
				Model:    DefaultLLMModel,
				Debounce: Duration(DefaultGrammarDebounce),
			},
			Style: Style{
				Enabled:  true,
				Debounce: Duration(DefaultStyleDebounce),
			},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path on top of the defaults and
// applies environment overrides. A missing file leaves the defaults
// untouched.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadBytes parses configuration from raw TOML on top of the defaults.
func LoadBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ParseError{Path: "<bytes>", Err: err}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv folds environment overrides into the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv("PROSECHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PROSECHECK_GRAMMAR_ENDPOINT"); v != "" {
		c.Checkers.Grammar.Endpoint = v
	}
	if v := os.Getenv("PROSECHECK_DICTIONARY"); v != "" {
		c.Checkers.Spelling.Dictionary = v
	}
}

// APIKey returns the LLM API key from the environment, if any.
func (c *Config) APIKey() string {
	return os.Getenv(EnvAPIKey)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn, or error"}
	}

	switch c.Segmenter.Strategy {
	case "sentence", "word-window":
	default:
		return &ValidationError{Field: "segmenter.strategy", Value: c.Segmenter.Strategy, Message: "must be sentence or word-window"}
	}
	if c.Segmenter.Strategy == "word-window" && c.Segmenter.WindowWords < 0 {
		return &ValidationError{Field: "segmenter.window_words", Value: c.Segmenter.WindowWords, Message: "must not be negative"}
	}

	if c.Engine.StructuralWords <= 0 {
		return &ValidationError{Field: "engine.structural_words", Value: c.Engine.StructuralWords, Message: "must be positive"}
	}
	if c.Engine.ContextWindow < 0 {
		return &ValidationError{Field: "engine.context_window", Value: c.Engine.ContextWindow, Message: "must not be negative"}
	}

	for field, d := range map[string]Duration{
		"checkers.spelling.debounce": c.Checkers.Spelling.Debounce,
		"checkers.grammar.debounce":  c.Checkers.Grammar.Debounce,
		"checkers.style.debounce":    c.Checkers.Style.Debounce,
	} {
		if d < 0 {
			return &ValidationError{Field: field, Value: d.Std(), Message: "must not be negative"}
		}
	}
	return nil
}
