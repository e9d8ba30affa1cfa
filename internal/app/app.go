package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/prosecheck/internal/assist"
	"github.com/dshills/prosecheck/internal/checker"
	"github.com/dshills/prosecheck/internal/config"
	"github.com/dshills/prosecheck/internal/engine/buffer"
	"github.com/dshills/prosecheck/internal/segment"
)

// ErrNoCheckers indicates that configuration left every checker disabled
// or unusable, so the application would never produce a suggestion.
var ErrNoCheckers = errors.New("no checkers available")

// grammarHTTPName is the category name for the remote grammar checker.
const grammarHTTPName = "grammar"

// Application owns the suggestion service and everything it depends on
// for one document session.
type Application struct {
	cfg *config.Config
	log *Logger

	buf     *buffer.Buffer
	service *assist.Service

	luaRules *checker.LuaRules
	watcher  *config.Watcher
}

// AppOption configures an Application.
type AppOption func(*appOptions)

type appOptions struct {
	logger *Logger
	sink   assist.DecorationSink
	saver  assist.Saver
}

// WithAppLogger sets the application logger.
func WithAppLogger(l *Logger) AppOption {
	return func(o *appOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDecorations sets the decoration sink passed through to the service.
func WithDecorations(sink assist.DecorationSink) AppOption {
	return func(o *appOptions) {
		o.sink = sink
	}
}

// WithSnapshotSaver sets the saver passed through to the service.
func WithSnapshotSaver(saver assist.Saver) AppOption {
	return func(o *appOptions) {
		o.saver = saver
	}
}

// New builds an application from configuration with an empty document.
func New(cfg *config.Config, opts ...AppOption) (*Application, error) {
	return NewWithText(cfg, "", opts...)
}

// NewWithText builds an application whose document starts with text.
//
// A checker whose prerequisites are missing (no dictionary file, no
// endpoint or API key, no rule scripts) is skipped with a warning; only
// a configuration that yields zero checkers is an error.
func NewWithText(cfg *config.Config, text string, opts ...AppOption) (*Application, error) {
	options := appOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	log := options.logger
	if log == nil {
		log = NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.Logging.Level),
			Output: os.Stderr,
			Prefix: "prosecheck",
		})
	}

	a := &Application{
		cfg: cfg,
		log: log,
		buf: buffer.NewFromString(text),
	}

	// Trace every buffer mutation, whichever path produced it. The observer
	// runs under the buffer lock, so it only writes to the logger.
	editLog := log.WithComponent("buffer")
	a.buf.AddObserver(buffer.ObserverFunc(func(r buffer.EditResult) {
		editLog.Debug("edit [%d,%d) delta %+d rev %d", r.Edit.Start, r.Edit.End, r.Delta, r.Revision)
	}))

	serviceOpts := []assist.ServiceOption{
		assist.WithLogger(log.WithComponent("assist")),
		assist.WithSegmenter(segment.NewSegmenter(
			segment.WithStrategy(segment.ParseStrategy(cfg.Segmenter.Strategy)),
			segment.WithWindowWords(cfg.Segmenter.WindowWords),
		)),
		assist.WithStructuralThreshold(cfg.Engine.StructuralWords),
		assist.WithDismissalWindow(cfg.Engine.ContextWindow),
		assist.WithDevMode(cfg.Engine.DevMode),
	}
	if options.sink != nil {
		serviceOpts = append(serviceOpts, assist.WithDecorationSink(options.sink))
	}
	if options.saver != nil {
		serviceOpts = append(serviceOpts, assist.WithSaver(options.saver))
	}

	checkerOpts, n, err := a.buildCheckers()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoCheckers
	}
	serviceOpts = append(serviceOpts, checkerOpts...)

	a.service = assist.NewService(a.buf, serviceOpts...)
	return a, nil
}

// buildCheckers assembles the checkers configuration enables, with their
// debounce intervals.
func (a *Application) buildCheckers() ([]assist.ServiceOption, int, error) {
	var opts []assist.ServiceOption
	count := 0

	sp := a.cfg.Checkers.Spelling
	if sp.Enabled {
		switch {
		case sp.Dictionary == "":
			a.log.Warn("spelling checker disabled: no dictionary configured")
		default:
			c, err := checker.NewSpellingCheckerFromFile(sp.Dictionary)
			if err != nil {
				return nil, 0, fmt.Errorf("spelling checker: %w", err)
			}
			opts = append(opts, assist.WithChecker(c, sp.Debounce.Std()))
			count++
		}
	}

	gr := a.cfg.Checkers.Grammar
	if gr.Enabled {
		switch {
		case gr.Endpoint != "":
			c := checker.NewHTTPChecker(grammarHTTPName, checker.KindGrammar, gr.Endpoint)
			opts = append(opts, assist.WithChecker(c, gr.Debounce.Std()))
			count++
		case a.cfg.APIKey() != "":
			c, err := checker.NewLLMChecker(checker.LLMConfig{
				APIKey:  a.cfg.APIKey(),
				BaseURL: gr.BaseURL,
				Model:   gr.Model,
			})
			if err != nil {
				return nil, 0, fmt.Errorf("grammar checker: %w", err)
			}
			opts = append(opts, assist.WithChecker(c, gr.Debounce.Std()))
			count++
		default:
			a.log.Warn("grammar checker disabled: no endpoint and no %s in environment", config.EnvAPIKey)
		}
	}

	st := a.cfg.Checkers.Style
	if st.Enabled {
		scripts, err := expandRulePaths(st.Rules)
		if err != nil {
			return nil, 0, fmt.Errorf("style checker: %w", err)
		}
		if len(scripts) == 0 {
			a.log.Warn("style checker disabled: no rule scripts configured")
		} else {
			rules, err := checker.NewLuaRules(scripts)
			if err != nil {
				return nil, 0, fmt.Errorf("style checker: %w", err)
			}
			a.luaRules = rules
			opts = append(opts, assist.WithChecker(rules, st.Debounce.Std()))
			count++
		}
	}

	return opts, count, nil
}

// expandRulePaths resolves glob patterns in the configured rule list.
func expandRulePaths(patterns []string) ([]string, error) {
	var scripts []string
	for _, p := range patterns {
		if !hasGlobMeta(p) {
			// A literal path that does not exist is reported by the Lua
			// loader; a pattern matching nothing is just skipped.
			scripts = append(scripts, p)
			continue
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("rule pattern %q: %w", p, err)
		}
		scripts = append(scripts, matches...)
	}
	return scripts, nil
}

func hasGlobMeta(p string) bool {
	for _, r := range p {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}

// Service returns the suggestion service.
func (a *Application) Service() *assist.Service {
	return a.service
}

// Buffer returns the document buffer.
func (a *Application) Buffer() *buffer.Buffer {
	return a.buf
}

// Logger returns the application logger.
func (a *Application) Logger() *Logger {
	return a.log
}

// WatchConfig reloads tunable settings when the file at path changes.
// Structural settings (enabled checkers, endpoints, segmentation strategy)
// need a restart; the log level and debounce intervals are applied live.
func (a *Application) WatchConfig(path string) error {
	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err != nil {
			a.log.Warn("config reload failed, keeping previous settings: %v", err)
			return
		}
		a.log.SetLevel(ParseLogLevel(cfg.Logging.Level))
		n := a.applyDebounce(cfg)
		a.log.Info("configuration reloaded from %s (%d checker intervals updated)", path, n)
	})
	if err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// applyDebounce pushes reloaded debounce intervals into the running service
// and returns how many categories were updated. Categories that were not
// wired at startup are ignored.
func (a *Application) applyDebounce(cfg *config.Config) int {
	n := 0
	for name, d := range map[string]time.Duration{
		checker.SpellingCheckerName: cfg.Checkers.Spelling.Debounce.Std(),
		grammarHTTPName:             cfg.Checkers.Grammar.Debounce.Std(),
		checker.LLMCheckerName:      cfg.Checkers.Grammar.Debounce.Std(),
		checker.LuaRulesCheckerName: cfg.Checkers.Style.Debounce.Std(),
	} {
		if a.service.SetDebounce(name, d) {
			n++
		}
	}
	return n
}

// CheckFile loads a file into the document and runs one synchronous
// analysis pass over every checker.
func (a *Application) CheckFile(ctx context.Context, path string) ([]assist.Suggestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.CheckText(ctx, string(data))
}

// CheckText replaces the document content and runs one synchronous pass.
func (a *Application) CheckText(ctx context.Context, text string) ([]assist.Suggestion, error) {
	if err := a.service.HandleEdit(0, a.buf.Len(), text); err != nil {
		return nil, err
	}
	return a.service.CheckNow(ctx)
}

// Close shuts down the service, checkers, and config watcher.
func (a *Application) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.service.Close()
	if a.luaRules != nil {
		a.luaRules.Close()
	}
}
