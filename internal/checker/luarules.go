package checker

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/prosecheck/internal/segment"
)

// LuaRulesCheckerName is the scheduling category of the Lua rule checker.
const LuaRulesCheckerName = "style-rules"

// DefaultLuaTimeout bounds a rule pass over one batch of units.
// Best-effort: Lua code that never yields cannot be interrupted mid-opcode.
const DefaultLuaTimeout = 2 * time.Second

// LuaRules runs user-provided style rules written in Lua.
//
// Each rule script must return a function taking the unit text and returning
// an array of tables with fields `text`, `suggestion`, `start` (1-based byte
// index), and optionally `description`. Results failing validation are
// dropped individually, mirroring the wire-boundary policy.
//
// gopher-lua's LState is not goroutine-safe; all calls are serialized behind
// a mutex.
type LuaRules struct {
	mu      sync.Mutex
	state   *lua.LState
	rules   []luaRule
	timeout time.Duration
	closed  bool
}

type luaRule struct {
	name string
	fn   *lua.LFunction
}

// LuaOption configures a LuaRules checker.
type LuaOption func(*LuaRules)

// WithLuaTimeout bounds each Check call.
func WithLuaTimeout(d time.Duration) LuaOption {
	return func(c *LuaRules) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewLuaRules loads rule scripts into a sandboxed Lua state.
func NewLuaRules(scriptPaths []string, opts ...LuaOption) (*LuaRules, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Only the libraries rule authors need; no io, os, or debug.
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua lib %s: %w", lib.name, err)
		}
	}

	c := &LuaRules{
		state:   L,
		timeout: DefaultLuaTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, path := range scriptPaths {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return nil, fmt.Errorf("load rule %s: %w", path, err)
		}
		ret := L.Get(-1)
		L.Pop(1)
		fn, ok := ret.(*lua.LFunction)
		if !ok {
			L.Close()
			return nil, fmt.Errorf("rule %s must return a function, got %s", path, ret.Type())
		}
		c.rules = append(c.rules, luaRule{name: filepath.Base(path), fn: fn})
	}

	return c, nil
}

// Name implements Checker.
func (c *LuaRules) Name() string { return LuaRulesCheckerName }

// Kind implements Checker.
func (c *LuaRules) Kind() Kind { return KindStyle }

// Check implements Checker.
func (c *LuaRules) Check(ctx context.Context, units []segment.Unit) ([]RawSuggestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	c.state.SetContext(ctx)
	defer c.state.RemoveContext()

	var out []RawSuggestion
	for _, u := range units {
		for _, rule := range c.rules {
			results, err := c.callRule(rule, u.Text)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				// A broken rule must not take down the batch.
				continue
			}
			for _, r := range results {
				if raw, ok := validateLuaResult(r, u); ok {
					out = append(out, raw)
				}
			}
		}
	}
	return out, nil
}

// Close releases the Lua state.
func (c *LuaRules) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.state.Close()
}

// luaResult is one entry as returned by a rule, before validation.
type luaResult struct {
	text        string
	suggestion  string
	start       int64 // 1-based, as written by rule authors
	description string
}

func (c *LuaRules) callRule(rule luaRule, text string) ([]luaResult, error) {
	if err := c.state.CallByParam(lua.P{
		Fn:      rule.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(text)); err != nil {
		return nil, fmt.Errorf("rule %s: %w", rule.name, err)
	}

	ret := c.state.Get(-1)
	c.state.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, nil
	}

	var results []luaResult
	tbl.ForEach(func(_, v lua.LValue) {
		entry, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		results = append(results, luaResult{
			text:        luaString(entry, "text"),
			suggestion:  luaString(entry, "suggestion"),
			start:       luaInt(entry, "start"),
			description: luaString(entry, "description"),
		})
	})
	return results, nil
}

func validateLuaResult(r luaResult, u segment.Unit) (RawSuggestion, bool) {
	if r.text == "" || r.start < 1 {
		return RawSuggestion{}, false
	}
	start := r.start - 1
	end := start + int64(len(r.text))
	if end > int64(len(u.Text)) || u.Text[start:end] != r.text {
		return RawSuggestion{}, false
	}
	return RawSuggestion{
		UnitID:      u.ID,
		Text:        r.text,
		Replacement: r.suggestion,
		Start:       start,
		End:         end,
		Kind:        KindStyle,
		Description: r.description,
	}, true
}

func luaString(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func luaInt(t *lua.LTable, key string) int64 {
	if n, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int64(n)
	}
	return 0
}
