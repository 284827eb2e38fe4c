// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"

	"chess-bot/engine"
)

// ErrInvalidConfig wraps every malformed setting.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Logs   LogConfig
	Engine EngineConfig
	Server ServerConfig
}

type LogConfig struct {
	Style string // console or json
	Level string
}

type EngineConfig struct {
	MaxNodes        uint64
	MaxDepth        int
	MoveTime        time.Duration
	SafetyMargin    time.Duration
	CacheEntries    int
	QuiescenceSlack int
	UseBook         bool
	RetainCache     bool
}

type ServerConfig struct {
	Addr         string
	AllowOrigins []string
}

// Load reads every key, falling back to defaults for unset ones.
func Load() (*Config, error) {
	var p parser
	cfg := &Config{
		Logs: LogConfig{
			Style: p.str("LOG_STYLE", "console"),
			Level: p.str("LOG_LEVEL", "info"),
		},
		Engine: EngineConfig{
			MaxNodes:        p.uint("ENGINE_MAX_NODES", 0),
			MaxDepth:        p.int("ENGINE_MAX_DEPTH", 0),
			MoveTime:        p.millis("ENGINE_MOVE_TIME_MS", 0),
			SafetyMargin:    p.millis("ENGINE_SAFETY_MARGIN_MS", 0),
			CacheEntries:    p.int("ENGINE_CACHE_ENTRIES", engine.DefaultCacheEntries),
			QuiescenceSlack: p.int("ENGINE_QUIESCENCE_SLACK", engine.DefaultQuiescenceSlack),
			UseBook:         p.bool("ENGINE_USE_BOOK", true),
			RetainCache:     p.bool("ENGINE_RETAIN_CACHE", false),
		},
		Server: ServerConfig{
			Addr:         p.str("SERVER_ADDR", "0.0.0.0:8080"),
			AllowOrigins: p.list("SERVER_ALLOW_ORIGINS", []string{"*"}),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	switch cfg.Logs.Style {
	case "console", "json":
	default:
		return nil, fmt.Errorf("%w: LOG_STYLE %q (want console or json)", ErrInvalidConfig, cfg.Logs.Style)
	}
	if cfg.Engine.CacheEntries <= 0 {
		return nil, fmt.Errorf("%w: ENGINE_CACHE_ENTRIES must be positive", ErrInvalidConfig)
	}
	if cfg.Engine.QuiescenceSlack <= 0 {
		return nil, fmt.Errorf("%w: ENGINE_QUIESCENCE_SLACK must be positive", ErrInvalidConfig)
	}
	return cfg, nil
}

// Options converts the engine settings into engine options.
func (ec EngineConfig) Options() engine.Options {
	opts := engine.DefaultOptions()
	opts.CacheEntries = ec.CacheEntries
	opts.QuiescenceSlack = ec.QuiescenceSlack
	opts.UseBook = ec.UseBook
	opts.RetainCache = ec.RetainCache
	return opts
}

// Budget is the default per-move budget.
func (ec EngineConfig) Budget() engine.Budget {
	return engine.Budget{
		MaxNodes:     ec.MaxNodes,
		MaxDepth:     ec.MaxDepth,
		MoveTime:     ec.MoveTime,
		SafetyMargin: ec.SafetyMargin,
	}
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
	}
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if n < 0 {
		p.fail(key, v, errors.New("must not be negative"))
		return def
	}
	return n
}

func (p *parser) uint(key string, def uint64) uint64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) millis(key string, def time.Duration) time.Duration {
	return time.Duration(p.int(key, int(def/time.Millisecond))) * time.Millisecond
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

func (p *parser) list(key string, def []string) []string {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
