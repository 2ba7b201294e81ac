// Package config loads the protoedit TOML file: logging, JSON output and
// interception rules.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
)

var (
	ErrInvalidLog  = errors.New("config: invalid log section")
	ErrInvalidRule = errors.New("config: invalid rule")
)

// Rule directions.
const (
	DirectionRequest  = "request"
	DirectionResponse = "response"
	DirectionBoth     = "both"
)

// Rule actions.
const (
	ActionReplace      = "replace"
	ActionReplaceRegex = "replace_regex"
	ActionPatch        = "patch"
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	JSON   JSONConfig   `toml:"json"`
	Limits LimitsConfig `toml:"limits"`
	Rules  []Rule       `toml:"rules"`
}

type LogConfig struct {
	Level     string `toml:"level"`
	Timestamp bool   `toml:"timestamp"`
	NoColor   bool   `toml:"no_color"`
}

type JSONConfig struct {
	Indent string `toml:"indent"`
}

type LimitsConfig struct {
	MaxPacketBytes int64 `toml:"max_packet_bytes"`
}

// Rule is one interception rule. An empty URI, URIRegex or CmdIDs matches
// everything on that axis.
type Rule struct {
	Name          string `toml:"name,omitempty"`
	Direction     string `toml:"direction"`
	URI           string `toml:"uri,omitempty"`
	URIRegex      string `toml:"uri_regex,omitempty"`
	CmdIDs        []int  `toml:"cmd_ids,omitempty"`
	Action        string `toml:"action"`
	Find          string `toml:"find,omitempty"`
	Replace       string `toml:"replace,omitempty"`
	Patch         string `toml:"patch,omitempty"`
	DeleteMissing bool   `toml:"delete_missing,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
		JSON: JSONConfig{
			Indent: "  ",
		},
		Limits: LimitsConfig{
			MaxPacketBytes: 8 * 1024 * 1024,
		},
		Rules: []Rule{},
	}
}

type fileConfig struct {
	Log struct {
		Level     string `toml:"level"`
		Timestamp bool   `toml:"timestamp"`
		NoColor   bool   `toml:"no_color"`
	} `toml:"log"`
	JSON struct {
		Indent string `toml:"indent"`
	} `toml:"json"`
	Limits struct {
		MaxPacketBytes int64 `toml:"max_packet_bytes"`
	} `toml:"limits"`
	Rules []Rule `toml:"rules"`
}

// Load reads path and layers the keys it defines over DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("json", "indent") {
		cfg.JSON.Indent = raw.JSON.Indent
	}
	if meta.IsDefined("limits", "max_packet_bytes") {
		cfg.Limits.MaxPacketBytes = raw.Limits.MaxPacketBytes
	}
	if meta.IsDefined("rules") {
		cfg.Rules = normalizeRules(raw.Rules)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func normalizeRules(in []Rule) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		r.Name = strings.TrimSpace(r.Name)
		r.Direction = strings.ToLower(strings.TrimSpace(r.Direction))
		r.Action = strings.ToLower(strings.TrimSpace(r.Action))
		if r.Direction == "" {
			r.Direction = DirectionBoth
		}
		out = append(out, r)
	}
	return out
}

func Validate(cfg Config) error {
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("%w: unknown level %q", ErrInvalidLog, cfg.Log.Level)
	}
	for i, r := range cfg.Rules {
		if err := ValidateRule(r); err != nil {
			return fmt.Errorf("rules[%d] invalid: %w", i, err)
		}
	}
	return nil
}

func ValidateRule(r Rule) error {
	switch r.Direction {
	case DirectionRequest, DirectionResponse, DirectionBoth:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidRule, r.Direction)
	}
	if r.URI != "" && r.URIRegex != "" {
		return fmt.Errorf("%w: uri and uri_regex are exclusive", ErrInvalidRule)
	}
	if r.URIRegex != "" {
		if _, err := regexp.Compile(r.URIRegex); err != nil {
			return fmt.Errorf("%w: uri_regex: %v", ErrInvalidRule, err)
		}
	}

	switch r.Action {
	case ActionReplace:
		if r.Find == "" {
			return fmt.Errorf("%w: find is required", ErrInvalidRule)
		}
	case ActionReplaceRegex:
		if r.Find == "" {
			return fmt.Errorf("%w: find is required", ErrInvalidRule)
		}
		if _, err := regexp.Compile(r.Find); err != nil {
			return fmt.Errorf("%w: find: %v", ErrInvalidRule, err)
		}
	case ActionPatch:
		if _, err := jsonvalue.ParseObject([]byte(r.Patch)); err != nil {
			return fmt.Errorf("%w: patch: %v", ErrInvalidRule, err)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidRule, r.Action)
	}
	return nil
}

// Logging converts the log section, which must already be valid.
func (c LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if lvl, ok := logging.ParseLevel(c.Level); ok {
		cfg.Level = lvl
	}
	cfg.Timestamp = c.Timestamp
	cfg.NoColor = cfg.NoColor || c.NoColor
	return cfg
}
