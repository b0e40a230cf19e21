// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/tasklist/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from a TOML file.
type Loader struct {
	path    string // Config file path
	dataDir string // Directory for default store and log locations
}

// NewLoader creates a Loader for the global config file.
// A non-empty path overrides the global location (--config).
func NewLoader(path string) *Loader {
	dir := DefaultDir()
	if path == "" && dir != "" {
		path = filepath.Join(dir, domain.ConfigFileName)
	}
	return &Loader{path: path, dataDir: dir}
}

// NewLoaderWithDir creates a Loader rooted at dir.
// This is useful for testing.
func NewLoaderWithDir(dir string) *Loader {
	return &Loader{
		path:    filepath.Join(dir, domain.ConfigFileName),
		dataDir: dir,
	}
}

// DefaultDir returns the default application directory
// ($XDG_CONFIG_HOME/tasklist or ~/.config/tasklist).
func DefaultDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalDir(configHome)
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.path
}

// DataDir returns the directory used for default store and log paths.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// Load returns the config file merged over the defaults.
func (l *Loader) Load() (*domain.Config, error) {
	base := domain.NewDefaultConfig(l.dataDir)
	if l.path == "" {
		return base, nil
	}

	file, err := l.loadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}
	return mergeConfigs(base, file), nil
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown section: %s", section)
			continue
		}
		switch section {
		case "client":
			for k, v := range m {
				switch k {
				case "backend":
					if s, ok := v.(string); ok {
						res.Client.Backend = s
					}
				case "base_url":
					if s, ok := v.(string); ok {
						res.Client.BaseURL = s
					}
				case "timeout":
					if d, ok := parseDuration(v); ok {
						res.Client.Timeout = d
					} else {
						warn("invalid duration in [client]: timeout = %v", v)
					}
				default:
					warn("unknown key in [client]: %s", k)
				}
			}
		case "server":
			for k, v := range m {
				switch k {
				case "addr":
					if s, ok := v.(string); ok {
						res.Server.Addr = s
					}
				case "store":
					if s, ok := v.(string); ok {
						res.Server.Store = s
					}
				case "db_path":
					if s, ok := v.(string); ok {
						res.Server.DBPath = s
					}
				case "json_path":
					if s, ok := v.(string); ok {
						res.Server.JSONPath = s
					}
				case "redis_url":
					if s, ok := v.(string); ok {
						res.Server.RedisURL = s
					}
				case "cache_ttl":
					if d, ok := parseDuration(v); ok {
						res.Server.CacheTTL = d
					} else {
						warn("invalid duration in [server]: cache_ttl = %v", v)
					}
				case "debug":
					if b, ok := v.(bool); ok {
						res.Server.Debug = b
					}
				default:
					warn("unknown key in [server]: %s", k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				case "dir":
					if s, ok := v.(string); ok {
						res.Log.Dir = s
					}
				default:
					warn("unknown key in [log]: %s", k)
				}
			}
		case "templates":
			for k, v := range m {
				switch k {
				case "item":
					if s, ok := v.(string); ok {
						res.Templates.Item = s
					}
				case "stats":
					if s, ok := v.(string); ok {
						res.Templates.Stats = s
					}
				default:
					warn("unknown key in [templates]: %s", k)
				}
			}
		default:
			warn("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// parseDuration accepts a Go duration string ("10s") or an integer number of seconds.
func parseDuration(v any) (time.Duration, bool) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		return d, err == nil && d >= 0
	case int64:
		return time.Duration(x) * time.Second, x >= 0
	}
	return 0, false
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	if len(override.Warnings) > 0 {
		result.Warnings = append(slices.Clone(base.Warnings), override.Warnings...)
	}

	setString(&result.Client.Backend, override.Client.Backend)
	setString(&result.Client.BaseURL, override.Client.BaseURL)
	if override.Client.Timeout != 0 {
		result.Client.Timeout = override.Client.Timeout
	}

	setString(&result.Server.Addr, override.Server.Addr)
	setString(&result.Server.Store, override.Server.Store)
	setString(&result.Server.DBPath, override.Server.DBPath)
	setString(&result.Server.JSONPath, override.Server.JSONPath)
	setString(&result.Server.RedisURL, override.Server.RedisURL)
	if override.Server.CacheTTL != 0 {
		result.Server.CacheTTL = override.Server.CacheTTL
	}
	if override.Server.Debug {
		result.Server.Debug = true
	}

	setString(&result.Log.Level, override.Log.Level)
	setString(&result.Log.Dir, override.Log.Dir)

	setString(&result.Templates.Item, override.Templates.Item)
	setString(&result.Templates.Stats, override.Templates.Stats)

	return &result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// fileConfig mirrors domain.Config with durations as strings so the
// rendered file round-trips through the loader.
type fileConfig struct {
	Client struct {
		Backend string `toml:"backend"`
		BaseURL string `toml:"base_url"`
		Timeout string `toml:"timeout"`
	} `toml:"client"`
	Server struct {
		Addr     string `toml:"addr"`
		Store    string `toml:"store"`
		DBPath   string `toml:"db_path"`
		JSONPath string `toml:"json_path"`
		RedisURL string `toml:"redis_url"`
		CacheTTL string `toml:"cache_ttl"`
		Debug    bool   `toml:"debug"`
	} `toml:"server"`
	Log       domain.LogConfig       `toml:"log"`
	Templates domain.TemplatesConfig `toml:"templates"`
}

// Render encodes cfg as TOML.
func Render(cfg *domain.Config) (string, error) {
	var f fileConfig
	f.Client.Backend = cfg.Client.Backend
	f.Client.BaseURL = cfg.Client.BaseURL
	f.Client.Timeout = cfg.Client.Timeout.String()
	f.Server.Addr = cfg.Server.Addr
	f.Server.Store = cfg.Server.Store
	f.Server.DBPath = cfg.Server.DBPath
	f.Server.JSONPath = cfg.Server.JSONPath
	f.Server.RedisURL = cfg.Server.RedisURL
	f.Server.CacheTTL = cfg.Server.CacheTTL.String()
	f.Server.Debug = cfg.Server.Debug
	f.Log = cfg.Log
	f.Templates = cfg.Templates

	out, err := toml.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}
