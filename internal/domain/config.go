package domain

import (
	_ "embed"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigTemplate returns the commented default configuration written by
// `tasks config init`.
func ConfigTemplate() string {
	return configTemplateContent
}

// Backend names accepted by [client] backend and [server] store.
const (
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultClientTimeout = 10 * time.Second
	DefaultServerAddr    = ":8080"
	DefaultCacheTTL      = time.Minute
	DefaultLogLevel      = "info"

	DefaultItemTemplate  = `{{if .IsDone}}[x]{{else}}[ ]{{end}} {{.Task}}`
	DefaultStatsTemplate = `{{.ItemsLeft}} {{if eq .ItemsLeft 1}}item{{else}}items{{end}} left`
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Templates TemplatesConfig `toml:"templates"`
	Client    ClientConfig    `toml:"client"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// ClientConfig holds settings for the task client from [client] section.
type ClientConfig struct {
	Backend string        `toml:"backend"`  // "http" (default), "sqlite" or "json"
	BaseURL string        `toml:"base_url"` // Root URL of the /tasks endpoint
	Timeout time.Duration `toml:"timeout"`  // Per-request timeout
}

// ServerConfig holds settings for the reference server from [server] section.
type ServerConfig struct {
	Addr     string        `toml:"addr"`      // Listen address
	Store    string        `toml:"store"`     // "sqlite" (default) or "json"
	DBPath   string        `toml:"db_path"`   // SQLite database file
	JSONPath string        `toml:"json_path"` // JSON store file
	RedisURL string        `toml:"redis_url"` // Optional list cache (empty = disabled)
	CacheTTL time.Duration `toml:"cache_ttl"` // List cache TTL
	Debug    bool          `toml:"debug"`     // Verbose request logging
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	Dir   string `toml:"dir"`   // Log directory (empty = logging disabled)
}

// TemplatesConfig holds the row and footer templates from [templates] section.
type TemplatesConfig struct {
	Item  string `toml:"item"`  // Rendered once per task row
	Stats string `toml:"stats"` // Rendered into the footer
}

// NewDefaultConfig returns a Config populated with default values.
// dataDir is the directory used for the default store and log locations;
// an empty dataDir leaves those paths relative to the working directory.
func NewDefaultConfig(dataDir string) *Config {
	return &Config{
		Client: ClientConfig{
			Backend: BackendHTTP,
			BaseURL: DefaultBaseURL,
			Timeout: DefaultClientTimeout,
		},
		Server: ServerConfig{
			Addr:     DefaultServerAddr,
			Store:    BackendSQLite,
			DBPath:   DBPath(dataDir),
			JSONPath: JSONStorePath(dataDir),
			CacheTTL: DefaultCacheTTL,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			Dir:   LogDir(dataDir),
		},
		Templates: TemplatesConfig{
			Item:  DefaultItemTemplate,
			Stats: DefaultStatsTemplate,
		},
	}
}
