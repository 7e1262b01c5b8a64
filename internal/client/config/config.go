package config

// Config holds runtime settings for the FreightDeck console.
//
// Fields:
//   - ServerBaseURL: scheme://host[:port] of the reference-data API.
//   - DatabasePath: SQLite file backing the local cache.
//   - AuthToken: opaque bearer credential; may be entered interactively.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerBaseURL string
	DatabasePath  string
	AuthToken     string
	LogLevel      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = "freightdeck.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
