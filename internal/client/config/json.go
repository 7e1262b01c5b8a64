package config

import (
	"encoding/json"
	"os"

	"github.com/mgallardo/freightdeck/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. After parsing,
// non-empty values are copied into the runtime Config.
type JsonConfig struct {
	ServerBaseURL string `json:"server_base_url"`
	DatabasePath  string `json:"database_path"`
	AuthToken     string `json:"auth_token"`
	LogLevel      string `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Read or unmarshal errors panic; callers may recover if desired. Intended
// usage is: defaults -> parseJson -> parseFlags, where later stages override
// earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.AuthToken != "" {
		cfg.AuthToken = jc.AuthToken
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
