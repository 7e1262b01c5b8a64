// Package config loads runtime configuration for the FreightDeck console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the reference-data API
//	-d string   path to the local cache database
//	-t string   opaque bearer token for API calls
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080",
//	  "database_path": "freightdeck.db",
//	  "auth_token": "…",
//	  "log_level": "info"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
