// Package config loads the larek configuration.
//
// Values are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← LAREK_API_BASE_URL, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← larek.toml or larek.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file format follows the extension: .toml for TOML, .yaml or .yml for
// YAML. Every setting has a dot-separated path made of its section and a
// camelCase name, for example "api.baseUrl". Environment variables map onto
// paths by dropping the LAREK_ prefix, lowercasing the first word as the
// section and joining the rest in camelCase:
//
//	LAREK_API_BASE_URL      -> api.baseUrl
//	LAREK_LOGGING_LEVEL     -> logging.level
//	LAREK_CATALOG_FILE      -> catalog.file
//
// Basic usage:
//
//	cfg, err := config.Load("larek.toml")
//	if err != nil {
//	    return err
//	}
//	client := api.New(cfg.APIConfig())
package config
