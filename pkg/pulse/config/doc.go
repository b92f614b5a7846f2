/*
Package config provides type-safe configuration extraction from map[string]any.

# Overview

config wraps a map[string]any and provides typed accessor methods that handle
missing keys and type mismatches gracefully by returning default values. The
bus uses it to resolve tier timeouts at construction; because every accessor
falls back to its default, a malformed config can never break bus creation.

# Basic Usage

Create a Config from any map and extract values with defaults:

	cfg := config.New(map[string]any{
	    "critical_timeout": 2.5,
	    "high_timeout":     "10s",
	    "metrics_enabled":  true,
	})

	critical := cfg.Duration("critical_timeout", 5*time.Second) // 2.5s
	high := cfg.Duration("high_timeout", 5*time.Second)         // 10s
	enabled := cfg.Bool("metrics_enabled", false)               // true
	missing := cfg.String("missing", "default")                 // "default"

# Type Coercion

Duration handles multiple input types:
  - string: parsed with time.ParseDuration ("30s", "1h30m")
  - int/float64: interpreted as seconds
  - time.Duration: used directly

All methods return the default value if:
  - The key is missing
  - The value cannot be converted to the requested type
  - The conversion would lose precision (e.g., float to int with fraction)

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("bus.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
