package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/feedback/config.yaml",
}

// ConfigPathEnvVar names an explicit config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration: struct defaults, then the YAML file if
// one exists, then environment variables. A .env file in the working
// directory is read into the environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// PORT is a bare port number; FEEDBACK_SERVER_ADDR wins when both are set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FEEDBACK_SERVER_ADDR") == "" {
		if err := k.Set("server.addr", ":"+port); err != nil {
			return nil, err
		}
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"cors.allowed_origins",
}

// processSliceFields splits comma-separated env values into lists.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// legacyEnv maps variable names the service has always honored.
var legacyEnv = map[string]string{
	"mongo_uri":      "store.mongo_uri",
	"database_url":   "store.postgres_url",
	"session_secret": "session.secret",
	"log_level":      "logging.level",
}

// envTransformFunc maps FEEDBACK_<SECTION>_<KEY> and the legacy names onto
// koanf paths. Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := legacyEnv[key]; ok {
		return mapped
	}

	rest, ok := strings.CutPrefix(key, "feedback_")
	if !ok {
		return ""
	}
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return ""
	}
	if _, known := sections[section]; !known {
		return ""
	}
	return section + "." + field
}

var sections = map[string]struct{}{
	"server":  {},
	"store":   {},
	"session": {},
	"auth":    {},
	"cors":    {},
	"sso":     {},
	"logging": {},
	"metrics": {},
}
