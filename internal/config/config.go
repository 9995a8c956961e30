package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// rootEnvKeys are checked in order when no --root flag is given.
var rootEnvKeys = []string{"SPIDERSTAT_ROOT"}

// Root resolves the directory containing the dataset_files tree: an
// explicit flag value wins, then the environment, then the current
// directory.
func Root(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if value := Get(rootEnvKeys...); value != "" {
		return value
	}
	return "."
}

// Get returns the first non-empty environment variable from the provided keys.
func Get(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// LoadFromUserConfig merges ~/.spiderstat/config.json into the
// environment so SPIDERSTAT_* settings from that file are visible when
// running via CLI.
func LoadFromUserConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		// Best-effort: if we can't resolve home, just skip file loading.
		return nil
	}

	configPath := filepath.Join(home, ".spiderstat", "config.json")
	file, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var cfg map[string]string
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return err
	}

	for key, value := range cfg {
		if value == "" {
			continue
		}
		// Values from ~/.spiderstat/config.json take precedence over existing env vars.
		_ = os.Setenv(key, value)
	}

	return nil
}
