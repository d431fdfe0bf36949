// Package config holds runtime configuration for the share storage
// service: where ledger state lives, which cluster the program targets,
// and authentication lifetimes. Configuration is stored as a flat
// key = value file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all runtime configuration.
type Config struct {
	// DataDir is the directory holding ledger state.
	DataDir string

	// Network names the target cluster: "mainnet-beta", "testnet",
	// "devnet", or "localnet".
	Network string

	// ChallengeTTL is how long an authentication challenge stays valid.
	ChallengeTTL time.Duration

	// SessionTTL is the lifetime of an issued session token.
	SessionTTL time.Duration
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() Config {
	dataDir := ".share-storage"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".share-storage")
	}
	return Config{
		DataDir:      dataDir,
		Network:      "devnet",
		ChallengeTTL: 5 * time.Minute,
		SessionTTL:   24 * time.Hour,
	}
}

// LoadConfig reads a configuration file at path. Missing keys keep their
// default values; unknown keys are ignored so newer files still load.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "network":
			cfg.Network = value
		case "challengettl":
			d, err := time.ParseDuration(value)
			if err != nil {
				return cfg, fmt.Errorf("%w: line %d: %s", ErrInvalidConfigLine, lineNo, err)
			}
			cfg.ChallengeTTL = d
		case "sessionttl":
			d, err := time.ParseDuration(value)
			if err != nil {
				return cfg, fmt.Errorf("%w: line %d: %s", ErrInvalidConfigLine, lineNo, err)
			}
			cfg.SessionTTL = d
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "challengettl = %s\n", cfg.ChallengeTTL)
	fmt.Fprintf(&b, "sessionttl = %s\n", cfg.SessionTTL)

	return os.WriteFile(path, []byte(b.String()), 0600)
}
