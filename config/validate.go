package config

// validNetworks lists the accepted cluster names.
var validNetworks = map[string]bool{
	"mainnet-beta": true,
	"testnet":      true,
	"devnet":       true,
	"localnet":     true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validNetworks[cfg.Network] {
		return ErrInvalidNetwork
	}

	if cfg.ChallengeTTL <= 0 || cfg.SessionTTL <= 0 {
		return ErrInvalidDuration
	}

	return nil
}
