package pubkey

import "errors"

var (
	// ErrInvalidLength indicates a key is not exactly 32 bytes.
	ErrInvalidLength = errors.New("pubkey: invalid key length")

	// ErrInvalidEncoding indicates a key string is not valid base58.
	ErrInvalidEncoding = errors.New("pubkey: invalid base58 encoding")

	// ErrSeedTooLong indicates a derivation seed exceeds the maximum length.
	ErrSeedTooLong = errors.New("pubkey: derivation seed too long")

	// ErrNoValidBump indicates no bump produced an off-curve address.
	// Statistically unreachable for real inputs.
	ErrNoValidBump = errors.New("pubkey: no valid bump seed found")
)
