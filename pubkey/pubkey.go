// Package pubkey implements 32-byte ledger identities and deterministic
// program-derived address (PDA) computation for the share storage program.
//
// Every entity in the system is located by a public key: signing accounts
// are ed25519 public keys, while storage records, token vaults and
// per-token bookkeeping records live at addresses derived purely from
// their creation key. Derivation is the system's sole lookup primitive;
// there is no directory service.
package pubkey

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the length of a public key in bytes.
const Size = 32

// PubKey is a 32-byte ledger identity, rendered as base58 text.
type PubKey [Size]byte

// Zero is the all-zero public key, used as the absent value.
var Zero PubKey

// String returns the base58 representation of the key.
func (pk PubKey) String() string {
	return base58.Encode(pk[:])
}

// Bytes returns a copy of the raw key bytes.
func (pk PubKey) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, pk[:])
	return out
}

// IsZero reports whether the key is the all-zero value.
func (pk PubKey) IsZero() bool {
	return pk == Zero
}

// Equal reports whether two keys are identical.
func (pk PubKey) Equal(other PubKey) bool {
	return bytes.Equal(pk[:], other[:])
}

// FromBytes converts a 32-byte slice into a PubKey.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), Size)
	}
	var pk PubKey
	copy(pk[:], b)
	return pk, nil
}

// Parse decodes a base58 string into a PubKey.
func Parse(s string) (PubKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return FromBytes(raw)
}

// MustParse decodes a base58 string into a PubKey and panics on failure.
// Intended for package-level constants.
func MustParse(s string) PubKey {
	pk, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return pk
}
