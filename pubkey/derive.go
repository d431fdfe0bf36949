package pubkey

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// ProgramID is the deployed address of the share storage program. Derived
// addresses are scoped to it, so two programs can never collide.
var ProgramID = MustParse("6XLJppAifd5mixoxywpBsTV9ipYgFBQiGg9HaNbtYe3e")

// Derivation seed tags. Each record class carries its own tag so that
// records of different kinds derived from the same inputs never collide.
const (
	seedShareStorage    = "share_storage"
	seedSplShareStorage = "spl_share_storage"
	seedTokenVault      = "spl_token_vault"
	seedTokenRecord     = "token_dist"

	// derivedMarker domain-separates PDA hashing from any other use of
	// SHA256 over key material.
	derivedMarker = "ProgramDerivedAddress"

	// MaxSeedLen is the maximum length of a single derivation seed.
	MaxSeedLen = 32
)

// DeriveAddress computes the program-derived address for the given seeds.
// The search starts at bump 255 and walks down until the candidate falls
// outside the ed25519 curve, so no private key can ever exist for a derived
// address. The returned bump makes the derivation reproducible without
// repeating the search.
//
// The function is pure: same seeds, same address, always.
func DeriveAddress(seeds [][]byte, program PubKey) (PubKey, uint8, error) {
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, 0, fmt.Errorf("%w: %d bytes", ErrSeedTooLong, len(seed))
		}
	}
	for bump := 255; bump >= 0; bump-- {
		candidate := hashSeeds(seeds, uint8(bump), program)
		if !isOnCurve(candidate) {
			return candidate, uint8(bump), nil
		}
	}
	return Zero, 0, ErrNoValidBump
}

// DeriveAddressWithBump recomputes a derived address for a known bump.
func DeriveAddressWithBump(seeds [][]byte, bump uint8, program PubKey) PubKey {
	return hashSeeds(seeds, bump, program)
}

func hashSeeds(seeds [][]byte, bump uint8, program PubKey) PubKey {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(program[:])
	h.Write([]byte(derivedMarker))
	var pk PubKey
	copy(pk[:], h.Sum(nil))
	return pk
}

// DeriveShareStorage returns the address of the native share storage record
// for (owner, name).
func DeriveShareStorage(owner PubKey, name string) (PubKey, uint8, error) {
	return DeriveAddress([][]byte{[]byte(seedShareStorage), owner[:], []byte(name)}, ProgramID)
}

// DeriveSplShareStorage returns the address of the SPL token share storage
// record for (owner, name).
func DeriveSplShareStorage(owner PubKey, name string) (PubKey, uint8, error) {
	return DeriveAddress([][]byte{[]byte(seedSplShareStorage), owner[:], []byte(name)}, ProgramID)
}

// DeriveTokenVault returns the address of the token account that holds a
// storage record's undistributed token balance. The vault is owned by the
// storage address, never by a signing key.
func DeriveTokenVault(storage PubKey) (PubKey, uint8, error) {
	return DeriveAddress([][]byte{[]byte(seedTokenVault), storage[:]}, ProgramID)
}

// DeriveTokenRecord returns the address of the per-(storage, mint)
// distribution bookkeeping record.
func DeriveTokenRecord(storage, mint PubKey) (PubKey, uint8, error) {
	return DeriveAddress([][]byte{[]byte(seedTokenRecord), storage[:], mint[:]}, ProgramID)
}

// ---------------------------------------------------------------------------
// ed25519 curve membership
// ---------------------------------------------------------------------------

// Field parameters for curve25519 in its twisted Edwards form:
// -x^2 + y^2 = 1 + d*x^2*y^2 over GF(2^255 - 19).
var (
	edP       *big.Int // field prime 2^255 - 19
	edD       *big.Int // curve constant -121665/121666
	edSqrtExp *big.Int // (p-1)/2, Euler criterion exponent
	bigOne    = big.NewInt(1)
)

func init() {
	edP = new(big.Int).Lsh(bigOne, 255)
	edP.Sub(edP, big.NewInt(19))

	num := big.NewInt(-121665)
	den := big.NewInt(121666)
	den.ModInverse(den, edP)
	edD = num.Mul(num, den)
	edD.Mod(edD, edP)

	edSqrtExp = new(big.Int).Sub(edP, bigOne)
	edSqrtExp.Rsh(edSqrtExp, 1)
}

// isOnCurve reports whether the 32 bytes decode to a point on the ed25519
// curve, meaning a private key could exist for them. Candidates are read as
// a little-endian y coordinate with the top bit holding the x sign, the
// same compressed encoding ed25519 public keys use.
func isOnCurve(pk PubKey) bool {
	var yBytes [Size]byte
	copy(yBytes[:], pk[:])
	yBytes[31] &= 0x7f // drop the x sign bit

	// little-endian to big.Int
	for i, j := 0, Size-1; i < j; i, j = i+1, j-1 {
		yBytes[i], yBytes[j] = yBytes[j], yBytes[i]
	}
	y := new(big.Int).SetBytes(yBytes[:])
	if y.Cmp(edP) >= 0 {
		return false
	}

	// x^2 = (y^2 - 1) / (d*y^2 + 1); the point exists iff the right side
	// is a quadratic residue mod p.
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, edP)

	u := new(big.Int).Sub(y2, bigOne)
	u.Mod(u, edP)

	v := new(big.Int).Mul(edD, y2)
	v.Add(v, bigOne)
	v.Mod(v, edP)
	v.ModInverse(v, edP)

	x2 := u.Mul(u, v)
	x2.Mod(x2, edP)
	if x2.Sign() == 0 {
		return true // x = 0, valid point
	}

	legendre := new(big.Int).Exp(x2, edSqrtExp, edP)
	return legendre.Cmp(bigOne) == 0
}
