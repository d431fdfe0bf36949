package sharestorage

import (
	"fmt"

	"github.com/roguzh/solana-share-storage/pubkey"
)

// ValidateName checks that a storage name is between 1 and 32 bytes.
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidName, len(name))
	}
	return nil
}

// ValidateHolders checks a candidate holder list before it replaces a
// record's configuration. Checks run in a fixed order, each with its own
// reportable failure:
//
//  1. at most MaxHolders entries
//  2. every share in (0, 10000]
//  3. no duplicate pubkeys
//  4. non-empty lists sum to exactly 10,000 basis points
//
// An empty list is valid: it clears the configuration and makes
// distribution impossible until holders are set again.
func ValidateHolders(holders []ShareHolder) error {
	if len(holders) > MaxHolders {
		return fmt.Errorf("%w: %d entries", ErrTooManyHolders, len(holders))
	}

	for i, h := range holders {
		if h.ShareBasisPoints == 0 {
			return fmt.Errorf("%w: holder %d has zero share", ErrInvalidShareDistribution, i)
		}
		if h.ShareBasisPoints > TotalBasisPoints {
			return fmt.Errorf("%w: holder %d share %d exceeds %d", ErrInvalidShareDistribution, i, h.ShareBasisPoints, TotalBasisPoints)
		}
	}

	seen := make(map[pubkey.PubKey]struct{}, len(holders))
	for i, h := range holders {
		if _, ok := seen[h.Pubkey]; ok {
			return fmt.Errorf("%w: holder %d (%s)", ErrHolderAlreadyExists, i, h.Pubkey)
		}
		seen[h.Pubkey] = struct{}{}
	}

	if len(holders) == 0 {
		return nil
	}

	// Widened sum: 16 entries of at most 10,000 cannot overflow uint32.
	var total uint32
	for _, h := range holders {
		total += uint32(h.ShareBasisPoints)
	}
	if total != TotalBasisPoints {
		return fmt.Errorf("%w: shares sum to %d", ErrInvalidShareDistribution, total)
	}
	return nil
}
