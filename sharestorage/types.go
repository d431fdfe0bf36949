// Package sharestorage defines the share storage data model: named records
// holding a configured set of holders and their proportional shares in
// basis points, plus cumulative distribution bookkeeping. It owns the
// structural invariants every committed record must satisfy and the closed
// error taxonomy every operation reports from.
package sharestorage

import "github.com/roguzh/solana-share-storage/pubkey"

const (
	// MaxNameLen is the maximum length of a storage name in bytes.
	MaxNameLen = 32

	// MaxHolders is the maximum number of holders per storage record.
	MaxHolders = 16

	// TotalBasisPoints is the complete share: 10,000 basis points = 100%.
	TotalBasisPoints = 10000
)

// ShareHolder is one recipient of distributions and its proportional share.
type ShareHolder struct {
	Pubkey           pubkey.PubKey
	ShareBasisPoints uint16
}

// ShareStorage is a native-asset share storage record. Its address is
// derived from (Admin, Name); both are fixed at creation.
type ShareStorage struct {
	Admin             pubkey.PubKey
	Name              string
	Enabled           bool
	LastDistributedAt int64
	TotalDistributed  uint64
	Holders           []ShareHolder
}

// SplShareStorage is the fungible-token variant. The token balance lives
// in a separate vault token account owned by the record's address, and
// TokenMint is fixed at creation.
type SplShareStorage struct {
	Admin             pubkey.PubKey
	TokenMint         pubkey.PubKey
	Name              string
	Enabled           bool
	LastDistributedAt int64
	TotalDistributed  uint64
	Holders           []ShareHolder
}

// TokenDistributionRecord tracks cumulative distribution for one
// (storage, mint) pair, independent of the shared holder configuration.
type TokenDistributionRecord struct {
	Storage           pubkey.PubKey
	Mint              pubkey.PubKey
	TotalDistributed  uint64
	LastDistributedAt int64
}

// IsAdmin reports whether pk is the record's admin.
func (s *ShareStorage) IsAdmin(pk pubkey.PubKey) bool {
	return s.Admin == pk
}

// IsAdmin reports whether pk is the record's admin.
func (s *SplShareStorage) IsAdmin(pk pubkey.PubKey) bool {
	return s.Admin == pk
}

// FindHolder returns the index of the holder with the given pubkey, or -1.
func FindHolder(holders []ShareHolder, pk pubkey.PubKey) int {
	for i := range holders {
		if holders[i].Pubkey == pk {
			return i
		}
	}
	return -1
}
