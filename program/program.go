// Package program implements the share storage operation surface: record
// initialization, holder configuration, deposits, and proportional
// distribution for the native asset and for SPL tokens.
//
// Every mutating operation runs inside a single ledger transaction, so a
// failure at any step leaves prior state untouched. Configuration changes
// are admin-gated; deposits, distribution, and reads are permissionless.
package program

import (
	"errors"
	"fmt"
	"time"

	"github.com/roguzh/solana-share-storage/ledger"
	"github.com/roguzh/solana-share-storage/pubkey"
	"github.com/roguzh/solana-share-storage/sharestorage"
)

// Program executes share storage operations against a ledger state.
type Program struct {
	state ledger.State
	now   func() time.Time
}

// New returns a Program bound to the given ledger state.
func New(state ledger.State) *Program {
	return &Program{state: state, now: time.Now}
}

// StorageEntry pairs a record with its derived address, for listing.
type StorageEntry struct {
	Address pubkey.PubKey
	Record  *sharestorage.ShareStorage
}

// SplStorageEntry pairs an SPL record with its derived address.
type SplStorageEntry struct {
	Address pubkey.PubKey
	Record  *sharestorage.SplShareStorage
}

// ---------------------------------------------------------------------------
// reads
// ---------------------------------------------------------------------------

// GetShareStorage returns the native record at addr.
func (p *Program) GetShareStorage(addr pubkey.PubKey) (*sharestorage.ShareStorage, error) {
	var rec *sharestorage.ShareStorage
	err := p.state.View(func(tx ledger.StateTx) error {
		var err error
		rec, err = loadShareStorage(tx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetSplShareStorage returns the SPL record at addr.
func (p *Program) GetSplShareStorage(addr pubkey.PubKey) (*sharestorage.SplShareStorage, error) {
	var rec *sharestorage.SplShareStorage
	err := p.state.View(func(tx ledger.StateTx) error {
		var err error
		rec, err = loadSplShareStorage(tx, addr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetTokenRecord returns the per-(storage, mint) bookkeeping record.
// Records are created lazily by the first distribution of that mint.
func (p *Program) GetTokenRecord(storage, mint pubkey.PubKey) (*sharestorage.TokenDistributionRecord, error) {
	addr, _, err := pubkey.DeriveTokenRecord(storage, mint)
	if err != nil {
		return nil, err
	}

	var rec *sharestorage.TokenDistributionRecord
	err = p.state.View(func(tx ledger.StateTx) error {
		acct, err := tx.Account(addr)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return sharestorage.ErrStorageNotFound
		}
		if err != nil {
			return err
		}
		rec, err = sharestorage.DecodeTokenRecord(acct.Data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// HolderShare returns the basis-point share configured for holder on the
// record at addr.
func (p *Program) HolderShare(addr, holder pubkey.PubKey) (uint16, error) {
	rec, err := p.GetShareStorage(addr)
	if err != nil {
		return 0, err
	}
	i := sharestorage.FindHolder(rec.Holders, holder)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", sharestorage.ErrHolderNotFound, holder)
	}
	return rec.Holders[i].ShareBasisPoints, nil
}

// Balance returns the native balance held at addr; missing accounts read
// as zero.
func (p *Program) Balance(addr pubkey.PubKey) (uint64, error) {
	var balance uint64
	err := p.state.View(func(tx ledger.StateTx) error {
		acct, err := tx.Account(addr)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		balance = acct.Lamports
		return nil
	})
	return balance, err
}

// VaultBalance returns the token balance held in a storage record's vault.
func (p *Program) VaultBalance(storage pubkey.PubKey) (uint64, error) {
	vault, _, err := pubkey.DeriveTokenVault(storage)
	if err != nil {
		return 0, err
	}

	var balance uint64
	err = p.state.View(func(tx ledger.StateTx) error {
		acct, err := tx.TokenAccount(vault)
		if err != nil {
			return err
		}
		balance = acct.Amount
		return nil
	})
	return balance, err
}

// ListShareStorages returns every native record administered by admin.
// This is a linear scan; derived addresses are the primary lookup path.
func (p *Program) ListShareStorages(admin pubkey.PubKey) ([]StorageEntry, error) {
	var out []StorageEntry
	err := p.state.View(func(tx ledger.StateTx) error {
		return tx.ForEachAccount(func(addr pubkey.PubKey, acct *ledger.Account) error {
			if !sharestorage.IsShareStorageData(acct.Data) {
				return nil
			}
			rec, err := sharestorage.DecodeShareStorage(acct.Data)
			if err != nil {
				return err
			}
			if rec.Admin == admin {
				out = append(out, StorageEntry{Address: addr, Record: rec})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListSplShareStorages returns every SPL record administered by admin.
func (p *Program) ListSplShareStorages(admin pubkey.PubKey) ([]SplStorageEntry, error) {
	var out []SplStorageEntry
	err := p.state.View(func(tx ledger.StateTx) error {
		return tx.ForEachAccount(func(addr pubkey.PubKey, acct *ledger.Account) error {
			if !sharestorage.IsSplShareStorageData(acct.Data) {
				return nil
			}
			rec, err := sharestorage.DecodeSplShareStorage(acct.Data)
			if err != nil {
				return err
			}
			if rec.Admin == admin {
				out = append(out, SplStorageEntry{Address: addr, Record: rec})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// shared helpers
// ---------------------------------------------------------------------------

func loadShareStorage(tx ledger.StateTx, addr pubkey.PubKey) (*sharestorage.ShareStorage, error) {
	acct, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", sharestorage.ErrStorageNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return sharestorage.DecodeShareStorage(acct.Data)
}

func loadSplShareStorage(tx ledger.StateTx, addr pubkey.PubKey) (*sharestorage.SplShareStorage, error) {
	acct, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", sharestorage.ErrStorageNotFound, addr)
	}
	if err != nil {
		return nil, err
	}
	return sharestorage.DecodeSplShareStorage(acct.Data)
}

// rejectSelfHolder refuses a holder list naming the record's own address.
// Such a holder would pass the positional check and then self-transfer,
// which moves nothing while still counting toward TotalDistributed.
func rejectSelfHolder(storage pubkey.PubKey, holders []sharestorage.ShareHolder) error {
	for _, h := range holders {
		if h.Pubkey == storage {
			return fmt.Errorf("%w: holder %s is the storage record itself", sharestorage.ErrInvalidHolderAccount, h.Pubkey)
		}
	}
	return nil
}

// saveRecordData re-encodes a record into its account, preserving the
// account's lamport balance.
func saveRecordData(tx ledger.StateTx, addr pubkey.PubKey, data []byte) error {
	acct, err := tx.Account(addr)
	if err != nil {
		return err
	}
	acct.Data = data
	return tx.PutAccount(addr, acct)
}

// translateLedgerErr maps ledger-level failures onto the operation error
// taxonomy; anything else passes through unchanged.
func translateLedgerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fmt.Errorf("%w: %w", sharestorage.ErrInsufficientFunds, err)
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return fmt.Errorf("%w: %w", sharestorage.ErrArithmeticOverflow, err)
	default:
		return err
	}
}
