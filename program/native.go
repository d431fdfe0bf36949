package program

import (
	"fmt"

	"github.com/roguzh/solana-share-storage/ledger"
	"github.com/roguzh/solana-share-storage/pubkey"
	"github.com/roguzh/solana-share-storage/sharestorage"
)

// InitializeShareStorage creates a native share storage record named name,
// administered by admin, at its derived address. The admin account funds
// the record's rent-exempt floor. Returns the record address.
func (p *Program) InitializeShareStorage(admin pubkey.PubKey, name string) (pubkey.PubKey, error) {
	if err := sharestorage.ValidateName(name); err != nil {
		return pubkey.Zero, err
	}
	addr, _, err := pubkey.DeriveShareStorage(admin, name)
	if err != nil {
		return pubkey.Zero, err
	}

	rec := &sharestorage.ShareStorage{
		Admin:   admin,
		Name:    name,
		Enabled: true,
	}
	data, err := sharestorage.EncodeShareStorage(rec)
	if err != nil {
		return pubkey.Zero, err
	}

	err = p.state.Update(func(tx ledger.StateTx) error {
		exists, err := tx.AccountExists(addr)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", sharestorage.ErrStorageExists, name)
		}

		// The record account must open rent-exempt; the admin pays.
		rent := ledger.MinimumBalance(len(data))
		if err := translateLedgerErr(ledger.TransferLamports(tx, admin, addr, rent)); err != nil {
			return err
		}
		return saveRecordData(tx, addr, data)
	})
	if err != nil {
		return pubkey.Zero, err
	}
	return addr, nil
}

// SetHolders replaces the record's entire holder configuration after
// validation. Admin only. Rejection leaves the prior configuration
// untouched. A holder naming the record's own address is rejected: a
// self-transfer moves nothing, so counting it would inflate
// TotalDistributed past what actually left the account.
func (p *Program) SetHolders(signer, storage pubkey.PubKey, holders []sharestorage.ShareHolder) error {
	if err := sharestorage.ValidateHolders(holders); err != nil {
		return err
	}
	if err := rejectSelfHolder(storage, holders); err != nil {
		return err
	}

	return p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.IsAdmin(signer) {
			return fmt.Errorf("%w: signer %s", sharestorage.ErrUnauthorized, signer)
		}

		rec.Holders = append([]sharestorage.ShareHolder(nil), holders...)
		data, err := sharestorage.EncodeShareStorage(rec)
		if err != nil {
			return err
		}
		return saveRecordData(tx, storage, data)
	})
}

// EnableShareStorage re-enables distribution for the record. Admin only.
func (p *Program) EnableShareStorage(signer, storage pubkey.PubKey) error {
	return p.setEnabled(signer, storage, true)
}

// DisableShareStorage halts distribution for the record. Admin only.
func (p *Program) DisableShareStorage(signer, storage pubkey.PubKey) error {
	return p.setEnabled(signer, storage, false)
}

func (p *Program) setEnabled(signer, storage pubkey.PubKey, enabled bool) error {
	return p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.IsAdmin(signer) {
			return fmt.Errorf("%w: signer %s", sharestorage.ErrUnauthorized, signer)
		}

		rec.Enabled = enabled
		data, err := sharestorage.EncodeShareStorage(rec)
		if err != nil {
			return err
		}
		return saveRecordData(tx, storage, data)
	})
}

// DepositFunds credits amount lamports from depositor to the storage
// record. Anyone may deposit.
func (p *Program) DepositFunds(depositor, storage pubkey.PubKey, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: deposit must be positive", sharestorage.ErrInvalidAmount)
	}

	return p.state.Update(func(tx ledger.StateTx) error {
		if _, err := loadShareStorage(tx, storage); err != nil {
			return err
		}
		return translateLedgerErr(ledger.TransferLamports(tx, depositor, storage, amount))
	})
}

// DistributeShare splits the record's distributable balance among its
// configured holders and updates the cumulative bookkeeping. Anyone may
// trigger it. holderAccounts must list one recipient per configured
// holder, in configuration order; any mismatch aborts before funds move.
//
// The distributable balance is the record balance above its rent-exempt
// floor. Flooring leaves a remainder of at most len(holders)-1 lamports in
// the record; it is carried into the next distribution, never dropped. A
// zero distributable balance succeeds as a no-op without touching the
// bookkeeping. Returns the total amount paid out.
func (p *Program) DistributeShare(storage pubkey.PubKey, holderAccounts []pubkey.PubKey) (uint64, error) {
	var paid uint64
	err := p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.Enabled {
			return sharestorage.ErrShareStorageDisabled
		}
		if len(rec.Holders) == 0 {
			return sharestorage.ErrNoHolders
		}
		if len(holderAccounts) != len(rec.Holders) {
			return fmt.Errorf("%w: got %d, want %d", sharestorage.ErrInvalidHolderAccounts, len(holderAccounts), len(rec.Holders))
		}
		for i, h := range rec.Holders {
			if holderAccounts[i] != h.Pubkey {
				return fmt.Errorf("%w: position %d", sharestorage.ErrInvalidHolderAccount, i)
			}
		}

		acct, err := tx.Account(storage)
		if err != nil {
			return err
		}
		reserve := ledger.MinimumBalance(len(acct.Data))
		if acct.Lamports <= reserve {
			return nil // nothing distributable
		}
		distributable := acct.Lamports - reserve

		for i, h := range rec.Holders {
			amount := shareAmount(distributable, h.ShareBasisPoints)
			if amount == 0 {
				continue
			}
			if err := translateLedgerErr(ledger.TransferLamports(tx, storage, holderAccounts[i], amount)); err != nil {
				return err
			}
			if paid, err = checkedAdd(paid, amount); err != nil {
				return err
			}
		}
		if paid == 0 {
			return nil
		}

		if rec.TotalDistributed, err = checkedAdd(rec.TotalDistributed, paid); err != nil {
			return err
		}
		rec.LastDistributedAt = p.now().Unix()

		data, err := sharestorage.EncodeShareStorage(rec)
		if err != nil {
			return err
		}
		return saveRecordData(tx, storage, data)
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}
