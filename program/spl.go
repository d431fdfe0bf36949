package program

import (
	"errors"
	"fmt"

	"github.com/roguzh/solana-share-storage/ledger"
	"github.com/roguzh/solana-share-storage/pubkey"
	"github.com/roguzh/solana-share-storage/sharestorage"
)

// InitializeSplShareStorage creates an SPL token share storage record for
// the given mint, along with its vault token account. The vault is owned
// by the storage address, so only distribution can move funds out of it.
// Returns the storage and vault addresses.
func (p *Program) InitializeSplShareStorage(admin pubkey.PubKey, name string, mint pubkey.PubKey) (pubkey.PubKey, pubkey.PubKey, error) {
	if err := sharestorage.ValidateName(name); err != nil {
		return pubkey.Zero, pubkey.Zero, err
	}
	addr, _, err := pubkey.DeriveSplShareStorage(admin, name)
	if err != nil {
		return pubkey.Zero, pubkey.Zero, err
	}
	vault, _, err := pubkey.DeriveTokenVault(addr)
	if err != nil {
		return pubkey.Zero, pubkey.Zero, err
	}

	rec := &sharestorage.SplShareStorage{
		Admin:     admin,
		TokenMint: mint,
		Name:      name,
		Enabled:   true,
	}
	data, err := sharestorage.EncodeSplShareStorage(rec)
	if err != nil {
		return pubkey.Zero, pubkey.Zero, err
	}

	err = p.state.Update(func(tx ledger.StateTx) error {
		if _, err := tx.Mint(mint); err != nil {
			if errors.Is(err, ledger.ErrMintNotFound) {
				return fmt.Errorf("%w: %s", sharestorage.ErrInvalidTokenMint, mint)
			}
			return err
		}
		exists, err := tx.AccountExists(addr)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", sharestorage.ErrStorageExists, name)
		}

		rent := ledger.MinimumBalance(len(data))
		if err := translateLedgerErr(ledger.TransferLamports(tx, admin, addr, rent)); err != nil {
			return err
		}
		if err := saveRecordData(tx, addr, data); err != nil {
			return err
		}
		return tx.PutTokenAccount(vault, &ledger.TokenAccount{Mint: mint, Owner: addr})
	})
	if err != nil {
		return pubkey.Zero, pubkey.Zero, err
	}
	return addr, vault, nil
}

// SetSplHolders replaces the SPL record's holder configuration after
// validation. Admin only. A holder naming the record's own address is
// rejected, as in SetHolders.
func (p *Program) SetSplHolders(signer, storage pubkey.PubKey, holders []sharestorage.ShareHolder) error {
	if err := sharestorage.ValidateHolders(holders); err != nil {
		return err
	}
	if err := rejectSelfHolder(storage, holders); err != nil {
		return err
	}

	return p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadSplShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.IsAdmin(signer) {
			return fmt.Errorf("%w: signer %s", sharestorage.ErrUnauthorized, signer)
		}

		rec.Holders = append([]sharestorage.ShareHolder(nil), holders...)
		data, err := sharestorage.EncodeSplShareStorage(rec)
		if err != nil {
			return err
		}
		return saveRecordData(tx, storage, data)
	})
}

// EnableSplShareStorage re-enables distribution for the SPL record. Admin only.
func (p *Program) EnableSplShareStorage(signer, storage pubkey.PubKey) error {
	return p.setSplEnabled(signer, storage, true)
}

// DisableSplShareStorage halts distribution for the SPL record. Admin only.
func (p *Program) DisableSplShareStorage(signer, storage pubkey.PubKey) error {
	return p.setSplEnabled(signer, storage, false)
}

func (p *Program) setSplEnabled(signer, storage pubkey.PubKey, enabled bool) error {
	return p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadSplShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.IsAdmin(signer) {
			return fmt.Errorf("%w: signer %s", sharestorage.ErrUnauthorized, signer)
		}

		rec.Enabled = enabled
		data, err := sharestorage.EncodeSplShareStorage(rec)
		if err != nil {
			return err
		}
		return saveRecordData(tx, storage, data)
	})
}

// DepositTokens moves amount tokens from the signer's token account into
// the storage record's vault. Anyone may deposit their own tokens; the
// source account must belong to the signer and match the record's mint.
func (p *Program) DepositTokens(signer, source, storage pubkey.PubKey, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("%w: deposit must be positive", sharestorage.ErrInvalidAmount)
	}

	return p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadSplShareStorage(tx, storage)
		if err != nil {
			return err
		}
		vault, _, err := pubkey.DeriveTokenVault(storage)
		if err != nil {
			return err
		}

		src, err := tx.TokenAccount(source)
		if err != nil {
			return err
		}
		if src.Owner != signer {
			return fmt.Errorf("%w: source account belongs to %s", sharestorage.ErrUnauthorized, src.Owner)
		}
		if src.Mint != rec.TokenMint {
			return fmt.Errorf("%w: source holds %s", sharestorage.ErrInvalidTokenMint, src.Mint)
		}
		return translateLedgerErr(ledger.TransferTokens(tx, source, vault, amount))
	})
}

// DistributeSplShare splits the record's entire vault balance among its
// configured holders. Anyone may trigger it. holderTokenAccounts must
// list, per configured holder in order, an existing token account owned
// by that holder for the record's mint; any mismatch or missing account
// aborts the whole operation before funds move.
//
// Token accounts carry no rent reserve, so the full vault balance is
// distributable; only the flooring remainder stays behind for the next
// round. Bookkeeping accumulates on the record and on the per-
// (storage, mint) token distribution record, created on first use.
// Returns the total amount paid out.
func (p *Program) DistributeSplShare(storage pubkey.PubKey, holderTokenAccounts []pubkey.PubKey) (uint64, error) {
	var paid uint64
	err := p.state.Update(func(tx ledger.StateTx) error {
		rec, err := loadSplShareStorage(tx, storage)
		if err != nil {
			return err
		}
		if !rec.Enabled {
			return sharestorage.ErrShareStorageDisabled
		}
		if len(rec.Holders) == 0 {
			return sharestorage.ErrNoHolders
		}
		if len(holderTokenAccounts) != len(rec.Holders) {
			return fmt.Errorf("%w: got %d, want %d", sharestorage.ErrInvalidHolderAccounts, len(holderTokenAccounts), len(rec.Holders))
		}

		// Every recipient account must exist, hold the record's mint, and
		// belong to the configured holder at its position -- checked in
		// full before any transfer.
		for i, h := range rec.Holders {
			acct, err := tx.TokenAccount(holderTokenAccounts[i])
			if errors.Is(err, ledger.ErrTokenAccountNotFound) {
				return fmt.Errorf("%w: position %d has no token account", sharestorage.ErrInvalidHolderAccount, i)
			}
			if err != nil {
				return err
			}
			if acct.Mint != rec.TokenMint {
				return fmt.Errorf("%w: position %d holds mint %s", sharestorage.ErrInvalidHolderAccount, i, acct.Mint)
			}
			if acct.Owner != h.Pubkey {
				return fmt.Errorf("%w: position %d owned by %s", sharestorage.ErrInvalidHolderAccount, i, acct.Owner)
			}
		}

		vaultAddr, _, err := pubkey.DeriveTokenVault(storage)
		if err != nil {
			return err
		}
		vault, err := tx.TokenAccount(vaultAddr)
		if err != nil {
			return err
		}
		if vault.Amount == 0 {
			return nil // nothing distributable
		}
		distributable := vault.Amount

		for i, h := range rec.Holders {
			amount := shareAmount(distributable, h.ShareBasisPoints)
			if amount == 0 {
				continue
			}
			if err := translateLedgerErr(ledger.TransferTokens(tx, vaultAddr, holderTokenAccounts[i], amount)); err != nil {
				return err
			}
			if paid, err = checkedAdd(paid, amount); err != nil {
				return err
			}
		}
		if paid == 0 {
			return nil
		}

		now := p.now().Unix()
		if rec.TotalDistributed, err = checkedAdd(rec.TotalDistributed, paid); err != nil {
			return err
		}
		rec.LastDistributedAt = now

		data, err := sharestorage.EncodeSplShareStorage(rec)
		if err != nil {
			return err
		}
		if err := saveRecordData(tx, storage, data); err != nil {
			return err
		}
		return bumpTokenRecord(tx, storage, rec.TokenMint, paid, now)
	})
	if err != nil {
		return 0, err
	}
	return paid, nil
}

// bumpTokenRecord accumulates a payout on the per-(storage, mint)
// bookkeeping record, creating it on first distribution.
func bumpTokenRecord(tx ledger.StateTx, storage, mint pubkey.PubKey, paid uint64, now int64) error {
	addr, _, err := pubkey.DeriveTokenRecord(storage, mint)
	if err != nil {
		return err
	}

	rec := &sharestorage.TokenDistributionRecord{Storage: storage, Mint: mint}
	acct, err := tx.Account(addr)
	switch {
	case err == nil:
		if rec, err = sharestorage.DecodeTokenRecord(acct.Data); err != nil {
			return err
		}
	case errors.Is(err, ledger.ErrAccountNotFound):
		acct = &ledger.Account{}
	default:
		return err
	}

	if rec.TotalDistributed, err = checkedAdd(rec.TotalDistributed, paid); err != nil {
		return err
	}
	rec.LastDistributedAt = now

	acct.Data = sharestorage.EncodeTokenRecord(rec)
	return tx.PutAccount(addr, acct)
}
