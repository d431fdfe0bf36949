package ledger

import (
	"fmt"
	"math"

	"github.com/roguzh/solana-share-storage/pubkey"
)

// TransferLamports moves amount from one native account to another within
// a transaction. The destination account is created if it does not exist.
// A zero amount is a no-op.
func TransferLamports(tx StateTx, from, to pubkey.PubKey, amount uint64) error {
	if amount == 0 {
		return nil
	}

	src, err := tx.Account(from)
	if err != nil {
		return fmt.Errorf("source %s: %w", from, err)
	}
	if src.Lamports < amount {
		return fmt.Errorf("%w: %s holds %d, need %d", ErrInsufficientFunds, from, src.Lamports, amount)
	}
	if from == to {
		return nil
	}

	dst, err := tx.Account(to)
	if err == nil {
		if dst.Lamports > math.MaxUint64-amount {
			return fmt.Errorf("%w: crediting %s", ErrBalanceOverflow, to)
		}
	} else {
		dst = &Account{}
	}

	src.Lamports -= amount
	dst.Lamports += amount

	if err := tx.PutAccount(from, src); err != nil {
		return err
	}
	return tx.PutAccount(to, dst)
}

// TransferTokens moves amount between two existing token accounts of the
// same mint. A zero amount is a no-op.
func TransferTokens(tx StateTx, from, to pubkey.PubKey, amount uint64) error {
	if amount == 0 {
		return nil
	}

	src, err := tx.TokenAccount(from)
	if err != nil {
		return fmt.Errorf("source %s: %w", from, err)
	}
	dst, err := tx.TokenAccount(to)
	if err != nil {
		return fmt.Errorf("destination %s: %w", to, err)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %s vs %s", ErrMintMismatch, src.Mint, dst.Mint)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %s holds %d, need %d", ErrInsufficientFunds, from, src.Amount, amount)
	}
	if from == to {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: crediting %s", ErrBalanceOverflow, to)
	}

	src.Amount -= amount
	dst.Amount += amount

	if err := tx.PutTokenAccount(from, src); err != nil {
		return err
	}
	return tx.PutTokenAccount(to, dst)
}

// MintTo issues amount new tokens of mint to the token account at dest,
// growing the mint supply. Used to seed balances; the share storage
// program itself never mints.
func MintTo(tx StateTx, mintAddr, dest pubkey.PubKey, amount uint64) error {
	mint, err := tx.Mint(mintAddr)
	if err != nil {
		return err
	}
	acct, err := tx.TokenAccount(dest)
	if err != nil {
		return err
	}
	if acct.Mint != mintAddr {
		return fmt.Errorf("%w: account holds %s", ErrMintMismatch, acct.Mint)
	}
	if mint.Supply > math.MaxUint64-amount || acct.Amount > math.MaxUint64-amount {
		return fmt.Errorf("%w: minting %d", ErrBalanceOverflow, amount)
	}

	mint.Supply += amount
	acct.Amount += amount

	if err := tx.PutMint(mintAddr, mint); err != nil {
		return err
	}
	return tx.PutTokenAccount(dest, acct)
}
