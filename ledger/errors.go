package ledger

import "errors"

var (
	// ErrAccountNotFound indicates no native account exists at the address.
	ErrAccountNotFound = errors.New("ledger: account not found")

	// ErrMintNotFound indicates no mint is registered at the address.
	ErrMintNotFound = errors.New("ledger: mint not found")

	// ErrTokenAccountNotFound indicates no token account exists at the address.
	ErrTokenAccountNotFound = errors.New("ledger: token account not found")

	// ErrInsufficientFunds indicates a transfer exceeds the source balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrBalanceOverflow indicates a credit would overflow a uint64 balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")

	// ErrMintMismatch indicates a token transfer between accounts of
	// different mints.
	ErrMintMismatch = errors.New("ledger: token account mint mismatch")

	// ErrReadOnlyTx indicates a write inside a View transaction.
	ErrReadOnlyTx = errors.New("ledger: transaction is read-only")

	// ErrNilEntity indicates a nil account, mint, or token account was
	// passed to a setter.
	ErrNilEntity = errors.New("ledger: nil entity")
)
