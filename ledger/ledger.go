// Package ledger provides the account substrate the share storage program
// runs against: native-balance accounts with opaque data, token mints,
// token accounts, the rent-exempt balance floor, and atomic read-modify-
// write transactions.
//
// Two State implementations are provided: MemState for tests and embedded
// use, and BoltState for durable single-node deployments. Both guarantee
// that an Update either commits every staged write or none of them, which
// is the atomicity the program layer relies on.
package ledger

import "github.com/roguzh/solana-share-storage/pubkey"

// Account is a native-asset account: a lamport balance plus opaque
// program-owned data.
type Account struct {
	Lamports uint64
	Data     []byte
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	cpy := &Account{Lamports: a.Lamports}
	if a.Data != nil {
		cpy.Data = make([]byte, len(a.Data))
		copy(cpy.Data, a.Data)
	}
	return cpy
}

// Mint describes a fungible token class.
type Mint struct {
	Authority pubkey.PubKey
	Supply    uint64
	Decimals  uint8
}

// TokenAccount holds a balance of a single mint on behalf of an owner.
// Token balances live in per-mint accounts, never in the owner's native
// account.
type TokenAccount struct {
	Mint   pubkey.PubKey
	Owner  pubkey.PubKey
	Amount uint64
}

// StateTx is the transactional view an operation works through. Entity
// getters return the package's NotFound sentinels; setters fail with
// ErrReadOnlyTx inside a View.
type StateTx interface {
	// Account returns the native account at addr.
	Account(addr pubkey.PubKey) (*Account, error)

	// PutAccount stores the native account at addr, replacing any
	// previous value.
	PutAccount(addr pubkey.PubKey, acct *Account) error

	// AccountExists reports whether a native account exists at addr.
	AccountExists(addr pubkey.PubKey) (bool, error)

	// ForEachAccount visits every native account. Iteration order is
	// unspecified. Returning an error from fn aborts the walk.
	ForEachAccount(fn func(addr pubkey.PubKey, acct *Account) error) error

	// Mint returns the mint registered at addr.
	Mint(addr pubkey.PubKey) (*Mint, error)

	// PutMint stores the mint at addr.
	PutMint(addr pubkey.PubKey, mint *Mint) error

	// TokenAccount returns the token account at addr.
	TokenAccount(addr pubkey.PubKey) (*TokenAccount, error)

	// PutTokenAccount stores the token account at addr.
	PutTokenAccount(addr pubkey.PubKey, acct *TokenAccount) error
}

// State is an atomic ledger state store. Operations against a single State
// are serialized; distinct States are fully independent.
type State interface {
	// View runs fn with read-only access to a consistent snapshot.
	View(fn func(StateTx) error) error

	// Update runs fn with read-write access. If fn returns an error,
	// every write staged inside it is discarded.
	Update(fn func(StateTx) error) error

	// Close releases underlying resources.
	Close() error
}
