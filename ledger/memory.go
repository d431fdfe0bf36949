package ledger

import (
	"sync"

	"github.com/roguzh/solana-share-storage/pubkey"
)

// MemState is an in-memory State. Updates stage writes in an overlay and
// apply them only when the transaction function succeeds, so a failing
// operation never leaves a partial write behind. A single mutex serializes
// transactions, mirroring the per-address serialization the host ledger
// guarantees.
type MemState struct {
	mu            sync.RWMutex
	accounts      map[pubkey.PubKey]*Account
	mints         map[pubkey.PubKey]*Mint
	tokenAccounts map[pubkey.PubKey]*TokenAccount
}

// Compile-time interface check.
var _ State = (*MemState)(nil)

// NewMemState returns an empty in-memory ledger state.
func NewMemState() *MemState {
	return &MemState{
		accounts:      make(map[pubkey.PubKey]*Account),
		mints:         make(map[pubkey.PubKey]*Mint),
		tokenAccounts: make(map[pubkey.PubKey]*TokenAccount),
	}
}

// View runs fn against a read-only transaction.
func (s *MemState) View(fn func(StateTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{state: s})
}

// Update runs fn against a writable transaction and commits its staged
// writes if fn returns nil.
func (s *MemState) Update(fn func(StateTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		state:         s,
		writable:      true,
		accounts:      make(map[pubkey.PubKey]*Account),
		mints:         make(map[pubkey.PubKey]*Mint),
		tokenAccounts: make(map[pubkey.PubKey]*TokenAccount),
	}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Close is a no-op for the in-memory state.
func (s *MemState) Close() error { return nil }

// memTx overlays staged writes on top of the committed maps. Getters
// return copies so that mutations by the transaction function are never
// observable unless written back with a Put.
type memTx struct {
	state         *MemState
	writable      bool
	accounts      map[pubkey.PubKey]*Account
	mints         map[pubkey.PubKey]*Mint
	tokenAccounts map[pubkey.PubKey]*TokenAccount
}

func (tx *memTx) commit() {
	for addr, acct := range tx.accounts {
		tx.state.accounts[addr] = acct
	}
	for addr, mint := range tx.mints {
		tx.state.mints[addr] = mint
	}
	for addr, acct := range tx.tokenAccounts {
		tx.state.tokenAccounts[addr] = acct
	}
}

func (tx *memTx) Account(addr pubkey.PubKey) (*Account, error) {
	if acct, ok := tx.accounts[addr]; ok {
		return acct.Clone(), nil
	}
	if acct, ok := tx.state.accounts[addr]; ok {
		return acct.Clone(), nil
	}
	return nil, ErrAccountNotFound
}

func (tx *memTx) PutAccount(addr pubkey.PubKey, acct *Account) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if acct == nil {
		return ErrNilEntity
	}
	tx.accounts[addr] = acct.Clone()
	return nil
}

func (tx *memTx) AccountExists(addr pubkey.PubKey) (bool, error) {
	if _, ok := tx.accounts[addr]; ok {
		return true, nil
	}
	_, ok := tx.state.accounts[addr]
	return ok, nil
}

func (tx *memTx) ForEachAccount(fn func(pubkey.PubKey, *Account) error) error {
	for addr, acct := range tx.state.accounts {
		if staged, ok := tx.accounts[addr]; ok {
			acct = staged
		}
		if err := fn(addr, acct.Clone()); err != nil {
			return err
		}
	}
	for addr, acct := range tx.accounts {
		if _, ok := tx.state.accounts[addr]; ok {
			continue // already visited
		}
		if err := fn(addr, acct.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (tx *memTx) Mint(addr pubkey.PubKey) (*Mint, error) {
	if mint, ok := tx.mints[addr]; ok {
		cpy := *mint
		return &cpy, nil
	}
	if mint, ok := tx.state.mints[addr]; ok {
		cpy := *mint
		return &cpy, nil
	}
	return nil, ErrMintNotFound
}

func (tx *memTx) PutMint(addr pubkey.PubKey, mint *Mint) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if mint == nil {
		return ErrNilEntity
	}
	cpy := *mint
	tx.mints[addr] = &cpy
	return nil
}

func (tx *memTx) TokenAccount(addr pubkey.PubKey) (*TokenAccount, error) {
	if acct, ok := tx.tokenAccounts[addr]; ok {
		cpy := *acct
		return &cpy, nil
	}
	if acct, ok := tx.state.tokenAccounts[addr]; ok {
		cpy := *acct
		return &cpy, nil
	}
	return nil, ErrTokenAccountNotFound
}

func (tx *memTx) PutTokenAccount(addr pubkey.PubKey, acct *TokenAccount) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if acct == nil {
		return ErrNilEntity
	}
	cpy := *acct
	tx.tokenAccounts[addr] = &cpy
	return nil
}
