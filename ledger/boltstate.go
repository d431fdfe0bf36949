package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/roguzh/solana-share-storage/pubkey"
)

var (
	bucketAccounts      = []byte("accounts")
	bucketMints         = []byte("mints")
	bucketTokenAccounts = []byte("token_accounts")
)

// BoltState is a State persisted in a bbolt database. bbolt's transactions
// provide the all-or-nothing commit the program layer requires.
type BoltState struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ State = (*BoltState)(nil)

// OpenBoltState opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltState(dbPath string) (*BoltState, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("ledger: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAccounts, bucketMints, bucketTokenAccounts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: create buckets: %w", err)
	}

	return &BoltState{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltState) Close() error { return s.db.Close() }

// View runs fn against a read-only bolt transaction.
func (s *BoltState) View(fn func(StateTx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx})
	})
}

// Update runs fn against a writable bolt transaction; bbolt rolls back all
// writes if fn returns an error.
func (s *BoltState) Update(fn func(StateTx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&boltTx{tx: btx, writable: true})
	})
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// boltTx adapts a bbolt transaction to the StateTx interface.
type boltTx struct {
	tx       *bbolt.Tx
	writable bool
}

func (tx *boltTx) Account(addr pubkey.PubKey) (*Account, error) {
	data := tx.tx.Bucket(bucketAccounts).Get(addr[:])
	if data == nil {
		return nil, ErrAccountNotFound
	}
	var acct Account
	if err := decodeGob(data, &acct); err != nil {
		return nil, fmt.Errorf("ledger: decode account: %w", err)
	}
	return &acct, nil
}

func (tx *boltTx) PutAccount(addr pubkey.PubKey, acct *Account) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if acct == nil {
		return ErrNilEntity
	}
	data, err := encodeGob(acct)
	if err != nil {
		return fmt.Errorf("ledger: encode account: %w", err)
	}
	return tx.tx.Bucket(bucketAccounts).Put(addr[:], data)
}

func (tx *boltTx) AccountExists(addr pubkey.PubKey) (bool, error) {
	return tx.tx.Bucket(bucketAccounts).Get(addr[:]) != nil, nil
}

func (tx *boltTx) ForEachAccount(fn func(pubkey.PubKey, *Account) error) error {
	return tx.tx.Bucket(bucketAccounts).ForEach(func(k, v []byte) error {
		addr, err := pubkey.FromBytes(k)
		if err != nil {
			return fmt.Errorf("ledger: malformed account key: %w", err)
		}
		var acct Account
		if err := decodeGob(v, &acct); err != nil {
			return fmt.Errorf("ledger: decode account in walk: %w", err)
		}
		return fn(addr, &acct)
	})
}

func (tx *boltTx) Mint(addr pubkey.PubKey) (*Mint, error) {
	data := tx.tx.Bucket(bucketMints).Get(addr[:])
	if data == nil {
		return nil, ErrMintNotFound
	}
	var mint Mint
	if err := decodeGob(data, &mint); err != nil {
		return nil, fmt.Errorf("ledger: decode mint: %w", err)
	}
	return &mint, nil
}

func (tx *boltTx) PutMint(addr pubkey.PubKey, mint *Mint) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if mint == nil {
		return ErrNilEntity
	}
	data, err := encodeGob(mint)
	if err != nil {
		return fmt.Errorf("ledger: encode mint: %w", err)
	}
	return tx.tx.Bucket(bucketMints).Put(addr[:], data)
}

func (tx *boltTx) TokenAccount(addr pubkey.PubKey) (*TokenAccount, error) {
	data := tx.tx.Bucket(bucketTokenAccounts).Get(addr[:])
	if data == nil {
		return nil, ErrTokenAccountNotFound
	}
	var acct TokenAccount
	if err := decodeGob(data, &acct); err != nil {
		return nil, fmt.Errorf("ledger: decode token account: %w", err)
	}
	return &acct, nil
}

func (tx *boltTx) PutTokenAccount(addr pubkey.PubKey, acct *TokenAccount) error {
	if !tx.writable {
		return ErrReadOnlyTx
	}
	if acct == nil {
		return ErrNilEntity
	}
	data, err := encodeGob(acct)
	if err != nil {
		return fmt.Errorf("ledger: encode token account: %w", err)
	}
	return tx.tx.Bucket(bucketTokenAccounts).Put(addr[:], data)
}
