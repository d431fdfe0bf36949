package ledger

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roguzh/solana-share-storage/pubkey"
)

func makeAddr(seed byte) pubkey.PubKey {
	var pk pubkey.PubKey
	for i := range pk {
		pk[i] = seed
	}
	return pk
}

// withStates runs a test against both State implementations.
func withStates(t *testing.T, fn func(t *testing.T, state State)) {
	t.Run("mem", func(t *testing.T) {
		state := NewMemState()
		defer state.Close()
		fn(t, state)
	})
	t.Run("bolt", func(t *testing.T) {
		state, err := OpenBoltState(filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		defer state.Close()
		fn(t, state)
	})
}

// --- Account tests ---

func TestState_AccountRoundTrip(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		addr := makeAddr(0x01)

		err := state.Update(func(tx StateTx) error {
			return tx.PutAccount(addr, &Account{Lamports: 500, Data: []byte{1, 2, 3}})
		})
		require.NoError(t, err)

		err = state.View(func(tx StateTx) error {
			acct, err := tx.Account(addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(500), acct.Lamports)
			assert.Equal(t, []byte{1, 2, 3}, acct.Data)

			exists, err := tx.AccountExists(addr)
			require.NoError(t, err)
			assert.True(t, exists)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestState_AccountNotFound(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		err := state.View(func(tx StateTx) error {
			_, err := tx.Account(makeAddr(0xEE))
			return err
		})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestState_ViewRejectsWrites(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		err := state.View(func(tx StateTx) error {
			return tx.PutAccount(makeAddr(0x01), &Account{})
		})
		assert.ErrorIs(t, err, ErrReadOnlyTx)
	})
}

func TestState_UpdateRollsBackOnError(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		addr := makeAddr(0x01)
		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutAccount(addr, &Account{Lamports: 100})
		}))

		boom := errors.New("boom")
		err := state.Update(func(tx StateTx) error {
			if err := tx.PutAccount(addr, &Account{Lamports: 999}); err != nil {
				return err
			}
			if err := tx.PutAccount(makeAddr(0x02), &Account{Lamports: 1}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		err = state.View(func(tx StateTx) error {
			acct, err := tx.Account(addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), acct.Lamports, "failed update must not commit")

			_, err = tx.Account(makeAddr(0x02))
			assert.ErrorIs(t, err, ErrAccountNotFound)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestState_GetterReturnsCopy(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		addr := makeAddr(0x01)
		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutAccount(addr, &Account{Lamports: 100, Data: []byte{9}})
		}))

		// Mutating a fetched account without PutAccount must not stick.
		require.NoError(t, state.Update(func(tx StateTx) error {
			acct, err := tx.Account(addr)
			if err != nil {
				return err
			}
			acct.Lamports = 0
			acct.Data[0] = 0
			return nil
		}))

		require.NoError(t, state.View(func(tx StateTx) error {
			acct, err := tx.Account(addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), acct.Lamports)
			assert.Equal(t, []byte{9}, acct.Data)
			return nil
		}))
	})
}

func TestState_ForEachAccount(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		require.NoError(t, state.Update(func(tx StateTx) error {
			for seed := byte(1); seed <= 3; seed++ {
				if err := tx.PutAccount(makeAddr(seed), &Account{Lamports: uint64(seed)}); err != nil {
					return err
				}
			}
			return nil
		}))

		seen := make(map[pubkey.PubKey]uint64)
		require.NoError(t, state.View(func(tx StateTx) error {
			return tx.ForEachAccount(func(addr pubkey.PubKey, acct *Account) error {
				seen[addr] = acct.Lamports
				return nil
			})
		}))
		assert.Len(t, seen, 3)
		assert.Equal(t, uint64(2), seen[makeAddr(2)])
	})
}

// --- Mint and token account tests ---

func TestState_TokenEntities(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		mintAddr := makeAddr(0x10)
		acctAddr := makeAddr(0x11)
		owner := makeAddr(0x12)

		require.NoError(t, state.Update(func(tx StateTx) error {
			if err := tx.PutMint(mintAddr, &Mint{Authority: owner, Decimals: 6}); err != nil {
				return err
			}
			return tx.PutTokenAccount(acctAddr, &TokenAccount{Mint: mintAddr, Owner: owner})
		}))

		require.NoError(t, state.View(func(tx StateTx) error {
			mint, err := tx.Mint(mintAddr)
			require.NoError(t, err)
			assert.Equal(t, uint8(6), mint.Decimals)

			acct, err := tx.TokenAccount(acctAddr)
			require.NoError(t, err)
			assert.Equal(t, mintAddr, acct.Mint)
			assert.Equal(t, owner, acct.Owner)

			_, err = tx.Mint(makeAddr(0xEF))
			assert.ErrorIs(t, err, ErrMintNotFound)
			_, err = tx.TokenAccount(makeAddr(0xEF))
			assert.ErrorIs(t, err, ErrTokenAccountNotFound)
			return nil
		}))
	})
}

// --- Transfer tests ---

func TestTransferLamports(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		from := makeAddr(0x01)
		to := makeAddr(0x02)

		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutAccount(from, &Account{Lamports: 1000})
		}))

		require.NoError(t, state.Update(func(tx StateTx) error {
			return TransferLamports(tx, from, to, 300)
		}))

		require.NoError(t, state.View(func(tx StateTx) error {
			src, err := tx.Account(from)
			require.NoError(t, err)
			dst, err := tx.Account(to)
			require.NoError(t, err)
			assert.Equal(t, uint64(700), src.Lamports)
			assert.Equal(t, uint64(300), dst.Lamports)
			return nil
		}))
	})
}

func TestTransferLamports_Insufficient(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		from := makeAddr(0x01)
		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutAccount(from, &Account{Lamports: 10})
		}))

		err := state.Update(func(tx StateTx) error {
			return TransferLamports(tx, from, makeAddr(0x02), 11)
		})
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

func TestTransferLamports_MissingSource(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		err := state.Update(func(tx StateTx) error {
			return TransferLamports(tx, makeAddr(0x01), makeAddr(0x02), 1)
		})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestTransferLamports_CreditOverflow(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		from := makeAddr(0x01)
		to := makeAddr(0x02)
		require.NoError(t, state.Update(func(tx StateTx) error {
			if err := tx.PutAccount(from, &Account{Lamports: 10}); err != nil {
				return err
			}
			return tx.PutAccount(to, &Account{Lamports: math.MaxUint64})
		}))

		err := state.Update(func(tx StateTx) error {
			return TransferLamports(tx, from, to, 1)
		})
		assert.ErrorIs(t, err, ErrBalanceOverflow)
	})
}

func TestTransferLamports_SelfTransferIsNoop(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		addr := makeAddr(0x01)
		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutAccount(addr, &Account{Lamports: 100})
		}))

		require.NoError(t, state.Update(func(tx StateTx) error {
			return TransferLamports(tx, addr, addr, 40)
		}))

		require.NoError(t, state.View(func(tx StateTx) error {
			acct, err := tx.Account(addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(100), acct.Lamports)
			return nil
		}))
	})
}

func TestTransferTokens(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		mintAddr := makeAddr(0x10)
		from := makeAddr(0x11)
		to := makeAddr(0x12)

		require.NoError(t, state.Update(func(tx StateTx) error {
			if err := tx.PutMint(mintAddr, &Mint{Decimals: 6}); err != nil {
				return err
			}
			if err := tx.PutTokenAccount(from, &TokenAccount{Mint: mintAddr, Amount: 0}); err != nil {
				return err
			}
			if err := tx.PutTokenAccount(to, &TokenAccount{Mint: mintAddr}); err != nil {
				return err
			}
			return MintTo(tx, mintAddr, from, 1000)
		}))

		require.NoError(t, state.Update(func(tx StateTx) error {
			return TransferTokens(tx, from, to, 250)
		}))

		require.NoError(t, state.View(func(tx StateTx) error {
			src, err := tx.TokenAccount(from)
			require.NoError(t, err)
			dst, err := tx.TokenAccount(to)
			require.NoError(t, err)
			assert.Equal(t, uint64(750), src.Amount)
			assert.Equal(t, uint64(250), dst.Amount)

			mint, err := tx.Mint(mintAddr)
			require.NoError(t, err)
			assert.Equal(t, uint64(1000), mint.Supply)
			return nil
		}))
	})
}

func TestTransferTokens_MintMismatch(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		from := makeAddr(0x11)
		to := makeAddr(0x12)
		require.NoError(t, state.Update(func(tx StateTx) error {
			if err := tx.PutTokenAccount(from, &TokenAccount{Mint: makeAddr(0x10), Amount: 10}); err != nil {
				return err
			}
			return tx.PutTokenAccount(to, &TokenAccount{Mint: makeAddr(0x20)})
		}))

		err := state.Update(func(tx StateTx) error {
			return TransferTokens(tx, from, to, 1)
		})
		assert.ErrorIs(t, err, ErrMintMismatch)
	})
}

func TestTransferTokens_MissingDestination(t *testing.T) {
	withStates(t, func(t *testing.T, state State) {
		from := makeAddr(0x11)
		require.NoError(t, state.Update(func(tx StateTx) error {
			return tx.PutTokenAccount(from, &TokenAccount{Mint: makeAddr(0x10), Amount: 10})
		}))

		err := state.Update(func(tx StateTx) error {
			return TransferTokens(tx, from, makeAddr(0x12), 1)
		})
		assert.ErrorIs(t, err, ErrTokenAccountNotFound)
	})
}

// --- Rent tests ---

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(128*3480*2), MinimumBalance(0))
	assert.Equal(t, uint64((128+100)*3480*2), MinimumBalance(100))
	// Monotone in data length.
	assert.Less(t, MinimumBalance(10), MinimumBalance(11))
}

// --- Persistence test (bolt only) ---

func TestBoltState_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	addr := makeAddr(0x01)

	state, err := OpenBoltState(path)
	require.NoError(t, err)
	require.NoError(t, state.Update(func(tx StateTx) error {
		return tx.PutAccount(addr, &Account{Lamports: 42, Data: []byte("rec")})
	}))
	require.NoError(t, state.Close())

	state, err = OpenBoltState(path)
	require.NoError(t, err)
	defer state.Close()

	require.NoError(t, state.View(func(tx StateTx) error {
		acct, err := tx.Account(addr)
		require.NoError(t, err)
		assert.Equal(t, uint64(42), acct.Lamports)
		assert.Equal(t, []byte("rec"), acct.Data)
		return nil
	}))
}
