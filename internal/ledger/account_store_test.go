package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketbank/backend/internal/models"
)

func TestAccountStore_Open(t *testing.T) {
	store := NewAccountStore()

	t.Run("creates active account with zero balance", func(t *testing.T) {
		acct, err := store.Open("acct-1", "user-1", "Checking", "usd")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", acct.ID)
		assert.Equal(t, "user-1", acct.OwnerUserID)
		assert.Equal(t, int64(0), acct.Balance)
		assert.Equal(t, models.AccountStatusActive, acct.Status)
		assert.Equal(t, "USD", acct.Currency)
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		_, err := store.Open("acct-1", "user-2", "Other", "USD")
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		cases := []struct {
			name                              string
			id, owner, displayName, currency string
		}{
			{"empty id", "", "user-1", "Checking", "USD"},
			{"empty owner", "acct-2", "", "Checking", "USD"},
			{"empty display name", "acct-2", "user-1", "", "USD"},
			{"empty currency", "acct-2", "user-1", "Checking", ""},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := store.Open(tc.id, tc.owner, tc.displayName, tc.currency)
				assert.True(t, IsInvalidArgument(err))
			})
		}
	})
}

func TestAccountStore_Get(t *testing.T) {
	store := NewAccountStore()
	_, err := store.Open("acct-1", "user-1", "Checking", "USD")
	require.NoError(t, err)

	t.Run("existing account", func(t *testing.T) {
		acct, err := store.Get("acct-1")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", acct.ID)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.Get("nope")
		assert.True(t, IsNotFound(err))
	})
}

func TestAccountStore_List(t *testing.T) {
	store := NewAccountStore()
	for _, id := range []string{"c", "a", "b"} {
		_, err := store.Open(id, "user-1", "Account "+id, "USD")
		require.NoError(t, err)
	}

	accounts := store.List()
	require.Len(t, accounts, 3)
	// Insertion order, not lexicographic.
	assert.Equal(t, "c", accounts[0].ID)
	assert.Equal(t, "a", accounts[1].ID)
	assert.Equal(t, "b", accounts[2].ID)
}

func TestAccountStore_AdjustBalance(t *testing.T) {
	store := NewAccountStore()
	_, err := store.Open("acct-1", "user-1", "Checking", "USD")
	require.NoError(t, err)

	t.Run("credit then debit", func(t *testing.T) {
		balance, err := store.AdjustBalance("acct-1", 500, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(500), balance)

		balance, err = store.AdjustBalance("acct-1", -200, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(300), balance)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := store.AdjustBalance("acct-1", -400, 0)
		assert.True(t, IsInsufficientFunds(err))

		acct, err := store.Get("acct-1")
		require.NoError(t, err)
		assert.Equal(t, int64(300), acct.Balance, "failed adjust must not move the balance")
	})

	t.Run("negative floor allows overdraft", func(t *testing.T) {
		balance, err := store.AdjustBalance("acct-1", -400, -1000)
		require.NoError(t, err)
		assert.Equal(t, int64(-100), balance)

		_, err = store.AdjustBalance("acct-1", 100, 0)
		require.NoError(t, err)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.AdjustBalance("nope", 100, 0)
		assert.True(t, IsNotFound(err))
	})
}

func TestAccountStore_CloseAndHalt(t *testing.T) {
	store := NewAccountStore()

	t.Run("closed account behaves as missing for adjustments", func(t *testing.T) {
		_, err := store.Open("acct-1", "user-1", "Checking", "USD")
		require.NoError(t, err)
		require.NoError(t, store.Close("acct-1"))

		_, err = store.AdjustBalance("acct-1", 100, 0)
		assert.True(t, IsNotFound(err))

		// Still readable: history stays resolvable.
		acct, err := store.Get("acct-1")
		require.NoError(t, err)
		assert.Equal(t, models.AccountStatusClosed, acct.Status)
	})

	t.Run("halted account refuses all movement", func(t *testing.T) {
		_, err := store.Open("acct-2", "user-1", "Savings", "USD")
		require.NoError(t, err)
		require.NoError(t, store.Halt("acct-2"))

		_, err = store.AdjustBalance("acct-2", 100, 0)
		assert.ErrorIs(t, err, ErrAccountHalted)

		err = store.Close("acct-2")
		assert.ErrorIs(t, err, ErrAccountHalted)
	})

	t.Run("close missing account", func(t *testing.T) {
		assert.True(t, IsNotFound(store.Close("nope")))
	})
}
