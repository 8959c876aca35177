package badger_test

import (
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/storage"
	badgerstorage "github.com/tapnet/tap-core/storage/badger"
	"github.com/tapnet/tap-core/utils/unittest"
)

func TestReceiptIdentitiesClaim(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		identities := badgerstorage.NewReceiptIdentities(db)
		key := tap.UniqueKey{0x01}
		receiptID := tap.ReceiptID{0x02}

		_, err := identities.Owner(key)
		require.ErrorIs(t, err, storage.ErrNotFound)

		claimed, err := identities.Claim(key, receiptID)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = identities.Claim(key, receiptID)
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = identities.Claim(key, tap.ReceiptID{0x03})
		require.NoError(t, err)
		require.False(t, claimed)

		owner, err := identities.Owner(key)
		require.NoError(t, err)
		require.Equal(t, receiptID, owner)
	})
}

// TestReceiptIdentitiesConcurrentClaims verifies that of many concurrent claims of one identity
// by different receipts exactly one succeeds.
func TestReceiptIdentitiesConcurrentClaims(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		identities := badgerstorage.NewReceiptIdentities(db)
		key := tap.UniqueKey{0x07}

		var wg sync.WaitGroup
		claims := atomic.NewInt32(0)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				claimed, err := identities.Claim(key, tap.ReceiptID{byte(i)})
				require.NoError(t, err)
				if claimed {
					claims.Inc()
				}
			}(i)
		}
		unittest.RequireReturnsBefore(t, wg.Wait, 10*time.Second)
		require.Equal(t, int32(1), claims.Load())
	})
}
