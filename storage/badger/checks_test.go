package badger_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module/metrics"
	"github.com/tapnet/tap-core/storage"
	badgerstorage "github.com/tapnet/tap-core/storage/badger"
	"github.com/tapnet/tap-core/utils/unittest"
)

// cacheMetrics records cache hits and misses.
type cacheMetrics struct {
	mock.Mock
}

func (c *cacheMetrics) CacheHit(resource string)  { c.Called(resource) }
func (c *cacheMetrics) CacheMiss(resource string) { c.Called(resource) }

func TestAllocations(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		allocations := badgerstorage.NewAllocations(metrics.NewNoopCollector(), db)
		allocationID := unittest.AddressFixture()

		open, err := allocations.IsOpen(allocationID)
		require.NoError(t, err)
		require.False(t, open)

		require.NoError(t, allocations.Store(allocationID, true))
		open, err = allocations.IsOpen(allocationID)
		require.NoError(t, err)
		require.True(t, open)

		require.NoError(t, allocations.Store(allocationID, false))
		open, err = allocations.IsOpen(allocationID)
		require.NoError(t, err)
		require.False(t, open)

		// a fresh instance reads through to the database
		reopened := badgerstorage.NewAllocations(metrics.NewNoopCollector(), db)
		open, err = reopened.IsOpen(allocationID)
		require.NoError(t, err)
		require.False(t, open)
	})
}

func TestSenders(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		senders := badgerstorage.NewSenders(db)
		sender := unittest.AddressFixture()

		authorized, err := senders.IsAuthorized(sender)
		require.NoError(t, err)
		require.False(t, authorized)

		require.NoError(t, senders.Authorize(sender))
		require.NoError(t, senders.Authorize(sender))
		authorized, err = senders.IsAuthorized(sender)
		require.NoError(t, err)
		require.True(t, authorized)

		require.NoError(t, senders.Revoke(sender))
		require.NoError(t, senders.Revoke(sender))
		authorized, err = senders.IsAuthorized(sender)
		require.NoError(t, err)
		require.False(t, authorized)
	})
}

func TestAppraisals(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		collector := &cacheMetrics{}
		collector.On("CacheMiss", metrics.ResourceAppraisal).Once()
		collector.On("CacheHit", metrics.ResourceAppraisal).Twice()

		appraisals := badgerstorage.NewAppraisals(collector, db, 10)
		queryID := tap.ReceiptID{0x01}

		_, err := appraisals.ByQueryID(queryID)
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, appraisals.Store(queryID, *uint256.NewInt(25)))
		err = appraisals.Store(queryID, *uint256.NewInt(30))
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		for i := 0; i < 2; i++ {
			value, err := appraisals.ByQueryID(queryID)
			require.NoError(t, err)
			require.Equal(t, uint64(25), value.Uint64())
		}
		collector.AssertExpectations(t)
	})
}

func TestRAVs(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		ravs := badgerstorage.NewRAVs(db)
		domain := unittest.DomainFixture()
		key := unittest.KeyFixture()
		allocationID := unittest.AddressFixture()

		_, err := ravs.ByAllocationID(allocationID)
		require.ErrorIs(t, err, storage.ErrNotFound)

		signed, err := tap.SignRAV(domain, unittest.RAVFixture(allocationID, 100, 1000), key)
		require.NoError(t, err)
		require.NoError(t, ravs.Store(signed))

		stored, err := ravs.ByAllocationID(allocationID)
		require.NoError(t, err)
		require.True(t, signed.Message.Equal(stored.Message))
		require.Equal(t, signed.Signature, stored.Signature)
	})
}

func TestAppraisalsZeroCacheLimit(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		require.Panics(t, func() {
			badgerstorage.NewAppraisals(metrics.NewNoopCollector(), db, 0)
		})
	})
}
