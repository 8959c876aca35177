package checks_test

import (
	"context"
	"crypto/ecdsa"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module/checks"
	"github.com/tapnet/tap-core/module/metrics"
	"github.com/tapnet/tap-core/module/receipt"
	badgerstorage "github.com/tapnet/tap-core/storage/badger"
	"github.com/tapnet/tap-core/utils/unittest"
)

type fixture struct {
	domain      eip712.Domain
	key         *ecdsa.PrivateKey
	allocation  common.Address
	senders     *badgerstorage.Senders
	allocations *badgerstorage.Allocations
	appraisals  *badgerstorage.Appraisals
	adapter     *checks.Adapter
}

func withAdapter(t *testing.T, f func(*fixture)) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		fx := &fixture{
			domain:      unittest.DomainFixture(),
			key:         unittest.KeyFixture(),
			allocation:  unittest.AddressFixture(),
			senders:     badgerstorage.NewSenders(db),
			allocations: badgerstorage.NewAllocations(metrics.NewNoopCollector(), db),
			appraisals:  badgerstorage.NewAppraisals(metrics.NewNoopCollector(), db, 100),
		}
		fx.adapter = checks.NewAdapter(fx.domain, badgerstorage.NewReceiptIdentities(db), fx.allocations, fx.senders, fx.appraisals)
		require.NoError(t, fx.senders.Authorize(unittest.KeyAddress(fx.key)))
		require.NoError(t, fx.allocations.Store(fx.allocation, true))
		f(fx)
	})
}

func TestAdapterPredicates(t *testing.T) {
	withAdapter(t, func(fx *fixture) {
		ctx := context.Background()
		signed := unittest.SignedReceiptFixture(fx.domain, fx.key, unittest.WithAllocationID(fx.allocation), unittest.WithValue(40))
		id := signed.ID()

		ok, err := fx.adapter.IsValidAllocationID(ctx, fx.allocation)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = fx.adapter.IsValidAllocationID(ctx, unittest.AddressFixture())
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = fx.adapter.IsValidSenderID(ctx, unittest.KeyAddress(fx.key))
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = fx.adapter.IsValidSenderID(ctx, unittest.AddressFixture())
		require.NoError(t, err)
		require.False(t, ok)

		// no appraisal recorded yet
		value := uint256.NewInt(40)
		ok, err = fx.adapter.IsValidValue(ctx, value, id)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, fx.appraisals.Store(id, *uint256.NewInt(40)))
		ok, err = fx.adapter.IsValidValue(ctx, value, id)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = fx.adapter.IsValidValue(ctx, uint256.NewInt(41), id)
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = fx.adapter.IsUnique(ctx, signed, id)
		require.NoError(t, err)
		require.True(t, ok)
		// repeated queries for the same receipt stay true
		ok, err = fx.adapter.IsUnique(ctx, signed, id)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestAdapterCancelled(t *testing.T) {
	withAdapter(t, func(fx *fixture) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fx.adapter.IsValidSenderID(ctx, unittest.KeyAddress(fx.key))
		require.ErrorIs(t, err, context.Canceled)
	})
}

// TestAdapterConcurrentUniqueness verifies that of many receipts sharing one identity but
// differing in value, checked concurrently, exactly one passes as unique.
func TestAdapterConcurrentUniqueness(t *testing.T) {
	withAdapter(t, func(fx *fixture) {
		template := unittest.ReceiptFixture(unittest.WithAllocationID(fx.allocation))

		receipts := make([]*tap.SignedReceipt, 0, 20)
		for i := 0; i < 20; i++ {
			r := template
			r.Value = *uint256.NewInt(uint64(i + 1))
			signed, err := tap.SignReceipt(fx.domain, r, fx.key)
			require.NoError(t, err)
			receipts = append(receipts, signed)
		}

		var wg sync.WaitGroup
		unique := atomic.NewInt32(0)
		for _, signed := range receipts {
			wg.Add(1)
			go func(signed *tap.SignedReceipt) {
				defer wg.Done()
				ok, err := fx.adapter.IsUnique(context.Background(), signed, signed.ID())
				require.NoError(t, err)
				if ok {
					unique.Inc()
				}
			}(signed)
		}
		unittest.RequireReturnsBefore(t, wg.Wait, 10*time.Second)
		require.Equal(t, int32(1), unique.Load())
	})
}

// TestAdapterWithChecker runs the reference checks behind the receipt checker.
func TestAdapterWithChecker(t *testing.T) {
	withAdapter(t, func(fx *fixture) {
		checker := receipt.NewChecker(unittest.Logger(), fx.domain, fx.adapter, time.Second)

		signed := unittest.SignedReceiptFixture(fx.domain, fx.key, unittest.WithAllocationID(fx.allocation), unittest.WithValue(7))
		require.NoError(t, fx.appraisals.Store(signed.ID(), *uint256.NewInt(7)))

		next := receipt.NewCheckingReceipt(signed).PerformChecks(context.Background(), checker)
		require.Equal(t, receipt.AwaitingReserve{}, next.State())

		// a stranger's receipt fails the sender check
		stranger := unittest.SignedReceiptFixture(fx.domain, unittest.KeyFixture(), unittest.WithAllocationID(fx.allocation), unittest.WithValue(7))
		require.NoError(t, fx.appraisals.Store(stranger.ID(), *uint256.NewInt(7)))

		next = receipt.NewCheckingReceipt(stranger).PerformChecks(context.Background(), checker)
		failed, ok := next.State().(receipt.Failed)
		require.True(t, ok)
		failure, ok := receipt.AsCheckFailure(failed.Err)
		require.True(t, ok)
		require.Equal(t, receipt.CheckSenderID, failure.Check)
	})
}
