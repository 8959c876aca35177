package operation

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/utils/unittest"
)

func TestAllocationUpsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		allocationID := unittest.AddressFixture()

		var open bool
		err := db.View(RetrieveAllocation(allocationID, &open))
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, db.Update(UpsertAllocation(allocationID, true)))
		require.NoError(t, db.View(RetrieveAllocation(allocationID, &open)))
		require.True(t, open)

		require.NoError(t, db.Update(UpsertAllocation(allocationID, false)))
		require.NoError(t, db.View(RetrieveAllocation(allocationID, &open)))
		require.False(t, open)
	})
}

func TestSenderInsertCheckRemove(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		sender := unittest.AddressFixture()

		var exists bool
		require.NoError(t, db.View(CheckSender(sender, &exists)))
		require.False(t, exists)

		require.NoError(t, db.Update(InsertSender(sender)))
		require.ErrorIs(t, db.Update(InsertSender(sender)), storage.ErrAlreadyExists)
		require.NoError(t, db.Update(SkipDuplicates(InsertSender(sender))))

		require.NoError(t, db.View(CheckSender(sender, &exists)))
		require.True(t, exists)

		require.NoError(t, db.Update(RemoveSender(sender)))
		require.ErrorIs(t, db.Update(RemoveSender(sender)), storage.ErrNotFound)
		require.NoError(t, db.Update(SkipNonExist(RemoveSender(sender))))

		require.NoError(t, db.View(CheckSender(sender, &exists)))
		require.False(t, exists)
	})
}

func TestAppraisalInsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		queryID := tap.ReceiptID{0xaa}
		value := tap.MaxValue

		require.NoError(t, db.Update(InsertAppraisal(queryID, value)))
		require.ErrorIs(t, db.Update(InsertAppraisal(queryID, *uint256.NewInt(1))), storage.ErrAlreadyExists)

		var actual uint256.Int
		require.NoError(t, db.View(RetrieveAppraisal(queryID, &actual)))
		require.True(t, actual.Eq(&value))

		err := db.View(RetrieveAppraisal(tap.ReceiptID{0xbb}, &actual))
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestLatestRAVUpsertRetrieve(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		domain := unittest.DomainFixture()
		key := unittest.KeyFixture()
		allocationID := unittest.AddressFixture()

		first, err := tap.SignRAV(domain, unittest.RAVFixture(allocationID, 10, 100), key)
		require.NoError(t, err)
		second, err := tap.SignRAV(domain, unittest.RAVFixture(allocationID, 20, 300), key)
		require.NoError(t, err)

		var actual tap.SignedRAV
		err = db.View(RetrieveLatestRAV(allocationID, &actual))
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, db.Update(UpsertLatestRAV(first)))
		require.NoError(t, db.Update(UpsertLatestRAV(second)))

		require.NoError(t, db.View(RetrieveLatestRAV(allocationID, &actual)))
		require.True(t, second.Message.Equal(actual.Message))
		require.Equal(t, second.Signature, actual.Signature)
		require.NoError(t, actual.Verify(domain, unittest.KeyAddress(key)))
	})
}
