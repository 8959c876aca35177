package operation

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
)

// storedRAV is the flat database representation of a countersigned RAV.
type storedRAV struct {
	AllocationID   [common.AddressLength]byte
	TimestampNs    uint64
	ValueAggregate [32]byte
	Signature      [eip712.SignatureLength]byte
}

// UpsertLatestRAV replaces the latest RAV of the allocation.
func UpsertLatestRAV(rav *tap.SignedRAV) func(*badger.Txn) error {
	stored := storedRAV{
		AllocationID:   rav.Message.AllocationID,
		TimestampNs:    rav.Message.TimestampNs,
		ValueAggregate: rav.Message.ValueAggregate.Bytes32(),
		Signature:      rav.Signature,
	}
	return upsert(makePrefix(codeLatestRAV, rav.Message.AllocationID), stored)
}

// RetrieveLatestRAV retrieves the latest RAV of the allocation.
func RetrieveLatestRAV(allocationID common.Address, rav *tap.SignedRAV) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var stored storedRAV
		err := retrieve(makePrefix(codeLatestRAV, allocationID), &stored)(tx)
		if err != nil {
			return err
		}
		rav.Message.AllocationID = stored.AllocationID
		rav.Message.TimestampNs = stored.TimestampNs
		rav.Message.ValueAggregate.SetBytes32(stored.ValueAggregate[:])
		rav.Signature = stored.Signature
		return nil
	}
}
