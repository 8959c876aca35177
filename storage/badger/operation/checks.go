package operation

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/tap"
)

// UpsertAllocation records the allocation status.
func UpsertAllocation(allocationID common.Address, open bool) func(*badger.Txn) error {
	return upsert(makePrefix(codeAllocation, allocationID), open)
}

// RetrieveAllocation retrieves the allocation status.
func RetrieveAllocation(allocationID common.Address, open *bool) func(*badger.Txn) error {
	return retrieve(makePrefix(codeAllocation, allocationID), open)
}

// InsertSender adds the sender to the authorized senders.
func InsertSender(sender common.Address) func(*badger.Txn) error {
	return insert(makePrefix(codeSender, sender), true)
}

// RemoveSender removes the sender from the authorized senders.
func RemoveSender(sender common.Address) func(*badger.Txn) error {
	return remove(makePrefix(codeSender, sender))
}

// CheckSender checks whether the sender is authorized.
func CheckSender(sender common.Address, exists *bool) func(*badger.Txn) error {
	return check(makePrefix(codeSender, sender), exists)
}

// InsertAppraisal records the agreed price of a query.
func InsertAppraisal(queryID tap.ReceiptID, value uint256.Int) func(*badger.Txn) error {
	return insert(makePrefix(codeAppraisal, queryID), value.Bytes32())
}

// RetrieveAppraisal retrieves the agreed price of a query.
func RetrieveAppraisal(queryID tap.ReceiptID, value *uint256.Int) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var raw [32]byte
		err := retrieve(makePrefix(codeAppraisal, queryID), &raw)(tx)
		if err != nil {
			return err
		}
		value.SetBytes32(raw[:])
		return nil
	}
}
