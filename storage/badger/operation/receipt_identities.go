package operation

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/storage"
)

// InsertReceiptIdentity binds the identity to the receipt.
func InsertReceiptIdentity(key tap.UniqueKey, receiptID tap.ReceiptID) func(*badger.Txn) error {
	return insert(makePrefix(codeReceiptIdentity, key), [32]byte(receiptID))
}

// LookupReceiptIdentity retrieves the receipt owning the identity.
func LookupReceiptIdentity(key tap.UniqueKey, receiptID *tap.ReceiptID) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var owner [32]byte
		err := retrieve(makePrefix(codeReceiptIdentity, key), &owner)(tx)
		if err != nil {
			return err
		}
		*receiptID = owner
		return nil
	}
}

// ClaimReceiptIdentity binds the identity to the receipt if it is free. claimed is set
// to true if the identity was free or is already owned by the receipt.
func ClaimReceiptIdentity(key tap.UniqueKey, receiptID tap.ReceiptID, claimed *bool) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		var owner tap.ReceiptID
		err := LookupReceiptIdentity(key, &owner)(tx)
		if errors.Is(err, storage.ErrNotFound) {
			*claimed = true
			return InsertReceiptIdentity(key, receiptID)(tx)
		}
		if err != nil {
			return err
		}
		*claimed = owner == receiptID
		return nil
	}
}
