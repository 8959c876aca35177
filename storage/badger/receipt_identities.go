package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/storage/badger/operation"
)

// ReceiptIdentities implements a persistent storage of receipt identity claims.
type ReceiptIdentities struct {
	db *badger.DB
}

var _ storage.ReceiptIdentities = (*ReceiptIdentities)(nil)

func NewReceiptIdentities(db *badger.DB) *ReceiptIdentities {
	return &ReceiptIdentities{db: db}
}

// Claim runs the lookup and the insert in one transaction; badger aborts the later of
// two conflicting transactions, which is then retried and observes the first claim.
func (r *ReceiptIdentities) Claim(key tap.UniqueKey, receiptID tap.ReceiptID) (bool, error) {
	var claimed bool
	err := operation.RetryOnConflict(r.db.Update, operation.ClaimReceiptIdentity(key, receiptID, &claimed))
	if err != nil {
		return false, fmt.Errorf("could not claim receipt identity: %w", err)
	}
	return claimed, nil
}

func (r *ReceiptIdentities) Owner(key tap.UniqueKey) (tap.ReceiptID, error) {
	var owner tap.ReceiptID
	err := r.db.View(operation.LookupReceiptIdentity(key, &owner))
	if err != nil {
		return tap.ZeroReceiptID, fmt.Errorf("could not look up receipt identity: %w", err)
	}
	return owner, nil
}
