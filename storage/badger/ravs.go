package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/storage/badger/operation"
)

// RAVs implements a persistent storage of the latest RAV per allocation.
type RAVs struct {
	db *badger.DB
}

var _ storage.RAVs = (*RAVs)(nil)

func NewRAVs(db *badger.DB) *RAVs {
	return &RAVs{db: db}
}

func (r *RAVs) Store(rav *tap.SignedRAV) error {
	err := operation.RetryOnConflict(r.db.Update, operation.UpsertLatestRAV(rav))
	if err != nil {
		return fmt.Errorf("could not store RAV for %s: %w", rav.Message.AllocationID.Hex(), err)
	}
	return nil
}

func (r *RAVs) ByAllocationID(allocationID common.Address) (*tap.SignedRAV, error) {
	var rav tap.SignedRAV
	err := r.db.View(operation.RetrieveLatestRAV(allocationID, &rav))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve RAV for %s: %w", allocationID.Hex(), err)
	}
	return &rav, nil
}
