package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/module"
	"github.com/tapnet/tap-core/module/metrics"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/storage/badger/operation"
)

// Allocations implements a cached persistent storage of allocation statuses.
type Allocations struct {
	db    *badger.DB
	cache *Cache[common.Address, bool]
}

var _ storage.Allocations = (*Allocations)(nil)

func NewAllocations(collector module.CacheMetrics, db *badger.DB) *Allocations {
	store := func(allocationID common.Address, open bool) error {
		return operation.RetryOnConflict(db.Update, operation.UpsertAllocation(allocationID, open))
	}

	retrieve := func(allocationID common.Address) (bool, error) {
		var open bool
		err := db.View(operation.RetrieveAllocation(allocationID, &open))
		return open, err
	}

	return &Allocations{
		db: db,
		cache: newCache(collector, metrics.ResourceAllocation,
			withLimit[common.Address, bool](1000),
			withStore(store),
			withRetrieve(retrieve),
		),
	}
}

func (a *Allocations) Store(allocationID common.Address, open bool) error {
	return a.cache.Put(allocationID, open)
}

// IsOpen returns false for unknown allocations.
func (a *Allocations) IsOpen(allocationID common.Address) (bool, error) {
	open, err := a.cache.Get(allocationID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not retrieve allocation %s: %w", allocationID.Hex(), err)
	}
	return open, nil
}
