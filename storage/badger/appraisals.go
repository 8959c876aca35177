package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module"
	"github.com/tapnet/tap-core/module/metrics"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/storage/badger/operation"
)

// Appraisals implements a cached persistent storage of query prices.
type Appraisals struct {
	db    *badger.DB
	cache *Cache[tap.ReceiptID, uint256.Int]
}

var _ storage.Appraisals = (*Appraisals)(nil)

func NewAppraisals(collector module.CacheMetrics, db *badger.DB, limit uint) *Appraisals {
	store := func(queryID tap.ReceiptID, value uint256.Int) error {
		return operation.RetryOnConflict(db.Update, operation.InsertAppraisal(queryID, value))
	}

	retrieve := func(queryID tap.ReceiptID) (uint256.Int, error) {
		var value uint256.Int
		err := db.View(operation.RetrieveAppraisal(queryID, &value))
		return value, err
	}

	return &Appraisals{
		db: db,
		cache: newCache(collector, metrics.ResourceAppraisal,
			withLimit[tap.ReceiptID, uint256.Int](limit),
			withStore(store),
			withRetrieve(retrieve),
		),
	}
}

func (a *Appraisals) Store(queryID tap.ReceiptID, value uint256.Int) error {
	return a.cache.Put(queryID, value)
}

func (a *Appraisals) ByQueryID(queryID tap.ReceiptID) (uint256.Int, error) {
	value, err := a.cache.Get(queryID)
	if err != nil {
		return uint256.Int{}, fmt.Errorf("could not retrieve appraisal of %s: %w", queryID, err)
	}
	return value, nil
}
