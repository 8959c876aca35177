package stdmap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module/mempool"
	"github.com/tapnet/tap-core/module/receipt"
)

// Receipts stores tracked receipts indexed by the receipt id.
// It also maintains a secondary index on the allocation id, in order to find the
// receipts of an allocation in the order they were added.
type Receipts struct {
	backend        *Backend[tap.ReceiptID, receipt.ReceiptWithState]
	byAllocationID map[common.Address][]tap.ReceiptID
}

var _ mempool.Receipts = (*Receipts)(nil)

func indexByAllocationID(r receipt.ReceiptWithState) common.Address {
	return r.Signed().Message.AllocationID
}

// NewReceipts creates a new memory pool for receipts with state.
func NewReceipts() *Receipts {
	return &Receipts{
		backend:        NewBackend[tap.ReceiptID, receipt.ReceiptWithState](),
		byAllocationID: make(map[common.Address][]tap.ReceiptID),
	}
}

// Add adds a receipt to the mempool. Returns false on duplication.
func (r *Receipts) Add(rws receipt.ReceiptWithState) bool {
	added := false
	err := r.backend.Run(func(entities map[tap.ReceiptID]receipt.ReceiptWithState) error {
		receiptID := rws.ID()
		if _, exists := entities[receiptID]; exists {
			return nil
		}

		// update index AND the backdata in one "transaction"
		entities[receiptID] = rws
		allocationID := indexByAllocationID(rws)
		r.byAllocationID[allocationID] = append(r.byAllocationID[allocationID], receiptID)
		added = true
		return nil
	})
	if err != nil {
		panic(err)
	}
	return added
}

// ByID returns the receipt with the given id.
func (r *Receipts) ByID(receiptID tap.ReceiptID) (receipt.ReceiptWithState, bool) {
	return r.backend.Get(receiptID)
}

// Replace swaps current for next if current is still stored.
func (r *Receipts) Replace(current, next receipt.ReceiptWithState) bool {
	if current.ID() != next.ID() {
		return false
	}
	replaced := false
	err := r.backend.Run(func(entities map[tap.ReceiptID]receipt.ReceiptWithState) error {
		stored, ok := entities[current.ID()]
		if !ok || stored != current {
			return nil
		}
		entities[current.ID()] = next
		replaced = true
		return nil
	})
	if err != nil {
		panic(err)
	}
	return replaced
}

// Remove will remove a receipt by ID.
func (r *Receipts) Remove(receiptID tap.ReceiptID) bool {
	removed := false
	err := r.backend.Run(func(entities map[tap.ReceiptID]receipt.ReceiptWithState) error {
		rws, ok := entities[receiptID]
		if !ok {
			return nil
		}
		delete(entities, receiptID)

		allocationID := indexByAllocationID(rws)
		siblings := r.byAllocationID[allocationID]
		remaining := make([]tap.ReceiptID, 0, len(siblings))
		for _, sibling := range siblings {
			if sibling != receiptID {
				remaining = append(remaining, sibling)
			}
		}
		if len(remaining) == 0 {
			delete(r.byAllocationID, allocationID)
		} else {
			r.byAllocationID[allocationID] = remaining
		}
		removed = true
		return nil
	})
	if err != nil {
		panic(err)
	}
	return removed
}

// ByAllocationID returns the receipts of the allocation in insertion order.
func (r *Receipts) ByAllocationID(allocationID common.Address) []receipt.ReceiptWithState {
	var receipts []receipt.ReceiptWithState
	err := r.backend.Run(func(entities map[tap.ReceiptID]receipt.ReceiptWithState) error {
		for _, receiptID := range r.byAllocationID[allocationID] {
			rws, ok := entities[receiptID]
			if !ok {
				return fmt.Errorf("inconsistent index. can not find receipt by id: %v", receiptID)
			}
			receipts = append(receipts, rws)
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return receipts
}

// Size returns the number of stored receipts.
func (r *Receipts) Size() uint {
	return r.backend.Size()
}

// All returns every stored receipt.
func (r *Receipts) All() []receipt.ReceiptWithState {
	entities := r.backend.All()
	receipts := make([]receipt.ReceiptWithState, 0, len(entities))
	for _, rws := range entities {
		receipts = append(receipts, rws)
	}
	return receipts
}
