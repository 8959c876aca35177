package mempool

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module/receipt"
)

// Receipts holds the receipts tracked by the orchestrator together with their lifecycle
// state, indexed by receipt id. It also maintains a secondary index on the allocation
// id, which preserves the order in which receipts were added.
type Receipts interface {
	// Add stores a receipt. Returns false if a receipt with the same id is already stored.
	Add(r receipt.ReceiptWithState) bool

	// ByID returns the receipt with the given id in its current state.
	ByID(receiptID tap.ReceiptID) (receipt.ReceiptWithState, bool)

	// Replace stores next in place of current, provided current is still the stored
	// value for its id. Returns false if the receipt was removed or replaced concurrently.
	Replace(current, next receipt.ReceiptWithState) bool

	// Remove drops a receipt by id.
	Remove(receiptID tap.ReceiptID) bool

	// ByAllocationID returns the receipts of the allocation in the order they were added.
	ByAllocationID(allocationID common.Address) []receipt.ReceiptWithState

	// All returns every stored receipt, in no particular order.
	All() []receipt.ReceiptWithState

	// Size returns the number of stored receipts.
	Size() uint
}
