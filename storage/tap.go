package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/tap"
)

// ReceiptIdentities records which receipt owns a dedup identity.
type ReceiptIdentities interface {
	// Claim binds the identity to the receipt, unless another receipt owns it already.
	// Returns true if the identity was free or is owned by the same receipt. Concurrent
	// claims of a free identity by different receipts succeed for exactly one of them.
	Claim(key tap.UniqueKey, receiptID tap.ReceiptID) (bool, error)

	// Owner returns the receipt owning the identity.
	// Expected errors:
	//   - storage.ErrNotFound if the identity was never claimed
	Owner(key tap.UniqueKey) (tap.ReceiptID, error)
}

// Allocations stores the allocations known to the receiver and whether they are open.
type Allocations interface {
	// Store records the allocation with the given status, replacing any previous one.
	Store(allocationID common.Address, open bool) error

	// IsOpen returns whether the allocation is known and open.
	IsOpen(allocationID common.Address) (bool, error)
}

// Senders stores the senders authorized to pay with receipts.
type Senders interface {
	// Authorize adds the sender. Authorizing twice is a no-op.
	Authorize(sender common.Address) error

	// Revoke removes the sender. Revoking an unknown sender is a no-op.
	Revoke(sender common.Address) error

	// IsAuthorized returns whether the sender may pay with receipts.
	IsAuthorized(sender common.Address) (bool, error)
}

// Appraisals stores the agreed price of the work identified by a query id.
type Appraisals interface {
	// Store records the price of the query.
	// Expected errors:
	//   - storage.ErrAlreadyExists if a price was already recorded for the query
	Store(queryID tap.ReceiptID, value uint256.Int) error

	// ByQueryID returns the price of the query.
	// Expected errors:
	//   - storage.ErrNotFound if no price was recorded
	ByQueryID(queryID tap.ReceiptID) (uint256.Int, error)
}

// RAVs stores the latest countersigned RAV of each allocation.
type RAVs interface {
	// Store replaces the latest RAV of the allocation.
	Store(rav *tap.SignedRAV) error

	// ByAllocationID returns the latest RAV of the allocation.
	// Expected errors:
	//   - storage.ErrNotFound if no RAV was stored
	ByAllocationID(allocationID common.Address) (*tap.SignedRAV, error)
}
