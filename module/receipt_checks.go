package module

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/tap"
)

// ReceiptChecks is the contract between the receipt core and the application owning the
// business rules. Each predicate returns false if the receipt violates the rule, and an
// error only if the rule could not be evaluated (the error is surfaced as a contract
// error, never as a rejection).
//
// Implementations must be safe for concurrent use. IsUnique must be linearizable:
// of several concurrent queries for receipts sharing a dedup identity, at most one
// may observe true.
type ReceiptChecks interface {
	// IsUnique returns true iff no other receipt with the same (signer, allocation_id,
	// nonce, timestamp_ns) identity has been accepted. Repeated queries with the same
	// receipt id must keep returning true.
	IsUnique(ctx context.Context, receipt *tap.SignedReceipt, receiptID tap.ReceiptID) (bool, error)

	// IsValidAllocationID returns true iff the allocation is open and owned by the receiver.
	IsValidAllocationID(ctx context.Context, allocationID common.Address) (bool, error)

	// IsValidValue returns true iff value is the agreed price for the work identified by queryID.
	IsValidValue(ctx context.Context, value *uint256.Int, queryID tap.ReceiptID) (bool, error)

	// IsValidSenderID returns true iff the recovered signer is an authorized payer.
	IsValidSenderID(ctx context.Context, senderID common.Address) (bool, error)
}
