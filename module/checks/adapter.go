// Package checks provides a reference implementation of the receipt checks contract
// on top of the badger storage layer.
package checks

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module"
	"github.com/tapnet/tap-core/storage"
)

// Adapter answers receipt checks from the receiver's records. Receipts are unique
// by claiming their identity in storage; allocations must be known and open; senders
// must be authorized; values must match the recorded appraisal of the query.
type Adapter struct {
	domain      eip712.Domain
	identities  storage.ReceiptIdentities
	allocations storage.Allocations
	senders     storage.Senders
	appraisals  storage.Appraisals
}

var _ module.ReceiptChecks = (*Adapter)(nil)

func NewAdapter(
	domain eip712.Domain,
	identities storage.ReceiptIdentities,
	allocations storage.Allocations,
	senders storage.Senders,
	appraisals storage.Appraisals,
) *Adapter {
	return &Adapter{
		domain:      domain,
		identities:  identities,
		allocations: allocations,
		senders:     senders,
		appraisals:  appraisals,
	}
}

// IsUnique claims the receipt's identity. A receipt whose signer cannot be recovered
// is not unique.
func (a *Adapter) IsUnique(ctx context.Context, receipt *tap.SignedReceipt, receiptID tap.ReceiptID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key, err := receipt.UniqueKey(a.domain)
	if eip712.IsSignatureError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not derive receipt identity: %w", err)
	}
	return a.identities.Claim(key, receiptID)
}

func (a *Adapter) IsValidAllocationID(ctx context.Context, allocationID common.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.allocations.IsOpen(allocationID)
}

// IsValidValue returns false if no price was recorded for the query.
func (a *Adapter) IsValidValue(ctx context.Context, value *uint256.Int, queryID tap.ReceiptID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	expected, err := a.appraisals.ByQueryID(queryID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return expected.Eq(value), nil
}

func (a *Adapter) IsValidSenderID(ctx context.Context, senderID common.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.senders.IsAuthorized(senderID)
}
