package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module"
)

// Checker evaluates receipts against the application's ReceiptChecks. It holds only
// immutable configuration and is safe for concurrent use.
type Checker struct {
	log     zerolog.Logger
	domain  eip712.Domain
	checks  module.ReceiptChecks
	timeout time.Duration // per receipt; zero disables the deadline
}

func NewChecker(log zerolog.Logger, domain eip712.Domain, checks module.ReceiptChecks, timeout time.Duration) *Checker {
	return &Checker{
		log:     log.With().Str("component", "receipt_checker").Logger(),
		domain:  domain,
		checks:  checks,
		timeout: timeout,
	}
}

// Domain returns the EIP-712 domain receipts are verified under.
func (c *Checker) Domain() eip712.Domain {
	return c.domain
}

// Check verifies the receipt signature and then runs the given checks concurrently.
// The signer is always recovered, as the sender check depends on it.
// Returns:
//   - nil if the receipt passed every check
//   - CheckFailure of the highest-priority failed check otherwise; a failed signer
//     recovery is reported as a CheckFailure for CheckSignature wrapping the
//     eip712.SignatureError, errors raised by the checks implementation are wrapped
//     in a ContractError
func (c *Checker) Check(ctx context.Context, signed *tap.SignedReceipt, receiptID tap.ReceiptID, checks []Check) error {
	signer, err := signed.Recover(c.domain)
	if err != nil {
		return NewCheckFailure(CheckSignature, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// one slot per check, indexed by priority
	failures := make([]error, len(AllChecks)+1)
	var g errgroup.Group
	for _, check := range checks {
		if check == CheckSignature {
			continue
		}
		check := check
		g.Go(func() error {
			failures[check.priority()] = c.await(ctx, check, signed, receiptID, signer)
			return nil
		})
	}
	_ = g.Wait()

	var all *multierror.Error
	var first error
	for _, failure := range failures {
		if failure == nil {
			continue
		}
		if first == nil {
			first = failure
		}
		all = multierror.Append(all, failure)
	}
	if all != nil && all.Len() > 1 {
		c.log.Debug().
			Hex("receipt_id", receiptID[:]).
			Err(all).
			Msg("receipt failed multiple checks")
	}
	return first
}

// await runs one check and gives up on it once ctx is done, whether or not the checks
// implementation watches ctx. A result arriving after the deadline is discarded.
func (c *Checker) await(ctx context.Context, check Check, signed *tap.SignedReceipt, receiptID tap.ReceiptID, signer common.Address) error {
	result := make(chan error, 1)
	go func() {
		result <- c.run(ctx, check, signed, receiptID, signer)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return NewCheckFailure(check, NewContractError(ctx.Err()))
	}
}

func (c *Checker) run(ctx context.Context, check Check, signed *tap.SignedReceipt, receiptID tap.ReceiptID, signer common.Address) error {
	var (
		ok  bool
		err error
	)
	switch check {
	case CheckUnique:
		ok, err = c.checks.IsUnique(ctx, signed, receiptID)
	case CheckAllocationID:
		ok, err = c.checks.IsValidAllocationID(ctx, signed.Message.AllocationID)
	case CheckValue:
		value := signed.Message.Value
		ok, err = c.checks.IsValidValue(ctx, &value, receiptID)
	case CheckSenderID:
		ok, err = c.checks.IsValidSenderID(ctx, signer)
	default:
		return NewCheckFailure(check, fmt.Errorf("unknown check %q", check))
	}
	if err != nil {
		return NewCheckFailure(check, NewContractError(err))
	}
	if !ok {
		return NewCheckFailure(check, ErrCheckRejected)
	}
	return nil
}
