// Package manager wires the receipt lifecycle, the checks and the RAV aggregator into the
// operations a receiver exposes: receipt submission, advancing receipts through their
// checks, RAV requests and escrow reservation.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module"
	"github.com/tapnet/tap-core/module/aggregation"
	"github.com/tapnet/tap-core/module/mempool"
	"github.com/tapnet/tap-core/module/receipt"
	"github.com/tapnet/tap-core/storage"
	"github.com/tapnet/tap-core/utils/logging"
)

// Manager tracks receipts through their lifecycle and builds RAV requests from them.
// All methods are safe for concurrent use.
type Manager struct {
	log        zerolog.Logger
	metrics    module.TapMetrics
	checker    *receipt.Checker
	aggregator *aggregation.Aggregator
	receipts   mempool.Receipts
	ravs       storage.RAVs
	workers    uint
	ravLock    sync.Mutex // serializes RAV verification against the stored RAV
}

func New(
	log zerolog.Logger,
	metrics module.TapMetrics,
	checker *receipt.Checker,
	aggregator *aggregation.Aggregator,
	receipts mempool.Receipts,
	ravs storage.RAVs,
	workers uint,
) *Manager {
	if workers == 0 {
		workers = aggregation.DefaultWorkers
	}
	return &Manager{
		log:        log.With().Str("component", "tap_manager").Logger(),
		metrics:    metrics,
		checker:    checker,
		aggregator: aggregator,
		receipts:   receipts,
		ravs:       ravs,
		workers:    workers,
	}
}

// SubmitReceipt starts tracking a receipt in the Checking state.
// Expected errors:
//   - ErrDuplicateReceipt if the same signed receipt is already tracked
func (m *Manager) SubmitReceipt(signed *tap.SignedReceipt) (tap.ReceiptID, error) {
	checking := receipt.NewCheckingReceipt(signed)
	if !m.receipts.Add(checking) {
		return checking.ID(), fmt.Errorf("receipt %s: %w", checking.ID(), ErrDuplicateReceipt)
	}
	m.metrics.ReceiptSubmitted()
	m.metrics.TrackedReceipts(m.receipts.Size())

	m.log.Debug().
		Str("receipt_id", checking.ID().String()).
		Str("allocation_id", signed.Message.AllocationID.Hex()).
		Msg("receipt submitted")
	return checking.ID(), nil
}

// Advance runs the checks of a receipt in the Checking state and returns its new state.
// Receipts in any other state are returned unchanged. When the same receipt is advanced
// concurrently, all callers observe the single outcome that was recorded first.
// Expected errors:
//   - ErrUnknownReceipt if the receipt is not tracked
//   - context errors if ctx was cancelled while the checks ran; the receipt stays in Checking
func (m *Manager) Advance(ctx context.Context, receiptID tap.ReceiptID) (receipt.State, error) {
	current, ok := m.receipts.ByID(receiptID)
	if !ok {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrUnknownReceipt)
	}
	checking, ok := current.(*receipt.CheckingReceipt)
	if !ok {
		return current.State(), nil
	}

	start := time.Now()
	next := checking.PerformChecks(ctx, m.checker)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("checks of receipt %s interrupted: %w", receiptID, err)
	}

	if !m.receipts.Replace(checking, next) {
		// a concurrent advance settled the receipt first
		settled, ok := m.receipts.ByID(receiptID)
		if !ok {
			return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrUnknownReceipt)
		}
		return settled.State(), nil
	}

	log := m.log.With().
		Str("receipt_id", receiptID.String()).
		Str("allocation_id", checking.Signed().Message.AllocationID.Hex()).
		Logger()
	var failedCheck receipt.Check
	if failed, ok := next.(*receipt.FailedReceipt); ok {
		if failure, ok := receipt.AsCheckFailure(failed.Err()); ok {
			failedCheck = failure.Check
		}
		log.Info().Err(failed.Err()).Msg("receipt failed checks")
	} else {
		log.Debug().Msg("receipt awaiting reserve")
	}
	m.metrics.ReceiptChecked(string(failedCheck), time.Since(start))

	return next.State(), nil
}

// AdvanceAll advances every receipt in the Checking state, bounded by the configured
// number of workers.
func (m *Manager) AdvanceAll(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	pool := workerpool.New(int(m.workers))
	for _, rws := range m.receipts.All() {
		if _, ok := rws.(*receipt.CheckingReceipt); !ok {
			continue
		}
		receiptID := rws.ID()
		pool.Submit(func() {
			_, err := m.Advance(ctx, receiptID)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
		})
	}
	pool.StopWait()
	return errs.ErrorOrNil()
}

// RequestRAV builds the RAV request of the allocation from its receipts awaiting reserve,
// in submission order, on top of the latest stored RAV. The tracked receipts are not
// modified.
// Expected errors:
//   - aggregation.AggregationOverflowError if the aggregate value does not fit in 128 bits
//   - context errors if ctx was cancelled
func (m *Manager) RequestRAV(ctx context.Context, allocationID common.Address) (*tap.RAVRequest, error) {
	var prior *tap.RAV
	latest, err := m.LatestRAV(allocationID)
	if err == nil {
		prior = &latest.Message
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	var batch []*tap.SignedReceipt
	for _, rws := range m.receipts.ByAllocationID(allocationID) {
		if _, ok := rws.(*receipt.AwaitingReserveReceipt); ok {
			batch = append(batch, rws.Signed())
		}
	}

	start := time.Now()
	request, err := m.aggregator.Aggregate(ctx, allocationID, prior, batch)
	if aggregation.IsAggregationOverflowError(err) {
		m.metrics.AggregationOverflow()
	}
	if err != nil {
		return nil, fmt.Errorf("could not aggregate receipts of %s: %w", allocationID.Hex(), err)
	}
	m.metrics.RAVRequested(len(request.ValidReceipts), len(request.InvalidReceipts), time.Since(start))

	m.log.Info().
		Str("allocation_id", allocationID.Hex()).
		Int("valid", len(request.ValidReceipts)).
		Int("invalid", len(request.InvalidReceipts)).
		Stringer("expected_rav", request.ExpectedRAV).
		Msg("RAV request built")
	return request, nil
}

// ConfirmReserve records the external escrow reservation of a receipt.
// Expected errors:
//   - ErrUnknownReceipt if the receipt is not tracked
//   - ErrInvalidTransition if the receipt is not awaiting reserve
func (m *Manager) ConfirmReserve(receiptID tap.ReceiptID) error {
	for {
		current, ok := m.receipts.ByID(receiptID)
		if !ok {
			return fmt.Errorf("receipt %s: %w", receiptID, ErrUnknownReceipt)
		}
		awaiting, ok := current.(*receipt.AwaitingReserveReceipt)
		if !ok {
			return fmt.Errorf("cannot reserve receipt %s in state %s: %w", receiptID, current.State(), ErrInvalidTransition)
		}
		if m.receipts.Replace(awaiting, awaiting.Reserve()) {
			m.metrics.ReceiptReserved()
			return nil
		}
	}
}

// VerifyAndStoreRAV checks that the aggregator countersigned exactly the expected RAV
// and stores it as the latest RAV of its allocation.
// Expected errors:
//   - ErrRAVMismatch if the signed RAV differs from expected
//   - eip712.SignatureError if the signature does not recover to the aggregator
//   - ErrRAVRegression if the RAV is older or smaller than the stored one
func (m *Manager) VerifyAndStoreRAV(expected tap.RAV, signed *tap.SignedRAV, aggregator common.Address) error {
	if !signed.Message.Equal(expected) {
		return fmt.Errorf("expected %s, got %s: %w", expected, signed.Message, ErrRAVMismatch)
	}
	if err := signed.Verify(m.checker.Domain(), aggregator); err != nil {
		return fmt.Errorf("could not verify RAV signature: %w", err)
	}

	m.ravLock.Lock()
	defer m.ravLock.Unlock()

	allocationID := signed.Message.AllocationID
	latest, err := m.LatestRAV(allocationID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if err == nil {
		if signed.Message.TimestampNs < latest.Message.TimestampNs ||
			signed.Message.ValueAggregate.Lt(&latest.Message.ValueAggregate) {
			return fmt.Errorf("stored %s, got %s: %w", latest.Message, signed.Message, ErrRAVRegression)
		}
	}

	if err := m.ravs.Store(signed); err != nil {
		return fmt.Errorf("could not store RAV: %w", err)
	}
	m.metrics.RAVStored()
	m.log.Info().Stringer("rav", signed.Message).Msg("RAV stored")
	return nil
}

// LatestRAV returns the latest stored RAV of the allocation.
// Expected errors:
//   - storage.ErrNotFound if no RAV was stored for the allocation
func (m *Manager) LatestRAV(allocationID common.Address) (*tap.SignedRAV, error) {
	return m.ravs.ByAllocationID(allocationID)
}

// State returns the current lifecycle state of a receipt.
// Expected errors:
//   - ErrUnknownReceipt if the receipt is not tracked
func (m *Manager) State(receiptID tap.ReceiptID) (receipt.State, error) {
	rws, ok := m.receipts.ByID(receiptID)
	if !ok {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrUnknownReceipt)
	}
	return rws.State(), nil
}

// RemoveObsoleteReceipts stops tracking the receipts of the allocation that can no longer
// contribute to a RAV: failed ones, and those not newer than the latest stored RAV.
// Returns the number of receipts removed.
func (m *Manager) RemoveObsoleteReceipts(allocationID common.Address) (int, error) {
	var watermark uint64
	hasRAV := false
	latest, err := m.LatestRAV(allocationID)
	if err == nil {
		watermark = latest.Message.TimestampNs
		hasRAV = true
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	var removed []tap.ReceiptID
	for _, rws := range m.receipts.ByAllocationID(allocationID) {
		obsolete := false
		switch rws.(type) {
		case *receipt.FailedReceipt:
			obsolete = true
		case *receipt.AwaitingReserveReceipt, *receipt.ReservedReceipt:
			obsolete = hasRAV && rws.Signed().Message.TimestampNs <= watermark
		}
		if obsolete && m.receipts.Remove(rws.ID()) {
			removed = append(removed, rws.ID())
		}
	}
	m.metrics.TrackedReceipts(m.receipts.Size())

	m.log.Debug().
		Str("allocation_id", allocationID.Hex()).
		Strs("removed", logging.IDs(removed)).
		Msg("obsolete receipts removed")
	return len(removed), nil
}
