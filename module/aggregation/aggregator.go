package aggregation

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/tapnet/tap-core/model/tap"
	"github.com/tapnet/tap-core/module/receipt"
)

// DefaultWorkers is the default number of receipts validated in parallel.
const DefaultWorkers = 16

// Aggregator folds the receipts of one allocation into a RAV proposal. It holds only
// immutable configuration; all per-run state is local to Aggregate, so concurrent
// calls are safe.
type Aggregator struct {
	log                  zerolog.Logger
	checker              *receipt.Checker
	workers              uint
	revalidateUniqueness bool
}

type Option func(*Aggregator)

// WithWorkers bounds the number of receipts validated in parallel.
func WithWorkers(workers uint) Option {
	return func(a *Aggregator) {
		if workers > 0 {
			a.workers = workers
		}
	}
}

// WithUniquenessRevalidation sets whether IsUnique is queried again at aggregation time.
// It is on by default; the checks implementation must then answer true for a receipt
// id it has already accepted.
func WithUniquenessRevalidation(enabled bool) Option {
	return func(a *Aggregator) {
		a.revalidateUniqueness = enabled
	}
}

func NewAggregator(log zerolog.Logger, checker *receipt.Checker, opts ...Option) *Aggregator {
	a := &Aggregator{
		log:                  log.With().Str("component", "rav_aggregator").Logger(),
		checker:              checker,
		workers:              DefaultWorkers,
		revalidateUniqueness: true,
	}
	for _, apply := range opts {
		apply(a)
	}
	return a
}

// Aggregate re-validates the receipts and folds the valid ones into the RAV following
// prior. Receipts not newer than the prior watermark are excluded from the request
// altogether: they are already covered by prior. The remaining receipts are
// partitioned into valid and invalid ones, both in input order.
//
// The expected RAV carries prior's value plus the values of all valid receipts, and the
// newest valid timestamp (prior's watermark, or zero without prior, if none is valid).
//
// Expected errors:
//   - ErrAllocationMismatch if prior belongs to another allocation
//   - AggregationOverflowError if the aggregate value does not fit in 128 bits
//   - context errors if ctx was cancelled before validation completed
func (a *Aggregator) Aggregate(ctx context.Context, allocationID common.Address, prior *tap.RAV, receipts []*tap.SignedReceipt) (*tap.RAVRequest, error) {
	var (
		watermark uint64
		aggregate tap.RAV
	)
	aggregate.AllocationID = allocationID
	if prior != nil {
		if prior.AllocationID != allocationID {
			return nil, fmt.Errorf("prior RAV for %s cannot be extended for %s: %w",
				prior.AllocationID.Hex(), allocationID.Hex(), ErrAllocationMismatch)
		}
		watermark = prior.TimestampNs
		aggregate.TimestampNs = prior.TimestampNs
		aggregate.ValueAggregate = prior.ValueAggregate
	}

	candidates := make([]*tap.SignedReceipt, 0, len(receipts))
	for _, r := range receipts {
		if prior != nil && r.Message.TimestampNs <= watermark {
			continue
		}
		candidates = append(candidates, r)
	}

	failures, err := a.validate(ctx, allocationID, candidates)
	if err != nil {
		return nil, err
	}

	request := &tap.RAVRequest{}
	seen := make(map[tap.UniqueKey]struct{}, len(candidates))
	for i, r := range candidates {
		if failures[i] == nil {
			// recovery succeeded during validation
			key, err := r.UniqueKey(a.checker.Domain())
			if err != nil {
				return nil, fmt.Errorf("could not derive identity of validated receipt %s: %w", r.ID(), err)
			}
			if _, dup := seen[key]; dup {
				failures[i] = receipt.NewCheckFailure(receipt.CheckUnique, ErrDuplicateIdentity)
			} else {
				seen[key] = struct{}{}
			}
		}

		if failures[i] != nil {
			request.InvalidReceipts = append(request.InvalidReceipts, r)
			request.InvalidReasons = append(request.InvalidReasons, failures[i])
			continue
		}

		sum, ok := tap.AddValues(&aggregate.ValueAggregate, &r.Message.Value)
		if !ok {
			a.log.Warn().
				Str("allocation_id", allocationID.Hex()).
				Str("receipt_id", r.ID().String()).
				Msg("value aggregate overflow")
			return nil, NewAggregationOverflowError(allocationID)
		}
		aggregate.ValueAggregate = sum
		if r.Message.TimestampNs > aggregate.TimestampNs {
			aggregate.TimestampNs = r.Message.TimestampNs
		}
		request.ValidReceipts = append(request.ValidReceipts, r)
	}
	request.ExpectedRAV = aggregate

	a.log.Debug().
		Str("allocation_id", allocationID.Hex()).
		Int("excluded", len(receipts)-len(candidates)).
		Int("valid", len(request.ValidReceipts)).
		Int("invalid", len(request.InvalidReceipts)).
		Stringer("expected_rav", request.ExpectedRAV).
		Msg("receipts aggregated")

	return request, nil
}

// validate runs the checks of every candidate on a bounded worker pool. failures[i] is
// nil iff candidates[i] passed.
func (a *Aggregator) validate(ctx context.Context, allocationID common.Address, candidates []*tap.SignedReceipt) ([]error, error) {
	checks := receipt.AllChecks
	if !a.revalidateUniqueness {
		checks = receipt.ChecksWithout(receipt.CheckUnique)
	}

	failures := make([]error, len(candidates))
	pool := workerpool.New(int(a.workers))
	for i, r := range candidates {
		i, r := i, r
		if r.Message.AllocationID != allocationID {
			failures[i] = receipt.NewCheckFailure(receipt.CheckAllocationID,
				fmt.Errorf("receipt for %s: %w", r.Message.AllocationID.Hex(), ErrAllocationMismatch))
			continue
		}
		pool.Submit(func() {
			failures[i] = a.checker.Check(ctx, r, r.ID(), checks)
		})
	}
	pool.StopWait()

	// checks interrupted by the caller are not evidence against the receipts
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregation interrupted: %w", err)
	}
	return failures, nil
}
