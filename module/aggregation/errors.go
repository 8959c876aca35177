package aggregation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrAllocationMismatch is returned when the prior RAV belongs to another allocation
	// than the one being aggregated. As the cause of a receipt's CheckFailure, it marks a
	// receipt addressed to another allocation.
	ErrAllocationMismatch = errors.New("allocation id mismatch")
	// ErrDuplicateIdentity marks a receipt whose dedup identity already occurred earlier
	// in the same batch.
	ErrDuplicateIdentity = errors.New("receipt identity repeated in batch")
)

// AggregationOverflowError is returned when the aggregate value of an allocation would
// exceed 128 bits. No RAV is produced and the caller's state is left untouched.
type AggregationOverflowError struct {
	AllocationID common.Address
}

func NewAggregationOverflowError(allocationID common.Address) error {
	return AggregationOverflowError{AllocationID: allocationID}
}

func (e AggregationOverflowError) Error() string {
	return fmt.Sprintf("value aggregate of allocation %s overflows 128 bits", e.AllocationID.Hex())
}

// IsAggregationOverflowError returns whether err is an AggregationOverflowError
func IsAggregationOverflowError(err error) bool {
	var e AggregationOverflowError
	return errors.As(err, &e)
}
