package module

import (
	"time"
)

// TapMetrics encapsulates the metrics collectors for the receipt lifecycle and RAV aggregation.
type TapMetrics interface {
	// ReceiptSubmitted is called when a receipt enters the Checking state.
	ReceiptSubmitted()

	// ReceiptChecked records the outcome of the initial checks of one receipt. The outcome is
	// the name of the failed check, or empty if all checks passed.
	ReceiptChecked(failedCheck string, duration time.Duration)

	// ReceiptReserved is called when a receipt moves to the Reserved state.
	ReceiptReserved()

	// RAVRequested records one aggregation cycle and the size of the resulting partition.
	RAVRequested(valid int, invalid int, duration time.Duration)

	// RAVStored is called when a countersigned RAV replaces the latest stored RAV.
	RAVStored()

	// AggregationOverflow is called when an aggregation cycle aborts on value overflow.
	AggregationOverflow()

	// TrackedReceipts reports the number of receipts held by the receipt pool.
	TrackedReceipts(size uint)
}

// CacheMetrics tracks the hit ratio of a lookup cache.
type CacheMetrics interface {
	// CacheHit is called when a lookup was served from the cache.
	CacheHit(resource string)
	// CacheMiss is called when a lookup had to go to the database.
	CacheMiss(resource string)
}
