package metrics

import (
	"time"

	"github.com/tapnet/tap-core/module"
)

type NoopCollector struct{}

var _ module.TapMetrics = (*NoopCollector)(nil)
var _ module.CacheMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) ReceiptSubmitted()                                    {}
func (nc *NoopCollector) ReceiptChecked(failedCheck string, d time.Duration)   {}
func (nc *NoopCollector) ReceiptReserved()                                     {}
func (nc *NoopCollector) RAVRequested(valid int, invalid int, d time.Duration) {}
func (nc *NoopCollector) RAVStored()                                           {}
func (nc *NoopCollector) AggregationOverflow()                                 {}
func (nc *NoopCollector) TrackedReceipts(size uint)                            {}
func (nc *NoopCollector) CacheHit(resource string)                             {}
func (nc *NoopCollector) CacheMiss(resource string)                            {}
