package metrics

// Prometheus metric namespaces
const (
	namespaceTap = "tap"
)

// Tap subsystems
const (
	subsystemReceipts    = "receipts"
	subsystemAggregation = "aggregation"
	subsystemChecks      = "checks"
)
