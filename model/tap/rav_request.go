package tap

// RAVRequest is the output of one aggregation cycle: the partition of a receipt batch and
// the voucher the valid part folds into. It is transient and not persisted.
type RAVRequest struct {
	// ValidReceipts and InvalidReceipts preserve the relative order of the input batch.
	ValidReceipts   []*SignedReceipt `json:"valid_receipts"`
	InvalidReceipts []*SignedReceipt `json:"invalid_receipts"`
	// InvalidReasons[i] is the reason InvalidReceipts[i] was rejected.
	InvalidReasons []error `json:"-"`
	// ExpectedRAV is the unsigned proposal to be countersigned by the aggregator.
	ExpectedRAV RAV `json:"expected_rav"`
}
