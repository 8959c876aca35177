package metrics

const (
	LabelResource = "resource"
	LabelOutcome  = "outcome"
	LabelCheck    = "check"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

const (
	ResourceAllocation = "allocation"
	ResourceSender     = "sender"
	ResourceAppraisal  = "appraisal"
)
