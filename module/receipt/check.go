package receipt

// Check names one of the validations a receipt goes through.
type Check string

const (
	CheckSignature    Check = "signature"
	CheckUnique       Check = "unique"
	CheckAllocationID Check = "allocation_id"
	CheckValue        Check = "value"
	CheckSenderID     Check = "sender_id"
)

// AllChecks lists every check in priority order. When several checks of one receipt
// fail, the failure of the earliest check in this list is the one recorded.
var AllChecks = []Check{
	CheckSignature,
	CheckUnique,
	CheckAllocationID,
	CheckValue,
	CheckSenderID,
}

// ChecksWithout returns AllChecks minus the excluded ones, in priority order.
func ChecksWithout(excluded ...Check) []Check {
	checks := make([]Check, 0, len(AllChecks))
	for _, check := range AllChecks {
		if !contains(excluded, check) {
			checks = append(checks, check)
		}
	}
	return checks
}

func (c Check) priority() int {
	for i, check := range AllChecks {
		if check == c {
			return i
		}
	}
	return len(AllChecks)
}

func contains(checks []Check, check Check) bool {
	for _, c := range checks {
		if c == check {
			return true
		}
	}
	return false
}
