package manager

import (
	"errors"
)

var (
	// ErrDuplicateReceipt is returned when a byte-identical signed receipt is submitted twice.
	ErrDuplicateReceipt = errors.New("receipt already submitted")
	// ErrUnknownReceipt is returned for receipt ids the manager does not track.
	ErrUnknownReceipt = errors.New("unknown receipt")
	// ErrInvalidTransition is returned when a lifecycle transition is not available in the
	// receipt's current state.
	ErrInvalidTransition = errors.New("invalid receipt state transition")
	// ErrRAVMismatch is returned when a countersigned RAV differs from the expected one.
	ErrRAVMismatch = errors.New("signed RAV does not match the expected RAV")
	// ErrRAVRegression is returned when a RAV would decrease the stored watermark or value.
	ErrRAVRegression = errors.New("RAV regresses the latest stored RAV")
)
