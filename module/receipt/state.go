// Package receipt implements the receipt lifecycle: a receipt enters Checking, the
// initial checks move it to exactly one of Failed or AwaitingReserve, and a confirmed
// escrow reservation moves an AwaitingReserve receipt to Reserved. Transitions are
// only available on the receipt type of the matching state, so an invalid transition
// does not compile.
package receipt

import (
	"context"
	"fmt"

	"github.com/tapnet/tap-core/model/tap"
)

// State is the lifecycle state of a receipt. It is one of Checking, Failed,
// AwaitingReserve or Reserved.
type State interface {
	fmt.Stringer
	state()
}

// Checking is the state of a receipt whose initial checks have not completed.
type Checking struct{}

// Failed is the terminal state of a receipt that did not pass a check. Err is the
// CheckFailure of the highest-priority failed check.
type Failed struct {
	Err error
}

// AwaitingReserve is the state of a receipt that passed its checks and waits for the
// escrow reservation.
type AwaitingReserve struct{}

// Reserved is the terminal state of a receipt whose value was reserved from escrow.
type Reserved struct{}

func (Checking) state()        {}
func (Failed) state()          {}
func (AwaitingReserve) state() {}
func (Reserved) state()        {}

func (Checking) String() string        { return "checking" }
func (f Failed) String() string        { return fmt.Sprintf("failed: %v", f.Err) }
func (AwaitingReserve) String() string { return "awaiting_reserve" }
func (Reserved) String() string        { return "reserved" }

// IsTerminal returns true for states without outgoing transitions.
func IsTerminal(s State) bool {
	switch s.(type) {
	case Failed, Reserved:
		return true
	default:
		return false
	}
}

// ReceiptWithState pairs a signed receipt with its lifecycle state. It is implemented
// only by the receipt types of this package.
type ReceiptWithState interface {
	Signed() *tap.SignedReceipt
	ID() tap.ReceiptID
	State() State
	sealed()
}

type stateless struct {
	signed *tap.SignedReceipt
	id     tap.ReceiptID
}

func (s stateless) Signed() *tap.SignedReceipt { return s.signed }
func (s stateless) ID() tap.ReceiptID          { return s.id }
func (s stateless) sealed()                    {}

// CheckingReceipt is a receipt in the Checking state.
type CheckingReceipt struct {
	stateless
}

// NewCheckingReceipt starts the lifecycle of a received receipt.
func NewCheckingReceipt(signed *tap.SignedReceipt) *CheckingReceipt {
	return &CheckingReceipt{stateless{signed: signed, id: signed.ID()}}
}

func (r *CheckingReceipt) State() State { return Checking{} }

// PerformChecks runs all checks and returns the receipt in its next state: a
// *FailedReceipt if any check failed, an *AwaitingReserveReceipt otherwise.
func (r *CheckingReceipt) PerformChecks(ctx context.Context, checker *Checker) ReceiptWithState {
	err := checker.Check(ctx, r.signed, r.id, AllChecks)
	if err != nil {
		return &FailedReceipt{stateless: r.stateless, err: err}
	}
	return &AwaitingReserveReceipt{stateless: r.stateless}
}

// FailedReceipt is a receipt in the terminal Failed state.
type FailedReceipt struct {
	stateless
	err error
}

func (r *FailedReceipt) State() State { return Failed{Err: r.err} }

// Err returns the recorded check failure.
func (r *FailedReceipt) Err() error { return r.err }

// AwaitingReserveReceipt is a receipt that passed its checks.
type AwaitingReserveReceipt struct {
	stateless
}

func (r *AwaitingReserveReceipt) State() State { return AwaitingReserve{} }

// Reserve records the escrow reservation of the receipt value.
func (r *AwaitingReserveReceipt) Reserve() *ReservedReceipt {
	return &ReservedReceipt{stateless: r.stateless}
}

// ReservedReceipt is a receipt in the terminal Reserved state.
type ReservedReceipt struct {
	stateless
}

func (r *ReservedReceipt) State() State { return Reserved{} }
