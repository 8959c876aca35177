package receipt

import (
	"errors"
	"fmt"
)

// ErrCheckRejected is the cause of a CheckFailure when the check evaluated to false.
var ErrCheckRejected = errors.New("receipt rejected")

// CheckFailure is returned when a receipt did not pass one of its checks. Err is either
// ErrCheckRejected, a ContractError, or the eip712.SignatureError of a failed signer
// recovery.
type CheckFailure struct {
	Check Check
	Err   error
}

func NewCheckFailure(check Check, err error) error {
	return CheckFailure{
		Check: check,
		Err:   err,
	}
}

func (e CheckFailure) Error() string {
	return fmt.Sprintf("check %s failed: %s", e.Check, e.Err.Error())
}

func (e CheckFailure) Unwrap() error {
	return e.Err
}

// IsCheckFailure returns whether err is a CheckFailure
func IsCheckFailure(err error) bool {
	var e CheckFailure
	return errors.As(err, &e)
}

// AsCheckFailure returns the CheckFailure wrapped in err, if any.
func AsCheckFailure(err error) (CheckFailure, bool) {
	var e CheckFailure
	ok := errors.As(err, &e)
	return e, ok
}

// ContractError wraps an error raised by a ReceiptChecks implementation (including
// cancellation and timeouts), as opposed to a check evaluating to false.
type ContractError struct {
	err error
}

func NewContractError(err error) error {
	return ContractError{err}
}

func (e ContractError) Error() string {
	return fmt.Sprintf("checks contract error: %s", e.err.Error())
}

func (e ContractError) Unwrap() error {
	return e.err
}

// IsContractError returns whether err is a ContractError
func IsContractError(err error) bool {
	var e ContractError
	return errors.As(err, &e)
}
