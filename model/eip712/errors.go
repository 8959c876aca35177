package eip712

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSignature is returned when a signature cannot be recovered against the
	// typed-data digest, e.g. wrong length, invalid recovery id or a non-canonical s value.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrMalformedPayload is returned when a message cannot be canonically re-encoded.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrSignerMismatch is returned when the recovered signer differs from the expected one.
	ErrSignerMismatch = errors.New("recovered signer does not match expected address")
)

// SignatureError indicates that the authenticity of a signed message could not be
// established. It always wraps one of ErrInvalidSignature, ErrMalformedPayload or
// ErrSignerMismatch.
type SignatureError struct {
	err error
}

func NewSignatureError(err error) error {
	return SignatureError{err}
}

func NewSignatureErrorf(msg string, args ...interface{}) error {
	return SignatureError{fmt.Errorf(msg, args...)}
}

func (e SignatureError) Error() string { return fmt.Sprintf("signature error: %s", e.err.Error()) }
func (e SignatureError) Unwrap() error { return e.err }

// IsSignatureError returns whether err is a SignatureError
func IsSignatureError(err error) bool {
	var e SignatureError
	return errors.As(err, &e)
}
