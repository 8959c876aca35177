package eip712

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SignatureLength is the length of a recoverable secp256k1 signature: r || s || v.
const SignatureLength = crypto.SignatureLength

// Message is a payload with a canonical EIP-712 struct encoding.
type Message interface {
	// PrimaryType is the EIP-712 struct name, e.g. "Receipt".
	PrimaryType() string
	// TypeFields lists the struct members in canonical order.
	TypeFields() []apitypes.Type
	// TypedMessage returns the member values keyed by member name.
	TypedMessage() (apitypes.TypedDataMessage, error)
}

// Signature is a 65 byte recoverable signature. The recovery id is stored as 27/28,
// the form produced by wallets and expected by on-chain ecrecover.
type Signature [SignatureLength]byte

func (s Signature) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

func (s *Signature) UnmarshalText(input []byte) error {
	var raw hexutil.Bytes
	if err := raw.UnmarshalText(input); err != nil {
		return fmt.Errorf("could not decode signature: %w", err)
	}
	if len(raw) != SignatureLength {
		return fmt.Errorf("invalid signature length %d, expected %d", len(raw), SignatureLength)
	}
	copy(s[:], raw)
	return nil
}

func (s Signature) String() string {
	return hexutil.Encode(s[:])
}

// SignedMessage binds a message to a signature over its domain-separated digest.
// The only sanctioned way to learn the signer is Recover (or Verify).
type SignedMessage[M Message] struct {
	Message   M         `json:"message"`
	Signature Signature `json:"signature"`
}

// Hash returns keccak256(0x19 0x01 || domainSeparator || hashStruct(msg)).
// Expected errors:
//   - SignatureError wrapping ErrMalformedPayload if the message cannot be encoded
func Hash(domain Domain, msg Message) (common.Hash, error) {
	message, err := msg.TypedMessage()
	if err != nil {
		return common.Hash{}, NewSignatureError(fmt.Errorf("could not encode %s: %v: %w", msg.PrimaryType(), err, ErrMalformedPayload))
	}

	typed := apitypes.TypedData{
		Types: apitypes.Types{
			domainType:        domain.fields(),
			msg.PrimaryType(): msg.TypeFields(),
		},
		PrimaryType: msg.PrimaryType(),
		Domain:      domain.typedDataDomain(),
		Message:     message,
	}

	separator, err := typed.HashStruct(domainType, typed.Domain.Map())
	if err != nil {
		return common.Hash{}, NewSignatureError(fmt.Errorf("could not hash domain: %v: %w", err, ErrMalformedPayload))
	}
	structHash, err := typed.HashStruct(typed.PrimaryType, typed.Message)
	if err != nil {
		return common.Hash{}, NewSignatureError(fmt.Errorf("could not hash %s: %v: %w", typed.PrimaryType, err, ErrMalformedPayload))
	}

	raw := make([]byte, 0, 2+len(separator)+len(structHash))
	raw = append(raw, 0x19, 0x01)
	raw = append(raw, separator...)
	raw = append(raw, structHash...)
	return crypto.Keccak256Hash(raw), nil
}

// Sign signs msg under domain with the given key.
func Sign[M Message](domain Domain, msg M, key *ecdsa.PrivateKey) (*SignedMessage[M], error) {
	digest, err := Hash(domain, msg)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("could not sign %s: %w", msg.PrimaryType(), err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	signed := &SignedMessage[M]{Message: msg}
	copy(signed.Signature[:], sig)
	return signed, nil
}

// Hash returns the digest the signature commits to.
func (s *SignedMessage[M]) Hash(domain Domain) (common.Hash, error) {
	return Hash(domain, s.Message)
}

// Recover returns the address whose key produced the signature.
// Expected errors:
//   - SignatureError wrapping ErrMalformedPayload if the message cannot be encoded
//   - SignatureError wrapping ErrInvalidSignature if no signer can be recovered
func (s *SignedMessage[M]) Recover(domain Domain) (common.Address, error) {
	digest, err := Hash(domain, s.Message)
	if err != nil {
		return common.Address{}, err
	}
	return RecoverDigest(digest, s.Signature)
}

// Verify checks that the message was signed by expected.
// Expected errors:
//   - SignatureError wrapping ErrSignerMismatch if a different key signed the message
//   - any error returned by Recover
func (s *SignedMessage[M]) Verify(domain Domain, expected common.Address) error {
	signer, err := s.Recover(domain)
	if err != nil {
		return err
	}
	if signer != expected {
		return NewSignatureError(fmt.Errorf("recovered %s, expected %s: %w", signer.Hex(), expected.Hex(), ErrSignerMismatch))
	}
	return nil
}

// RecoverDigest recovers the signer of a digest. Both 0/1 and 27/28 recovery ids are
// accepted; signatures with s in the upper half of the curve order are rejected, so a
// message has exactly one valid signature per key.
func RecoverDigest(digest common.Hash, signature Signature) (common.Address, error) {
	sig := signature
	v := sig[crypto.RecoveryIDOffset]
	if v >= 27 {
		v -= 27
	}
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, true) {
		return common.Address{}, NewSignatureError(fmt.Errorf("signature values out of range (v=%d): %w", signature[crypto.RecoveryIDOffset], ErrInvalidSignature))
	}
	sig[crypto.RecoveryIDOffset] = v

	pub, err := crypto.SigToPub(digest.Bytes(), sig[:])
	if err != nil {
		return common.Address{}, NewSignatureError(fmt.Errorf("could not recover public key: %v: %w", err, ErrInvalidSignature))
	}
	return crypto.PubkeyToAddress(*pub), nil
}
