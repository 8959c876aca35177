package tap

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/utils/rand"
)

const receiptType = "Receipt"

var receiptFields = []apitypes.Type{
	{Name: "allocation_id", Type: "address"},
	{Name: "timestamp_ns", Type: "uint64"},
	{Name: "nonce", Type: "uint64"},
	{Name: "value", Type: "uint128"},
}

// Receipt declares a single payment for one unit of work against an allocation.
// It is created once by the sender and never modified afterwards.
type Receipt struct {
	AllocationID common.Address // allocation the payment is attributed to
	TimestampNs  uint64         // creation time, nanoseconds since the unix epoch
	Nonce        uint64         // random value making the receipt identity unique
	Value        uint256.Int    // payment amount, at most MaxValue
}

// NewReceipt creates a receipt for the given allocation stamped with the current time
// and a fresh random nonce.
// Expected errors:
//   - ErrValueOutOfRange if value does not fit in 128 bits
//   - exception if the system RNG fails
func NewReceipt(allocationID common.Address, value uint256.Int) (Receipt, error) {
	if err := checkValue(&value); err != nil {
		return Receipt{}, err
	}
	nonce, err := rand.Uint64()
	if err != nil {
		return Receipt{}, fmt.Errorf("could not generate receipt nonce: %w", err)
	}
	return Receipt{
		AllocationID: allocationID,
		TimestampNs:  uint64(time.Now().UnixNano()),
		Nonce:        nonce,
		Value:        value,
	}, nil
}

func (r Receipt) PrimaryType() string { return receiptType }

func (r Receipt) TypeFields() []apitypes.Type { return receiptFields }

func (r Receipt) TypedMessage() (apitypes.TypedDataMessage, error) {
	if err := checkValue(&r.Value); err != nil {
		return nil, err
	}
	return apitypes.TypedDataMessage{
		"allocation_id": r.AllocationID.Hex(),
		"timestamp_ns":  new(big.Int).SetUint64(r.TimestampNs),
		"nonce":         new(big.Int).SetUint64(r.Nonce),
		"value":         r.Value.ToBig(),
	}, nil
}

// UniqueKey returns the dedup identity of the receipt when signed by signer. Two
// receipts collide iff signer, allocation, nonce and timestamp are all equal; the value
// does not take part, so a sender cannot re-spend an identity with a different amount.
func (r Receipt) UniqueKey(signer common.Address) UniqueKey {
	buf := make([]byte, 0, common.AddressLength*2+16)
	buf = append(buf, signer.Bytes()...)
	buf = append(buf, r.AllocationID.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, r.Nonce)
	buf = binary.BigEndian.AppendUint64(buf, r.TimestampNs)
	return UniqueKey(crypto.Keccak256Hash(buf))
}

type receiptJSON struct {
	AllocationID common.Address `json:"allocation_id"`
	TimestampNs  uint64         `json:"timestamp_ns"`
	Nonce        uint64         `json:"nonce"`
	Value        string         `json:"value"`
}

func (r Receipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{
		AllocationID: r.AllocationID,
		TimestampNs:  r.TimestampNs,
		Nonce:        r.Nonce,
		Value:        formatValue(&r.Value),
	})
}

func (r *Receipt) UnmarshalJSON(data []byte) error {
	var raw receiptJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := ValueFromDecimal(raw.Value)
	if err != nil {
		return fmt.Errorf("could not decode receipt value: %w", err)
	}
	*r = Receipt{
		AllocationID: raw.AllocationID,
		TimestampNs:  raw.TimestampNs,
		Nonce:        raw.Nonce,
		Value:        value,
	}
	return nil
}

// SignedReceipt is a receipt together with the sender's EIP-712 signature.
type SignedReceipt struct {
	eip712.SignedMessage[Receipt]
}

// SignReceipt signs the receipt with the sender's key.
func SignReceipt(domain eip712.Domain, receipt Receipt, key *ecdsa.PrivateKey) (*SignedReceipt, error) {
	signed, err := eip712.Sign(domain, receipt, key)
	if err != nil {
		return nil, err
	}
	return &SignedReceipt{SignedMessage: *signed}, nil
}

// ID returns the receipt id, derived from the full signed content. Byte-identical
// signed receipts share an id; differently signed receipts never do.
func (s *SignedReceipt) ID() ReceiptID {
	m := s.Message
	value := m.Value.Bytes32()

	buf := make([]byte, 0, common.AddressLength+16+len(value)+eip712.SignatureLength)
	buf = append(buf, m.AllocationID.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, m.TimestampNs)
	buf = binary.BigEndian.AppendUint64(buf, m.Nonce)
	buf = append(buf, value[:]...)
	buf = append(buf, s.Signature[:]...)
	return ReceiptID(crypto.Keccak256Hash(buf))
}

// UniqueKey recovers the signer and returns the receipt's dedup identity.
// Expected errors:
//   - eip712.SignatureError if the signer cannot be recovered
func (s *SignedReceipt) UniqueKey(domain eip712.Domain) (UniqueKey, error) {
	signer, err := s.Recover(domain)
	if err != nil {
		return UniqueKey{}, err
	}
	return s.Message.UniqueKey(signer), nil
}
