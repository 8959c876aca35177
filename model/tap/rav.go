package tap

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/eip712"
)

const (
	// DomainName and DomainVersion identify the protocol in the EIP-712 domain.
	DomainName    = "TAP"
	DomainVersion = "1"

	ravType = "ReceiptAggregateVoucher"
)

// the verifier contract declares the voucher members in camel case
var ravFields = []apitypes.Type{
	{Name: "allocationId", Type: "address"},
	{Name: "timestampNs", Type: "uint64"},
	{Name: "valueAggregate", Type: "uint128"},
}

// NewDomain returns the protocol's EIP-712 domain on the given chain.
func NewDomain(chainID uint64, verifyingContract common.Address) eip712.Domain {
	return eip712.NewDomain(DomainName, DomainVersion, chainID, verifyingContract)
}

// RAV (Receipt Aggregate Voucher) is an aggregated claim over all receipts of an
// allocation up to a timestamp watermark. For one allocation, successive RAVs never
// decrease in TimestampNs nor in ValueAggregate.
type RAV struct {
	AllocationID   common.Address
	TimestampNs    uint64      // watermark: newest receipt timestamp folded in
	ValueAggregate uint256.Int // cumulative paid amount
}

func (r RAV) PrimaryType() string { return ravType }

func (r RAV) TypeFields() []apitypes.Type { return ravFields }

func (r RAV) TypedMessage() (apitypes.TypedDataMessage, error) {
	if err := checkValue(&r.ValueAggregate); err != nil {
		return nil, err
	}
	return apitypes.TypedDataMessage{
		"allocationId":   r.AllocationID.Hex(),
		"timestampNs":    new(big.Int).SetUint64(r.TimestampNs),
		"valueAggregate": r.ValueAggregate.ToBig(),
	}, nil
}

// Equal returns true iff both vouchers carry the same claim.
func (r RAV) Equal(other RAV) bool {
	return r.AllocationID == other.AllocationID &&
		r.TimestampNs == other.TimestampNs &&
		r.ValueAggregate.Eq(&other.ValueAggregate)
}

func (r RAV) String() string {
	return fmt.Sprintf("RAV{allocation=%s ts=%d value=%s}", r.AllocationID.Hex(), r.TimestampNs, formatValue(&r.ValueAggregate))
}

type ravJSON struct {
	AllocationID   common.Address `json:"allocation_id"`
	TimestampNs    uint64         `json:"timestamp_ns"`
	ValueAggregate string         `json:"value_aggregate"`
}

func (r RAV) MarshalJSON() ([]byte, error) {
	return json.Marshal(ravJSON{
		AllocationID:   r.AllocationID,
		TimestampNs:    r.TimestampNs,
		ValueAggregate: formatValue(&r.ValueAggregate),
	})
}

func (r *RAV) UnmarshalJSON(data []byte) error {
	var raw ravJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	value, err := ValueFromDecimal(raw.ValueAggregate)
	if err != nil {
		return fmt.Errorf("could not decode value aggregate: %w", err)
	}
	*r = RAV{
		AllocationID:   raw.AllocationID,
		TimestampNs:    raw.TimestampNs,
		ValueAggregate: value,
	}
	return nil
}

// SignedRAV is a voucher countersigned by the aggregator.
type SignedRAV struct {
	eip712.SignedMessage[RAV]
}

// SignRAV signs the voucher with the aggregator's key.
func SignRAV(domain eip712.Domain, rav RAV, key *ecdsa.PrivateKey) (*SignedRAV, error) {
	signed, err := eip712.Sign(domain, rav, key)
	if err != nil {
		return nil, err
	}
	return &SignedRAV{SignedMessage: *signed}, nil
}
