// Package eip712 binds arbitrary structured payloads to secp256k1 signatures using the
// EIP-712 typed-data hashing scheme, so that signatures produced here verify bit-for-bit
// against any other compliant implementation (wallets, on-chain verifiers).
package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const domainType = "EIP712Domain"

// Domain is the EIP-712 domain separator input. Empty fields are omitted from the
// domain type, as mandated by the standard.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NewDomain returns a domain with every field set.
func NewDomain(name string, version string, chainID uint64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              name,
		Version:           version,
		ChainID:           new(big.Int).SetUint64(chainID),
		VerifyingContract: verifyingContract,
	}
}

// fields returns the EIP712Domain type in canonical field order.
func (d Domain) fields() []apitypes.Type {
	fields := make([]apitypes.Type, 0, 4)
	if d.Name != "" {
		fields = append(fields, apitypes.Type{Name: "name", Type: "string"})
	}
	if d.Version != "" {
		fields = append(fields, apitypes.Type{Name: "version", Type: "string"})
	}
	if d.ChainID != nil {
		fields = append(fields, apitypes.Type{Name: "chainId", Type: "uint256"})
	}
	if d.VerifyingContract != (common.Address{}) {
		fields = append(fields, apitypes.Type{Name: "verifyingContract", Type: "address"})
	}
	return fields
}

func (d Domain) typedDataDomain() apitypes.TypedDataDomain {
	domain := apitypes.TypedDataDomain{
		Name:    d.Name,
		Version: d.Version,
	}
	if d.ChainID != nil {
		domain.ChainId = (*math.HexOrDecimal256)(new(big.Int).Set(d.ChainID))
	}
	if d.VerifyingContract != (common.Address{}) {
		domain.VerifyingContract = d.VerifyingContract.Hex()
	}
	return domain
}

// Separator returns the domain separator hash.
// Expected errors:
//   - SignatureError wrapping ErrMalformedPayload if the domain cannot be encoded
func (d Domain) Separator() (common.Hash, error) {
	typed := apitypes.TypedData{
		Types:  apitypes.Types{domainType: d.fields()},
		Domain: d.typedDataDomain(),
	}
	separator, err := typed.HashStruct(domainType, typed.Domain.Map())
	if err != nil {
		return common.Hash{}, NewSignatureError(fmt.Errorf("could not hash domain: %v: %w", err, ErrMalformedPayload))
	}
	return common.BytesToHash(separator), nil
}

func (d Domain) String() string {
	return fmt.Sprintf("%s/%s chain=%v contract=%s", d.Name, d.Version, d.ChainID, d.VerifyingContract.Hex())
}
