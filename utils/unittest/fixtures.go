package unittest

import (
	"crypto/ecdsa"
	"crypto/rand"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
	tapRand "github.com/tapnet/tap-core/utils/rand"
)

// TestChainID is the chain id used by DomainFixture.
const TestChainID = 1337

func noError(err error) {
	if err != nil {
		panic(err)
	}
}

func AddressFixture() common.Address {
	var address common.Address
	_, err := rand.Read(address[:])
	noError(err)
	return address
}

func KeyFixture() *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	noError(err)
	return key
}

// KeyAddress returns the address controlled by key.
func KeyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func DomainFixture() eip712.Domain {
	return tap.NewDomain(TestChainID, AddressFixture())
}

func WithAllocationID(allocationID common.Address) func(*tap.Receipt) {
	return func(r *tap.Receipt) {
		r.AllocationID = allocationID
	}
}

func WithTimestampNs(ts uint64) func(*tap.Receipt) {
	return func(r *tap.Receipt) {
		r.TimestampNs = ts
	}
}

func WithNonce(nonce uint64) func(*tap.Receipt) {
	return func(r *tap.Receipt) {
		r.Nonce = nonce
	}
}

func WithValue(value uint64) func(*tap.Receipt) {
	return func(r *tap.Receipt) {
		r.Value = *uint256.NewInt(value)
	}
}

func WithValueInt(value uint256.Int) func(*tap.Receipt) {
	return func(r *tap.Receipt) {
		r.Value = value
	}
}

// ReceiptFixture returns a receipt with random allocation, nonce and value.
func ReceiptFixture(opts ...func(*tap.Receipt)) tap.Receipt {
	nonce, err := tapRand.Uint64()
	noError(err)
	value, err := tapRand.Uint64n(1_000_000)
	noError(err)

	receipt := tap.Receipt{
		AllocationID: AddressFixture(),
		TimestampNs:  uint64(time.Now().UnixNano()),
		Nonce:        nonce,
		Value:        *uint256.NewInt(value + 1),
	}
	for _, apply := range opts {
		apply(&receipt)
	}
	return receipt
}

// SignedReceiptFixture returns a receipt signed by key under domain.
func SignedReceiptFixture(domain eip712.Domain, key *ecdsa.PrivateKey, opts ...func(*tap.Receipt)) *tap.SignedReceipt {
	signed, err := tap.SignReceipt(domain, ReceiptFixture(opts...), key)
	noError(err)
	return signed
}

// RAVFixture returns a voucher for the allocation.
func RAVFixture(allocationID common.Address, ts uint64, value uint64) tap.RAV {
	return tap.RAV{
		AllocationID:   allocationID,
		TimestampNs:    ts,
		ValueAggregate: *uint256.NewInt(value),
	}
}
