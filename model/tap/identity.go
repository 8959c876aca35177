package tap

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ReceiptID identifies a signed receipt. It is derived from the signed content, see
// SignedReceipt.ID.
type ReceiptID [32]byte

// ZeroReceiptID is the lowest value in the 32-byte ID space.
var ZeroReceiptID = ReceiptID{}

func (id ReceiptID) String() string {
	return hexutil.Encode(id[:])
}

func (id ReceiptID) MarshalText() ([]byte, error) {
	return hexutil.Bytes(id[:]).MarshalText()
}

func (id *ReceiptID) UnmarshalText(input []byte) error {
	return decodeHash32(input, (*[32]byte)(id))
}

// UniqueKey is the dedup identity (signer, allocation, nonce, timestamp) of a receipt.
type UniqueKey [32]byte

func (k UniqueKey) String() string {
	return hexutil.Encode(k[:])
}

func (k UniqueKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(k[:]).MarshalText()
}

func (k *UniqueKey) UnmarshalText(input []byte) error {
	return decodeHash32(input, (*[32]byte)(k))
}

func decodeHash32(input []byte, out *[32]byte) error {
	var raw hexutil.Bytes
	if err := raw.UnmarshalText(input); err != nil {
		return err
	}
	if len(raw) != len(out) {
		return fmt.Errorf("invalid identifier length %d, expected %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return nil
}
