package tap

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// valueBits is the width of receipt values and aggregates (uint128 on the wire).
const valueBits = 128

// ErrValueOutOfRange is returned for values that do not fit in 128 bits.
var ErrValueOutOfRange = errors.New("value exceeds 128 bits")

// MaxValue is the largest representable value, 2^128 - 1.
var MaxValue = func() uint256.Int {
	var v uint256.Int
	v.Lsh(uint256.NewInt(1), valueBits)
	v.SubUint64(&v, 1)
	return v
}()

// NewValue returns a value from a uint64.
func NewValue(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// ValueFromBig converts b to a value.
// Expected errors:
//   - ErrValueOutOfRange if b is negative or wider than 128 bits
func ValueFromBig(b *big.Int) (uint256.Int, error) {
	if b.Sign() < 0 || b.BitLen() > valueBits {
		return uint256.Int{}, fmt.Errorf("%s: %w", b.String(), ErrValueOutOfRange)
	}
	v, _ := uint256.FromBig(b)
	return *v, nil
}

// ValueFromDecimal parses a base-10 value.
func ValueFromDecimal(s string) (uint256.Int, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return uint256.Int{}, fmt.Errorf("invalid decimal value %q", s)
	}
	return ValueFromBig(b)
}

// AddValues returns a + b, and false if the sum does not fit in 128 bits.
func AddValues(a, b *uint256.Int) (uint256.Int, bool) {
	var sum uint256.Int
	_, overflow := sum.AddOverflow(a, b)
	if overflow || sum.BitLen() > valueBits {
		return uint256.Int{}, false
	}
	return sum, true
}

func checkValue(v *uint256.Int) error {
	if v.BitLen() > valueBits {
		return fmt.Errorf("%s: %w", v.ToBig().String(), ErrValueOutOfRange)
	}
	return nil
}

func formatValue(v *uint256.Int) string {
	return v.ToBig().String()
}
