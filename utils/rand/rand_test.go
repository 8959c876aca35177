package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64n(t *testing.T) {
	t.Run("zero bound", func(t *testing.T) {
		_, err := Uint64n(0)
		require.Error(t, err)
	})

	t.Run("bound of one", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			r, err := Uint64n(1)
			require.NoError(t, err)
			require.Zero(t, r)
		}
	})

	t.Run("within bounds", func(t *testing.T) {
		for _, n := range []uint64{2, 3, 7, 10, 1000, 1<<63 + 1} {
			for i := 0; i < 100; i++ {
				r, err := Uint64n(n)
				require.NoError(t, err)
				require.Less(t, r, n)
			}
		}
	})

	// every outcome of a small range shows up
	t.Run("covers range", func(t *testing.T) {
		seen := make(map[uint64]bool)
		for i := 0; i < 1000; i++ {
			r, err := Uint64n(5)
			require.NoError(t, err)
			seen[r] = true
		}
		assert.Len(t, seen, 5)
	})
}

func TestUint64(t *testing.T) {
	a, err := Uint64()
	require.NoError(t, err)
	b, err := Uint64()
	require.NoError(t, err)
	// equal with probability 2^-64
	assert.NotEqual(t, a, b)
}
