package stdmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	pool := NewBackend[string, int]()
	put := func(key string, value int) {
		err := pool.Run(func(entities map[string]int) error {
			entities[key] = value
			return nil
		})
		require.NoError(t, err)
	}
	put("DEAD", 1)
	put("AGAIN", 2)

	t.Run("should be able to get", func(t *testing.T) {
		value, ok := pool.Get("DEAD")
		assert.True(t, ok)
		assert.Equal(t, 1, value)

		_, ok = pool.Get("MISSING")
		assert.False(t, ok)
	})

	t.Run("should be able to get size", func(t *testing.T) {
		assert.EqualValues(t, uint(2), pool.Size())
	})

	t.Run("should pass through run errors", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := pool.Run(func(map[string]int) error { return sentinel })
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("should return a copy of all", func(t *testing.T) {
		items := pool.All()
		require.Len(t, items, 2)
		items["DEAD"] = 10

		value, _ := pool.Get("DEAD")
		assert.Equal(t, 1, value)
	})
}
