package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStorageContract checks the behavior every backend must share.
func testStorageContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "@RocketShoes:cart", `[{"id":1,"amount":1}]`))

		value, err := s.Get(ctx, "@RocketShoes:cart")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":1,"amount":1}]`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "overwrite", "first"))
		require.NoError(t, s.Set(ctx, "overwrite", "second"))

		value, err := s.Get(ctx, "overwrite")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "a", "1"))
		require.NoError(t, s.Set(ctx, "b", "2"))

		a, err := s.Get(ctx, "a")
		require.NoError(t, err)
		b, err := s.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "1", a)
		assert.Equal(t, "2", b)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "empty", ""))

		value, err := s.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

func TestMemory(t *testing.T) {
	testStorageContract(t, NewMemory())
}
