package utils

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSaltNonce(t *testing.T) {
	t.Run("ProducesThirtyTwoBytes", func(t *testing.T) {
		salt, err := GenerateSaltNonce("user-1")
		require.NoError(t, err)

		raw, err := hexutil.Decode(salt)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	})

	t.Run("DistinctPerInvocation", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			salt, err := GenerateSaltNonce("user-1")
			require.NoError(t, err)
			_, duplicate := seen[salt]
			require.False(t, duplicate, "salt repeated: %s", salt)
			seen[salt] = struct{}{}
		}
	})

	t.Run("DistinctAcrossUsers", func(t *testing.T) {
		first, err := GenerateSaltNonce("user-1")
		require.NoError(t, err)
		second, err := GenerateSaltNonce("user-2")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})
}
