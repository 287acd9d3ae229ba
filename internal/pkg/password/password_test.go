package password

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("12345678")
	require.NoError(t, err)
	require.NotEqual(t, "12345678", hash)

	require.NoError(t, Compare(hash, "12345678"))
	require.Error(t, Compare(hash, "87654321"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("12345678")
	require.NoError(t, err)
	second, err := Hash("12345678")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
