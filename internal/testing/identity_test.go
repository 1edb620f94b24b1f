package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandIdentity(t *testing.T) {
	id := RandIdentity()
	require.Len(t, id, 42)
	require.Equal(t, "0x", id[:2])
}

func TestRandString(t *testing.T) {
	require.Len(t, RandString(10), 10)
}
