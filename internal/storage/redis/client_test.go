package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_Close(t *testing.T) {
	// The client connects lazily, so Close is safe without a server.
	c := NewClient("localhost:6379", "", 0)

	require.NoError(t, c.Close())
}
