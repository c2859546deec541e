package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGatewayLocalMode(t *testing.T) {
	gw, err := NewGateway()
	require.NoError(t, err)
	defer gw.Shutdown()

	assert.True(t, gw.Config.IsLocalMode())
	assert.Nil(t, gw.RedisClient)
	assert.Equal(t, "memory", gw.source.Name())
}

func TestShutdownBeforeStartDoesNotPanic(t *testing.T) {
	gw, err := NewGateway()
	require.NoError(t, err)

	// No HTTP server is running yet; teardown must still be safe.
	gw.Shutdown()
}
