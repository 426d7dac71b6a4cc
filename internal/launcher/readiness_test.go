package launcher

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unusedAddr returns a localhost address nothing is listening on.
func unusedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestWaitForServerReady(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	start := time.Now()
	assert.True(t, waitForServer(ln.Addr().String(), 5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second, "an accepting listener must be observed well before the bound")
}

func TestWaitForServerTimesOut(t *testing.T) {
	start := time.Now()
	ready := waitForServer(unusedAddr(t), 500*time.Millisecond)

	assert.False(t, ready)
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
	assert.Less(t, elapsed, 3*time.Second, "the wait must stay bounded")
}
