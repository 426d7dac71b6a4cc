package launcher

import (
	"net"
	"time"
)

const readinessPollInterval = 250 * time.Millisecond

// waitForServer polls the server address until it accepts TCP
// connections or the timeout elapses. Best effort: callers proceed
// either way, this only bounds how long they wait.
func waitForServer(addr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, readinessPollInterval)
		if err == nil {
			conn.Close()
			return true
		}
		time.Sleep(readinessPollInterval)
	}
	return false
}
