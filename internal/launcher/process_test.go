package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startProcess(t *testing.T, role Role, logPath string, appendLog bool, script string) *ManagedProcess {
	t.Helper()
	p := newManagedProcess(role, []string{"/bin/sh", "-c", script}, os.Environ(), logPath, appendLog)
	require.NoError(t, p.Start())
	return p
}

func TestManagedProcessCapturesOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "server.log")
	p := startProcess(t, RoleServer, logPath, false, "echo server says hi; echo oops >&2")

	select {
	case err := <-p.Done():
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	assert.Equal(t, StateExited, p.State())
	assert.Equal(t, 0, p.ExitCode())
	assert.Equal(t, 0, p.Pid())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server says hi")
	assert.Contains(t, string(data), "oops")
}

func TestManagedProcessExitCode(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "server.log")
	p := startProcess(t, RoleServer, logPath, false, "exit 7")

	select {
	case err := <-p.Done():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}

	assert.Equal(t, StateExited, p.State())
	assert.Equal(t, 7, p.ExitCode())
}

func TestManagedProcessStartFailure(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "server.log")
	p := newManagedProcess(RoleServer, []string{filepath.Join(t.TempDir(), "missing")}, os.Environ(), logPath, false)

	assert.Error(t, p.Start())
	assert.Equal(t, StateFailed, p.State())
}

func TestManagedProcessUnwritableLog(t *testing.T) {
	p := newManagedProcess(RoleServer, []string{"/bin/sh", "-c", "true"}, os.Environ(),
		filepath.Join(t.TempDir(), "no-such-dir", "server.log"), false)

	err := p.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.log")
	assert.Equal(t, StateFailed, p.State())
}

func TestManagedProcessStopGraceful(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "client.log")
	p := startProcess(t, RoleClient, logPath, false, "sleep 60")

	start := time.Now()
	assert.NoError(t, p.Stop(5*time.Second))
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, StateExited, p.State())
}

func TestManagedProcessStopEscalatesToKill(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "client.log")
	p := startProcess(t, RoleClient, logPath, false, "trap '' TERM; echo ready; sleep 5")

	// Wait for the trap to be installed before signaling, otherwise the
	// shell may receive SIGTERM first and exit gracefully.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && len(data) > 0
	}, 5*time.Second, 10*time.Millisecond)

	err := p.Stop(300 * time.Millisecond)
	assert.ErrorIs(t, err, ErrStopTimeout)
	assert.Equal(t, StateExited, p.State())
}

func TestManagedProcessStopAfterExitIsNoop(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "server.log")
	p := startProcess(t, RoleServer, logPath, false, "true")

	<-p.Done()
	assert.NoError(t, p.Stop(time.Second))
}

func TestManagedProcessLogTruncateAndAppend(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "server.log")

	run := func(appendLog bool) {
		p := startProcess(t, RoleServer, logPath, appendLog, "echo line")
		<-p.Done()
	}

	run(false)
	run(true)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "line\nline\n", string(data))

	run(false)
	data, err = os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
