package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Role identifies which side of the session a child process plays.
type Role string

const (
	RoleServer Role = "server"
	RoleClient Role = "client"
)

// State is the last known liveness state of a managed process.
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateExited   State = "exited"
	StateFailed   State = "failed"
)

// ErrStopTimeout reports that a child ignored the graceful termination
// request and had to be killed.
var ErrStopTimeout = errors.New("process did not stop within grace period")

// ManagedProcess is one supervised child of the session. Its combined
// stdout and stderr are redirected to a dedicated log file.
type ManagedProcess struct {
	role      Role
	argv      []string
	env       []string
	logPath   string
	appendLog bool

	mu        sync.Mutex
	cmd       *exec.Cmd
	logFile   *os.File
	state     State
	pid       int
	startTime time.Time
	exitCode  int

	done chan error
}

func newManagedProcess(role Role, argv, env []string, logPath string, appendLog bool) *ManagedProcess {
	return &ManagedProcess{
		role:      role,
		argv:      argv,
		env:       env,
		logPath:   logPath,
		appendLog: appendLog,
		state:     StateStarting,
		done:      make(chan error, 1),
	}
}

// Start opens the log file, launches the child and begins waiting for
// its exit in the background.
func (p *ManagedProcess) Start() error {
	flags := os.O_CREATE | os.O_WRONLY
	if p.appendLog {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	logFile, err := os.OpenFile(p.logPath, flags, 0o644)
	if err != nil {
		p.setState(StateFailed)
		return fmt.Errorf("opening log file %s: %w", p.logPath, err)
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = p.env

	if err := cmd.Start(); err != nil {
		logFile.Close()
		p.setState(StateFailed)
		return err
	}

	p.mu.Lock()
	p.cmd = cmd
	p.logFile = logFile
	p.state = StateRunning
	p.pid = cmd.Process.Pid
	p.startTime = time.Now()
	p.mu.Unlock()

	go p.wait()

	return nil
}

// wait blocks on the child's exit and records its outcome. The log
// file is closed best effort once no more output can arrive.
func (p *ManagedProcess) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	if p.cmd.ProcessState != nil {
		p.exitCode = p.cmd.ProcessState.ExitCode()
	}
	p.state = StateExited
	p.pid = 0
	if p.logFile != nil {
		_ = p.logFile.Close()
		p.logFile = nil
	}
	p.mu.Unlock()

	p.done <- err
}

// Done delivers the child's exit result exactly once.
func (p *ManagedProcess) Done() <-chan error {
	return p.done
}

// Stop requests graceful termination and escalates to a hard kill when
// the child has not exited within the grace period. Calling Stop on a
// process that already exited is a no-op.
func (p *ManagedProcess) Stop(grace time.Duration) error {
	p.mu.Lock()
	if p.state != StateRunning || p.cmd == nil || p.cmd.Process == nil {
		p.mu.Unlock()
		return nil
	}
	proc := p.cmd.Process
	p.mu.Unlock()

	// A failed signal usually means the child just exited; the waiter
	// will deliver the result either way.
	_ = proc.Signal(syscall.SIGTERM)

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
		_ = proc.Kill()
		<-p.done
		return ErrStopTimeout
	}
}

func (p *ManagedProcess) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *ManagedProcess) Role() Role { return p.role }

func (p *ManagedProcess) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *ManagedProcess) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *ManagedProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *ManagedProcess) LogPath() string { return p.logPath }

// Uptime reports how long the child has been running, zero once it is
// no longer alive.
func (p *ManagedProcess) Uptime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateRunning || p.startTime.IsZero() {
		return 0
	}
	return time.Since(p.startTime)
}
