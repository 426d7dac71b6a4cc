// Package launcher starts and supervises the agent server and the
// nsflow web client as one coordinated local session: server first,
// client second, joint teardown in reverse order.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"climatestudio/internal/config"
	"climatestudio/internal/models"
)

const eventLogSize = 1000

// StartupError reports that a child process could not be launched.
type StartupError struct {
	Role Role
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("starting %s process: %v", e.Role, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ChildExitError reports that a child process exited on its own while
// the session was active.
type ChildExitError struct {
	Role Role
	Code int
}

func (e *ChildExitError) Error() string {
	return fmt.Sprintf("%s process exited unexpectedly (exit code %d)", e.Role, e.Code)
}

// Session owns the two managed processes and the resolved
// configuration for one launcher invocation.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger
	events *EventLog

	mu        sync.RWMutex
	startedAt time.Time
	server    *ManagedProcess
	client    *ManagedProcess
}

func NewSession(cfg *config.Config, logger *slog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		logger: logger,
		events: NewEventLog(eventLogSize),
	}
}

// Run starts the session and blocks until an operator stop signal
// arrives or either child exits on its own. It returns nil for an
// operator-initiated stop, a StartupError or ChildExitError otherwise.
// Both children are terminated (client before server) on every path.
func (s *Session) Run(stop <-chan os.Signal) error {
	if err := os.MkdirAll(s.cfg.LogDir, 0o755); err != nil {
		return &config.OptionError{Option: "log-dir", Err: err}
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	server := newManagedProcess(RoleServer, s.cfg.ServerCommandLine(), s.cfg.ServerEnv(),
		filepath.Join(s.cfg.LogDir, s.cfg.ServerLog), s.cfg.AppendLogs)
	s.event(slog.LevelInfo, RoleServer, "starting agent server", "addr", s.cfg.ServerAddr(), "log", server.LogPath())

	if err := server.Start(); err != nil {
		s.event(slog.LevelError, RoleServer, "agent server failed to start", "error", err)
		return &StartupError{Role: RoleServer, Err: err}
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()
	s.event(slog.LevelInfo, RoleServer, "agent server running", "pid", server.Pid())

	if s.cfg.ReadyTimeout > 0 {
		if waitForServer(s.cfg.ServerAddr(), s.cfg.ReadyTimeout) {
			s.event(slog.LevelInfo, RoleServer, "agent server accepting connections")
		} else {
			s.event(slog.LevelWarn, RoleServer, "agent server not accepting connections yet, starting client anyway",
				"waited", s.cfg.ReadyTimeout.String())
		}
	}

	client := newManagedProcess(RoleClient, s.cfg.ClientCommandLine(), s.cfg.ClientEnv(),
		filepath.Join(s.cfg.LogDir, s.cfg.ClientLog), s.cfg.AppendLogs)
	s.event(slog.LevelInfo, RoleClient, "starting web client", "addr", s.cfg.ClientAddr(), "log", client.LogPath())

	if err := client.Start(); err != nil {
		s.event(slog.LevelError, RoleClient, "web client failed to start", "error", err)
		s.stopProcess(server)
		return &StartupError{Role: RoleClient, Err: err}
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.event(slog.LevelInfo, RoleClient, "web client running", "pid", client.Pid())

	var cause error
	select {
	case sig := <-stop:
		s.event(slog.LevelInfo, "", "received stop signal, shutting down session", "signal", sig.String())
	case <-server.Done():
		cause = &ChildExitError{Role: RoleServer, Code: server.ExitCode()}
		s.event(slog.LevelWarn, RoleServer, "agent server exited unexpectedly", "code", server.ExitCode())
	case <-client.Done():
		cause = &ChildExitError{Role: RoleClient, Code: client.ExitCode()}
		s.event(slog.LevelWarn, RoleClient, "web client exited unexpectedly", "code", client.ExitCode())
	}

	// Teardown is client first, then server, so the client never talks
	// to an already-stopped server.
	s.stopProcess(client)
	s.stopProcess(server)
	s.event(slog.LevelInfo, "", "session ended")

	return cause
}

func (s *Session) stopProcess(p *ManagedProcess) {
	if p == nil || p.State() != StateRunning {
		return
	}
	s.event(slog.LevelInfo, p.Role(), "stopping process", "pid", p.Pid())
	if err := p.Stop(s.cfg.StopTimeout); err != nil {
		s.event(slog.LevelWarn, p.Role(), "process ignored termination request, killed",
			"grace", s.cfg.StopTimeout.String())
	}
}

// Snapshot reports the session and its two processes for the status API.
func (s *Session) Snapshot() models.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := models.SessionInfo{
		ServerAddr: s.cfg.ServerAddr(),
		ClientAddr: s.cfg.ClientAddr(),
		Processes:  []models.ProcessInfo{},
	}
	if !s.startedAt.IsZero() {
		info.StartedAt = s.startedAt.Format(time.RFC3339)
	}
	for _, p := range []*ManagedProcess{s.server, s.client} {
		if p == nil {
			continue
		}
		info.Processes = append(info.Processes, models.ProcessInfo{
			Role:    string(p.Role()),
			Status:  string(p.State()),
			Pid:     p.Pid(),
			Uptime:  formatUptime(p.Uptime()),
			LogFile: p.LogPath(),
		})
	}
	return info
}

// Ready reports whether both children are currently running.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server != nil && s.server.State() == StateRunning &&
		s.client != nil && s.client.State() == StateRunning
}

// Events returns up to n recent launcher events, oldest first.
func (s *Session) Events(n int) []models.Event {
	return s.events.Last(n)
}

// event records a launcher event both in the structured log and in the
// ring buffer behind the status API.
func (s *Session) event(level slog.Level, role Role, msg string, args ...any) {
	attrs := args
	if role != "" {
		attrs = append([]any{"role", string(role)}, attrs...)
	}
	s.logger.Log(context.Background(), level, msg, attrs...)

	s.events.Add(models.Event{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Role:      string(role),
	})
}

func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	d = d.Round(time.Second)

	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	seconds := (d - minutes*time.Minute) / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
