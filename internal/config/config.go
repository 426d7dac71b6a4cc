package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultServerHost = "localhost"
	DefaultServerPort = 30011
	DefaultClientHost = "localhost"
	DefaultClientPort = 4173

	DefaultServerCommand = "python3 -m neuro_san.service.main_loop.server_main_loop"
	DefaultClientCommand = "python3 -m nsflow.run"

	DefaultLogDir       = "logs"
	DefaultServerLog    = "server.log"
	DefaultClientLog    = "nsflow.log"
	DefaultDocumentsDir = "documents"

	DefaultReadyTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Config is the fully resolved set of options for one session. It is
// built once from defaults, environment, an optional session file and
// command-line flags, and never mutated after the session starts.
type Config struct {
	ServerHost string
	ServerPort int
	ClientHost string
	ClientPort int

	ServerCommand string
	ClientCommand string
	ServerArgs    []string
	ClientArgs    []string

	LogDir     string
	ServerLog  string
	ClientLog  string
	AppendLogs bool

	// Passed through to the agent server's environment.
	ManifestFile string
	ToolPath     string

	StatusPort   int
	DocumentsDir string

	ReadyTimeout time.Duration
	StopTimeout  time.Duration
}

// OptionError reports an invalid configuration option by name so the
// operator knows which flag to fix.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid -%s: %v", e.Option, e.Err)
}

func (e *OptionError) Unwrap() error { return e.Err }

// LoadConfig returns the built-in defaults overlaid with the
// environment variables the studio recognizes.
func LoadConfig() *Config {
	cfg := &Config{
		ServerHost:    DefaultServerHost,
		ServerPort:    DefaultServerPort,
		ClientHost:    DefaultClientHost,
		ClientPort:    DefaultClientPort,
		ServerCommand: DefaultServerCommand,
		ClientCommand: DefaultClientCommand,
		LogDir:        DefaultLogDir,
		ServerLog:     DefaultServerLog,
		ClientLog:     DefaultClientLog,
		DocumentsDir:  DefaultDocumentsDir,
		ReadyTimeout:  DefaultReadyTimeout,
		StopTimeout:   DefaultStopTimeout,
	}

	cfg.ManifestFile = os.Getenv("AGENT_MANIFEST_FILE")
	cfg.ToolPath = os.Getenv("AGENT_TOOL_PATH")

	if v := os.Getenv("STUDIO_STATUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.StatusPort = port
		}
	}

	return cfg
}

// Validate checks the resolved configuration before anything is
// started. The first offending option is reported by name.
func (c *Config) Validate() error {
	if err := validPort(c.ServerPort); err != nil {
		return &OptionError{Option: "server-port", Err: err}
	}
	if err := validPort(c.ClientPort); err != nil {
		return &OptionError{Option: "client-port", Err: err}
	}
	if c.ServerHost == c.ClientHost && c.ServerPort == c.ClientPort {
		return &OptionError{Option: "client-port", Err: errors.New("client address collides with server address")}
	}
	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return &OptionError{Option: "status-port", Err: fmt.Errorf("port %d out of range", c.StatusPort)}
	}
	if strings.TrimSpace(c.ServerCommand) == "" {
		return &OptionError{Option: "server-cmd", Err: errors.New("command is required")}
	}
	if strings.TrimSpace(c.ClientCommand) == "" {
		return &OptionError{Option: "client-cmd", Err: errors.New("command is required")}
	}
	if c.LogDir == "" {
		return &OptionError{Option: "log-dir", Err: errors.New("directory is required")}
	}
	if c.StopTimeout <= 0 {
		return &OptionError{Option: "stop-timeout", Err: errors.New("grace period must be positive")}
	}
	return nil
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

// ServerAddr is the address the readiness wait dials.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

// ClientAddr is the address the web client advertises to the browser.
func (c *Config) ClientAddr() string {
	return net.JoinHostPort(c.ClientHost, strconv.Itoa(c.ClientPort))
}

// ServerCommandLine builds the full argv for the agent server process:
// the configured command, the resolved bind address, then any
// passthrough args. The host must match what the readiness wait dials.
func (c *Config) ServerCommandLine() []string {
	argv := strings.Fields(c.ServerCommand)
	argv = append(argv, "--host", c.ServerHost, "--port", strconv.Itoa(c.ServerPort))
	return append(argv, c.ServerArgs...)
}

// ClientCommandLine builds the full argv for the web client process.
// The client itself knows how to reach the server's address.
func (c *Config) ClientCommandLine() []string {
	argv := strings.Fields(c.ClientCommand)
	argv = append(argv, "--host", c.ClientHost, "--port", strconv.Itoa(c.ClientPort))
	return append(argv, c.ClientArgs...)
}

// ServerEnv is the agent server's environment: the launcher's own,
// plus the agent manifest and tool path when configured.
func (c *Config) ServerEnv() []string {
	env := os.Environ()
	if c.ManifestFile != "" {
		env = append(env, "AGENT_MANIFEST_FILE="+c.ManifestFile)
	}
	if c.ToolPath != "" {
		env = append(env, "AGENT_TOOL_PATH="+c.ToolPath)
	}
	return env
}

// ClientEnv is the web client's environment.
func (c *Config) ClientEnv() []string {
	return os.Environ()
}
