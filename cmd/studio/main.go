// Command studio starts the climate agent server and the nsflow web
// client together as one supervised local session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"climatestudio/internal/api"
	"climatestudio/internal/config"
	"climatestudio/internal/docs"
	"climatestudio/internal/launcher"
)

// Exit codes distinguish why the session ended.
const (
	exitOK           = 0
	exitConfig       = 2
	exitStartup      = 3
	exitChildFailure = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, outW, errW io.Writer) int {
	cfg, logLevel, done, err := parseFlags(args, outW)
	if done {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(errW, "configuration error: %v\n", err)
		return exitConfig
	}

	logger := newLogger(logLevel, errW)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errW, "configuration error: %v\n", err)
		return exitConfig
	}

	sess := launcher.NewSession(cfg, logger)

	// Optional status API, shut down after the session ends.
	var statusSrv *http.Server
	if cfg.StatusPort > 0 {
		statusSrv = &http.Server{
			Addr:         net.JoinHostPort("localhost", strconv.Itoa(cfg.StatusPort)),
			Handler:      api.NewRouter(sess, cfg.DocumentsDir, docs.DefaultMaxGroupSize),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("status API listening", "addr", statusSrv.Addr)
			if err := statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status API server", "error", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	runErr := sess.Run(stop)

	if statusSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = statusSrv.Shutdown(ctx)
		cancel()
	}

	var optErr *config.OptionError
	var startErr *launcher.StartupError
	var exitErr *launcher.ChildExitError
	switch {
	case runErr == nil:
		fmt.Fprintln(errW, "session ended cleanly")
		return exitOK
	case errors.As(runErr, &optErr):
		fmt.Fprintf(errW, "configuration error: %v\n", runErr)
		return exitConfig
	case errors.As(runErr, &startErr):
		fmt.Fprintf(errW, "session failed to start: %v\n", runErr)
		return exitStartup
	case errors.As(runErr, &exitErr):
		fmt.Fprintf(errW, "session ended: %v\n", runErr)
		return exitChildFailure
	default:
		fmt.Fprintf(errW, "session error: %v\n", runErr)
		return exitStartup
	}
}

// parseFlags resolves the session configuration: defaults, then
// environment, then the optional YAML session file, then flags. The
// done result is true when usage was printed and the program should
// exit cleanly.
func parseFlags(args []string, outW io.Writer) (*config.Config, string, bool, error) {
	cfg := config.LoadConfig()

	// The session file has to be applied before the remaining flags are
	// bound, so explicit flags win over file values.
	if path := configFileArg(args); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return nil, "", false, err
		}
	}

	fs := flag.NewFlagSet("studio", flag.ContinueOnError)
	fs.SetOutput(outW)
	fs.Usage = func() {
		fmt.Fprint(outW, `studio - runs the climate agent server and the nsflow web client as one local session.

Usage:
  studio [options]

Options:
`)
		fs.PrintDefaults()
	}

	fs.String("config", "", "optional YAML session file")
	fs.StringVar(&cfg.ServerHost, "server-host", cfg.ServerHost, "host the agent server binds to")
	fs.IntVar(&cfg.ServerPort, "server-port", cfg.ServerPort, "port the agent server binds to")
	fs.StringVar(&cfg.ClientHost, "client-host", cfg.ClientHost, "host the web client binds to")
	fs.IntVar(&cfg.ClientPort, "client-port", cfg.ClientPort, "port the web client binds to")
	fs.StringVar(&cfg.ServerCommand, "server-cmd", cfg.ServerCommand, "command starting the agent server")
	fs.StringVar(&cfg.ClientCommand, "client-cmd", cfg.ClientCommand, "command starting the web client")
	serverArgs := fs.String("server-args", "", "extra flags forwarded verbatim to the agent server")
	clientArgs := fs.String("client-args", "", "extra flags forwarded verbatim to the web client")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory for the session log files")
	fs.StringVar(&cfg.ServerLog, "server-log", cfg.ServerLog, "file capturing agent server output")
	fs.StringVar(&cfg.ClientLog, "client-log", cfg.ClientLog, "file capturing web client output")
	fs.BoolVar(&cfg.AppendLogs, "append-logs", cfg.AppendLogs, "append to existing log files instead of truncating")
	fs.StringVar(&cfg.ManifestFile, "manifest-file", cfg.ManifestFile, "agent manifest passed to the server (AGENT_MANIFEST_FILE)")
	fs.StringVar(&cfg.ToolPath, "tool-path", cfg.ToolPath, "coded tool path passed to the server (AGENT_TOOL_PATH)")
	fs.IntVar(&cfg.StatusPort, "status-port", cfg.StatusPort, "port for the launcher status API, 0 disables it")
	fs.StringVar(&cfg.DocumentsDir, "documents", cfg.DocumentsDir, "climate document corpus directory")
	fs.DurationVar(&cfg.ReadyTimeout, "ready-timeout", cfg.ReadyTimeout, "how long to wait for the server before starting the client, 0 skips the wait")
	fs.DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "grace period before a child is killed on shutdown")
	logLevel := fs.String("log-level", "info", "launcher log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, "", true, nil
		}
		return nil, "", false, err
	}

	cfg.ServerArgs = append(cfg.ServerArgs, strings.Fields(*serverArgs)...)
	cfg.ClientArgs = append(cfg.ClientArgs, strings.Fields(*clientArgs)...)

	return cfg, *logLevel, false, nil
}

// boolFlags are the flags that never consume the following argument.
var boolFlags = map[string]bool{"append-logs": true, "h": true, "help": true}

// configFileArg pre-scans the arguments for the session file path,
// which has to be known before the other flags are registered. It
// walks the arguments the way flag.Parse does, so a value that merely
// looks like -config (say, inside -server-args) is never picked up.
func configFileArg(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			return ""
		}
		if arg == "--" {
			return ""
		}
		name := strings.TrimLeft(arg, "-")
		name, value, hasValue := strings.Cut(name, "=")
		if name == "config" {
			if hasValue {
				return value
			}
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		}
		if !hasValue && !boolFlags[name] {
			i++ // skip this flag's value
		}
	}
	return ""
}

func newLogger(levelStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
