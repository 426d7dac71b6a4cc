package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type endpointFile struct {
	Host    string   `yaml:"host,omitempty"`
	Port    int      `yaml:"port,omitempty"`
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
	Log     string   `yaml:"log,omitempty"`
}

type logsFile struct {
	Dir string `yaml:"dir,omitempty"`
	// Pointer so an explicit "append: false" overrides an earlier layer.
	Append *bool `yaml:"append,omitempty"`
}

// sessionFile is the YAML session file schema. Every field is optional;
// anything absent keeps its already-resolved value.
type sessionFile struct {
	Server       endpointFile `yaml:"server"`
	Client       endpointFile `yaml:"client"`
	Logs         logsFile     `yaml:"logs"`
	// Pointer so an explicit "status_port: 0" can disable the API.
	StatusPort   *int         `yaml:"status_port,omitempty"`
	DocumentsDir string       `yaml:"documents_dir,omitempty"`
	ManifestFile string       `yaml:"manifest_file,omitempty"`
	ToolPath     string       `yaml:"tool_path,omitempty"`
	ReadySecs    int          `yaml:"ready_timeout,omitempty"`
	StopSecs     int          `yaml:"stop_timeout,omitempty"`
}

// ApplyFile overlays a YAML session file onto the configuration.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &OptionError{Option: "config", Err: err}
	}

	var sf sessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return &OptionError{Option: "config", Err: fmt.Errorf("parsing %s: %w", path, err)}
	}

	applyEndpoint(&sf.Server, &c.ServerHost, &c.ServerPort, &c.ServerCommand, &c.ServerArgs, &c.ServerLog)
	applyEndpoint(&sf.Client, &c.ClientHost, &c.ClientPort, &c.ClientCommand, &c.ClientArgs, &c.ClientLog)

	if sf.Logs.Dir != "" {
		c.LogDir = sf.Logs.Dir
	}
	if sf.Logs.Append != nil {
		c.AppendLogs = *sf.Logs.Append
	}
	if sf.StatusPort != nil {
		c.StatusPort = *sf.StatusPort
	}
	if sf.DocumentsDir != "" {
		c.DocumentsDir = sf.DocumentsDir
	}
	if sf.ManifestFile != "" {
		c.ManifestFile = sf.ManifestFile
	}
	if sf.ToolPath != "" {
		c.ToolPath = sf.ToolPath
	}
	if sf.ReadySecs != 0 {
		c.ReadyTimeout = time.Duration(sf.ReadySecs) * time.Second
	}
	if sf.StopSecs != 0 {
		c.StopTimeout = time.Duration(sf.StopSecs) * time.Second
	}

	return nil
}

func applyEndpoint(src *endpointFile, host *string, port *int, command *string, args *[]string, logName *string) {
	if src.Host != "" {
		*host = src.Host
	}
	if src.Port != 0 {
		*port = src.Port
	}
	if src.Command != "" {
		*command = src.Command
	}
	if len(src.Args) > 0 {
		*args = append([]string(nil), src.Args...)
	}
	if src.Log != "" {
		*logName = src.Log
	}
}
