package models

// ProcessInfo describes one supervised child process of the session.
type ProcessInfo struct {
	Role    string `json:"role"`
	Status  string `json:"status"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	LogFile string `json:"log_file"`
}

// SessionInfo describes the running launcher session.
type SessionInfo struct {
	StartedAt  string        `json:"started_at"`
	ServerAddr string        `json:"server_addr"`
	ClientAddr string        `json:"client_addr"`
	Processes  []ProcessInfo `json:"processes"`
}

// Event is one entry in the launcher's own event log.
type Event struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Role      string `json:"role,omitempty"`
}

// DocumentGroup is one bounded group of corpus documents.
type DocumentGroup struct {
	Group int      `json:"group"`
	Files []string `json:"files"`
}
