package utils

import "time"

// DownloadConfig describes one single-file transfer.
type DownloadConfig struct {
	URL        string
	OutputPath string
	// Headers are sent as given; a "Range: bytes=N-" entry resumes at N.
	Headers [][2]string
}

type SessionState string

const (
	StateStarting  SessionState = "starting"
	StateStreaming SessionState = "streaming"
	StateCompleted SessionState = "completed"
	StatePaused    SessionState = "paused"
	StateAborted   SessionState = "aborted"
	StateFailed    SessionState = "failed"
)

// Terminal reports whether no further transitions can happen from s.
func (s SessionState) Terminal() bool {
	switch s {
	case StateCompleted, StatePaused, StateAborted, StateFailed:
		return true
	}
	return false
}

// DownloadResult is what a finished session reports back to its caller.
type DownloadResult struct {
	SessionID  string
	State      SessionState
	Downloaded int64
	Total      int64
	StartTime  time.Time
	FinishTime time.Time
}
