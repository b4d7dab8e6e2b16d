// Package events defines the lifecycle notifications a download session
// emits and the sinks that receive them. Delivery is best-effort: a sink
// error is logged by the session and never changes its outcome.
package events

import "fmt"

type Kind int

const (
	Started Kind = iota
	Progress
	Paused
	Completed
	Aborted
	RateLimitExceeded
)

var kindNames = map[Kind]string{
	Started:           "started",
	Progress:          "progress",
	Paused:            "paused",
	Completed:         "completed",
	Aborted:           "aborted",
	RateLimitExceeded: "rate_limit_exceeded",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a single notification. Only the fields of its Kind are set:
// Path and ContentLength for Started, the progress figures for Progress.
type Event struct {
	Kind      Kind
	URL       string
	SessionID string

	Path          string
	ContentLength int64

	ProgressPercentage float64
	DownloadedBytes    int64
	DownloadSpeed      int64 // bytes per second, this session only
	ETA                int64 // seconds
}

func NewStarted(sessionID, url, path string, contentLength int64) Event {
	return Event{Kind: Started, SessionID: sessionID, URL: url, Path: path, ContentLength: contentLength}
}

func NewProgress(sessionID, url string, percentage float64, downloaded, speed, eta int64) Event {
	return Event{
		Kind:               Progress,
		SessionID:          sessionID,
		URL:                url,
		ProgressPercentage: percentage,
		DownloadedBytes:    downloaded,
		DownloadSpeed:      speed,
		ETA:                eta,
	}
}

func NewPaused(sessionID, url string) Event {
	return Event{Kind: Paused, SessionID: sessionID, URL: url}
}

func NewCompleted(sessionID, url string) Event {
	return Event{Kind: Completed, SessionID: sessionID, URL: url}
}

func NewAborted(sessionID, url string) Event {
	return Event{Kind: Aborted, SessionID: sessionID, URL: url}
}

func NewRateLimitExceeded(sessionID, url string) Event {
	return Event{Kind: RateLimitExceeded, SessionID: sessionID, URL: url}
}
