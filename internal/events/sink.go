package events

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Sink observes session events.
type Sink interface {
	Emit(Event) error
}

type SinkFunc func(Event) error

func (f SinkFunc) Emit(e Event) error {
	return f(e)
}

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) error { return nil })

type multiSink []Sink

// Multi fans an event out to every sink, even when one of them fails.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Emit(e Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type logSink struct {
	logger zerolog.Logger
}

// NewLogSink writes events to a zerolog logger; progress goes to debug level.
func NewLogSink(logger zerolog.Logger) Sink {
	return &logSink{logger: logger}
}

func (l *logSink) Emit(e Event) error {
	ev := l.logger.Info()
	if e.Kind == Progress {
		ev = l.logger.Debug()
	} else if e.Kind == RateLimitExceeded {
		ev = l.logger.Warn()
	}
	ev = ev.Str("op", "events/log").Str("event", e.Kind.String()).Str("url", e.URL).Str("session", e.SessionID)
	switch e.Kind {
	case Started:
		ev = ev.Str("path", e.Path).Int64("contentLength", e.ContentLength)
	case Progress:
		ev = ev.Float64("percentage", e.ProgressPercentage).
			Int64("downloaded", e.DownloadedBytes).
			Int64("speed", e.DownloadSpeed).
			Int64("eta", e.ETA)
	}
	ev.Msg("Download event")
	return nil
}

type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSink writes one JSON document per event:
// {"type":"progress","data":{"url":...,"progress_percentage":...}}.
func NewJSONSink(w io.Writer) Sink {
	return &jsonSink{enc: json.NewEncoder(w)}
}

type wireEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type wireStarted struct {
	URL           string `json:"url"`
	Path          string `json:"path"`
	ContentLength int64  `json:"content_length"`
}

type wireProgress struct {
	URL                string  `json:"url"`
	ProgressPercentage float64 `json:"progress_percentage"`
	DownloadedBytes    int64   `json:"downloaded_bytes"`
	DownloadSpeed      int64   `json:"download_speed"`
	ETA                int64   `json:"eta"`
}

type wireURL struct {
	URL string `json:"url"`
}

func (j *jsonSink) Emit(e Event) error {
	out := wireEvent{Type: e.Kind.String()}
	switch e.Kind {
	case Started:
		out.Data = wireStarted{URL: e.URL, Path: e.Path, ContentLength: e.ContentLength}
	case Progress:
		out.Data = wireProgress{
			URL:                e.URL,
			ProgressPercentage: e.ProgressPercentage,
			DownloadedBytes:    e.DownloadedBytes,
			DownloadSpeed:      e.DownloadSpeed,
			ETA:                e.ETA,
		}
	default:
		out.Data = wireURL{URL: e.URL}
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(out)
}
