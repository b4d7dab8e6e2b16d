package resumerhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/resumer/internal/control"
	"github.com/tanq16/resumer/internal/events"
	"github.com/tanq16/resumer/internal/utils"
)

type Options struct {
	HTTPClientConfig utils.HTTPClientConfig
	// Client overrides the client built from HTTPClientConfig.
	Client utils.HTTPDoer
	// Signals is shared with whoever issues pause and abort requests.
	Signals *control.Store
	Sink    events.Sink
	// ProgressInterval is the minimum time between checkpoints. Zero makes
	// every chunk a checkpoint.
	ProgressInterval time.Duration
	BufferSize       int
}

// errAlreadyComplete means the partial file already holds the whole resource.
var errAlreadyComplete = errors.New("file already complete")

func DefaultOptions() Options {
	return Options{
		ProgressInterval: utils.DefaultProgressInterval,
		BufferSize:       utils.DefaultBufferSize,
	}
}

// Downloader runs single-file sessions. Sessions for different URLs may run
// concurrently; a second session for a URL already in flight is refused.
type Downloader struct {
	opts    Options
	client  utils.HTTPDoer
	signals *control.Store
	sink    events.Sink
	now     func() time.Time
}

func NewDownloader(opts Options) *Downloader {
	if opts.BufferSize <= 0 {
		opts.BufferSize = utils.DefaultBufferSize
	}
	if opts.ProgressInterval < 0 {
		opts.ProgressInterval = 0
	}
	client := opts.Client
	if client == nil {
		client = utils.NewResumerHTTPClient(opts.HTTPClientConfig)
	}
	signals := opts.Signals
	if signals == nil {
		signals = control.NewStore()
	}
	sink := opts.Sink
	if sink == nil {
		sink = events.Discard
	}
	return &Downloader{
		opts:    opts,
		client:  client,
		signals: signals,
		sink:    sink,
		now:     time.Now,
	}
}

// RequestAbort asks the session for url to stop and delete its output at
// its next checkpoint.
func (d *Downloader) RequestAbort(url string) {
	log.Debug().Str("op", "http/initial").Msgf("Abort requested for %s", url)
	d.signals.RequestAbort(url)
}

// RequestPause asks the session for url to stop and keep its partial output
// at its next checkpoint.
func (d *Downloader) RequestPause(url string) {
	log.Debug().Str("op", "http/initial").Msgf("Pause requested for %s", url)
	d.signals.RequestPause(url)
}

func validateURL(link string) error {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %q", parsedURL.Scheme)
	}
	return nil
}

// openStream issues the GET and checks the response before any byte is
// read. restart is set when a resume was asked for but the server sent the
// whole resource.
func (d *Downloader) openStream(ctx context.Context, s *session, headers http.Header) (resp *http.Response, restart bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("error creating GET request: %w", err)
	}
	req.Header = headers
	resp, err = d.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("error executing GET request: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && s.downloaded > 0:
		resp.Body.Close()
		if size, ok := utils.CompletedLength(resp.Header); ok && size == s.downloaded {
			return nil, false, errAlreadyComplete
		}
		return nil, false, fmt.Errorf("%w: %d for range starting at %d", utils.ErrUnexpectedStatus, resp.StatusCode, s.downloaded)
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		d.emit(events.NewRateLimitExceeded(s.id, s.url))
		return nil, false, fmt.Errorf("%w: %s", utils.ErrRateLimited, s.url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, false, fmt.Errorf("%w: %d", utils.ErrUnexpectedStatus, resp.StatusCode)
	case resp.ContentLength < 0:
		resp.Body.Close()
		return nil, false, utils.ErrUnknownContentLength
	}

	if s.downloaded > 0 && resp.StatusCode != http.StatusPartialContent {
		log.Warn().Str("op", "http/initial").Msgf("Server does not support resume (status %d). Restarting download.", resp.StatusCode)
		return resp, true, nil
	}
	return resp, false, nil
}

func (d *Downloader) emit(e events.Event) {
	if err := d.sink.Emit(e); err != nil {
		log.Warn().Str("op", "http/initial").Err(err).Msgf("Dropped %s event for %s", e.Kind, e.URL)
	}
}
