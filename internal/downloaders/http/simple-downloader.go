package resumerhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/resumer/internal/events"
	"github.com/tanq16/resumer/internal/filesink"
	"github.com/tanq16/resumer/internal/utils"
)

// session is the state of one transfer, owned by the goroutine running it.
type session struct {
	id           string
	url          string
	path         string
	state        utils.SessionState
	total        int64
	downloaded   int64
	sessionStart int64
	startedAt    time.Time
	lastEmit     time.Time
}

func (s *session) result(finishedAt time.Time) utils.DownloadResult {
	return utils.DownloadResult{
		SessionID:  s.id,
		State:      s.state,
		Downloaded: s.downloaded,
		Total:      s.total,
		StartTime:  s.startedAt,
		FinishTime: finishedAt,
	}
}

// Download runs one session to a terminal state. Completed, Paused and
// Aborted return a nil error; anything else is a failure that leaves the
// partial file on disk. Pause and abort requests are honoured at
// checkpoints, so they take effect within one progress interval plus one
// chunk read.
func (d *Downloader) Download(ctx context.Context, cfg utils.DownloadConfig) (utils.DownloadResult, error) {
	s := &session{
		id:    uuid.NewString(),
		url:   cfg.URL,
		path:  cfg.OutputPath,
		state: utils.StateStarting,
	}
	if err := d.run(ctx, s, cfg); err != nil {
		s.state = utils.StateFailed
		log.Error().Str("op", "http/simple-downloader").Err(err).Msgf("Download failed for %s", s.url)
		return s.result(d.now()), err
	}
	return s.result(d.now()), nil
}

func (d *Downloader) run(ctx context.Context, s *session, cfg utils.DownloadConfig) error {
	if err := validateURL(s.url); err != nil {
		return err
	}
	if s.path == "" {
		return fmt.Errorf("no output path for %s", s.url)
	}
	pairs := append(append([][2]string{}, d.opts.HTTPClientConfig.Headers...), cfg.Headers...)
	headers, err := utils.BuildHeaders(d.opts.HTTPClientConfig.UserAgent, pairs)
	if err != nil {
		return err
	}
	s.downloaded, err = utils.ResumeOffset(headers)
	if err != nil {
		return err
	}

	release, err := d.signals.Acquire(s.url)
	if err != nil {
		return err
	}
	defer release()
	defer d.clearSignals(s.url)

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	resp, restart, err := d.openStream(ctx, s, headers)
	if errors.Is(err, errAlreadyComplete) {
		log.Info().Str("op", "http/simple-downloader").Msgf("%s already holds all %d bytes", s.path, s.downloaded)
		s.total = s.downloaded
		s.sessionStart = s.downloaded
		s.startedAt = d.now()
		d.emit(events.NewStarted(s.id, s.url, s.path, s.total))
		d.complete(s)
		return nil
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	sink, err := filesink.Open(s.path)
	if err != nil {
		return err
	}
	if restart {
		if err := sink.Reset(); err != nil {
			sink.Flush()
			return err
		}
		s.downloaded = 0
	} else if s.downloaded > 0 {
		log.Debug().Str("op", "http/simple-downloader").Msgf("Resuming download from offset %d", s.downloaded)
	}

	s.total = s.downloaded + resp.ContentLength
	s.sessionStart = s.downloaded
	s.startedAt = d.now()
	s.lastEmit = s.startedAt
	s.state = utils.StateStreaming
	d.emit(events.NewStarted(s.id, s.url, s.path, s.total))

	if err := d.stream(s, resp.Body, sink); err != nil {
		if flushErr := sink.Flush(); flushErr != nil {
			log.Warn().Str("op", "http/simple-downloader").Err(flushErr).Msg("Could not flush partial file")
		}
		return err
	}
	return nil
}

// stream copies the body into the sink until it is exhausted or a
// checkpoint stops the session. It returns with s.state terminal.
func (d *Downloader) stream(s *session, body io.Reader, sink *filesink.Sink) error {
	buffer := make([]byte, d.opts.BufferSize)
	for {
		bytesRead, readErr := body.Read(buffer)
		if bytesRead > 0 {
			if _, err := sink.Write(buffer[:bytesRead]); err != nil {
				return err
			}
			s.downloaded += int64(bytesRead)
			if stop, err := d.checkpoint(s, sink); stop || err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("error reading response body: %w", readErr)
		}
	}

	if err := sink.Flush(); err != nil {
		return err
	}
	d.complete(s)
	return nil
}

// complete marks a finished transfer. A request that came in after the last
// checkpoint still suppresses the Completed event.
func (d *Downloader) complete(s *session) {
	s.state = utils.StateCompleted
	abort := d.signals.ConsumeAbort(s.url)
	pause := d.signals.ConsumePause(s.url)
	if abort || pause {
		log.Warn().Str("op", "http/simple-downloader").Msgf("Late pause/abort for %s ignored, file is complete", s.url)
		return
	}
	log.Info().Str("op", "http/simple-downloader").Msgf("Simple download successful for %s", s.path)
	d.emit(events.NewCompleted(s.id, s.url))
}

// checkpoint runs at most once per progress interval. Abort is checked
// before pause so it wins when both are pending.
func (d *Downloader) checkpoint(s *session, sink *filesink.Sink) (bool, error) {
	now := d.now()
	if now.Sub(s.lastEmit) < d.opts.ProgressInterval {
		return false, nil
	}

	if d.signals.ConsumeAbort(s.url) {
		if err := sink.Discard(); err != nil {
			return true, err
		}
		s.state = utils.StateAborted
		log.Info().Str("op", "http/simple-downloader").Msgf("Download aborted for %s", s.url)
		d.emit(events.NewAborted(s.id, s.url))
		return true, nil
	}

	percentage, speed, eta := computeProgress(s.total, s.downloaded, s.sessionStart, now.Sub(s.startedAt))
	d.emit(events.NewProgress(s.id, s.url, percentage, s.downloaded, speed, eta))
	s.lastEmit = now

	if d.signals.ConsumePause(s.url) {
		if err := sink.Flush(); err != nil {
			return true, err
		}
		s.state = utils.StatePaused
		log.Info().Str("op", "http/simple-downloader").Msgf("Download paused for %s at %d bytes", s.url, s.downloaded)
		d.emit(events.NewPaused(s.id, s.url))
		return true, nil
	}
	return false, nil
}

// computeProgress derives the progress figures. Speed only counts bytes moved
// by this session so a resumed download does not report the inherited
// bytes as instant throughput. Elapsed time is truncated to whole seconds.
func computeProgress(total, downloaded, sessionStart int64, elapsed time.Duration) (percentage float64, speed, eta int64) {
	seconds := int64(elapsed / time.Second)
	if seconds > 0 {
		speed = (downloaded - sessionStart) / seconds
	}
	if speed > 0 && total > downloaded {
		eta = (total - downloaded) / speed
	}
	if total > 0 {
		percentage = float64(downloaded) / float64(total) * 100
	}
	return percentage, speed, eta
}

func (d *Downloader) clearSignals(url string) {
	d.signals.ConsumeAbort(url)
	d.signals.ConsumePause(url)
}

// DownloadWithRetry repeats Download while it fails with a retryable error,
// waiting a little longer before each new attempt.
func (d *Downloader) DownloadWithRetry(ctx context.Context, cfg utils.DownloadConfig, maxRetries int, backoff time.Duration) (utils.DownloadResult, error) {
	var res utils.DownloadResult
	var lastErr error
	for retry := range max(maxRetries, 0) + 1 {
		if retry > 0 {
			log.Warn().Str("op", "http/simple-downloader").Msgf("Retrying download for %s (attempt %d/%d)", cfg.URL, retry+1, maxRetries+1)
			select {
			case <-time.After(time.Duration(retry) * backoff):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}
		res, lastErr = d.Download(ctx, cfg)
		if lastErr == nil || !utils.IsRetryable(lastErr) {
			return res, lastErr
		}
	}
	return res, fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}
