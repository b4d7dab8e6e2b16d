package utils

import (
	"errors"
	"time"
)

const DefaultBufferSize = 1024 * 32 // 32KB read buffer
const DefaultUserAgent = "resumer"
const DefaultProgressInterval = 2 * time.Second
const MaxRedirects = 3

var (
	ErrInvalidHeader        = errors.New("invalid header")
	ErrTooManyRedirects     = errors.New("too many redirects")
	ErrRateLimited          = errors.New("rate limited by server")
	ErrUnknownContentLength = errors.New("server didn't provide Content-Length header")
	ErrUnexpectedStatus     = errors.New("unexpected status code")
	ErrSessionActive        = errors.New("a download session for this URL is already active")
)

// IsRetryable reports whether a failed download may be attempted again as is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
