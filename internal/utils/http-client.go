package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

type HTTPClientConfig struct {
	Timeout       time.Duration
	KATimeout     time.Duration
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string
	UserAgent     string
	Headers       [][2]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ResumerHTTPClient struct {
	client *http.Client
}

func NewResumerHTTPClient(cfg HTTPClientConfig) *ResumerHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		IdleConnTimeout:       cfg.KATimeout,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSHandshakeTimeout:   cfg.Timeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		DisableCompression:    true, // gzip would hide Content-Length
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			log.Warn().Str("op", "utils/http-client").Err(err).Msgf("Ignoring invalid proxy URL %q", cfg.ProxyURL)
		} else {
			if cfg.ProxyUsername != "" {
				if cfg.ProxyPassword != "" {
					proxyURL.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
				} else {
					proxyURL.User = url.User(cfg.ProxyUsername)
				}
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	return &ResumerHTTPClient{
		client: &http.Client{
			// no client-wide Timeout: it would also bound the body read of a long transfer
			Transport:     transport,
			CheckRedirect: limitRedirects,
		},
	}
}

func (c *ResumerHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) > MaxRedirects {
		return fmt.Errorf("%w: stopped after %d redirects", ErrTooManyRedirects, MaxRedirects)
	}
	return nil
}
