package utils

import (
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient()
//	resp, err := client.R().Get("https://example.com")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates and returns a new HTTPClient instance
// with a default-configured underlying resty.Client.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state.
func NewHTTPClient() *HTTPClient {
	return &HTTPClient{Client: resty.New()}
}

// NewProbeClient returns an HTTPClient tuned for reachability probes: every
// request is bounded by timeout and no retries are made.
func NewProbeClient(timeout time.Duration) *HTTPClient {
	c := NewHTTPClient()
	c.SetTimeout(timeout).
		SetRetryCount(0)
	return c
}

// restyLogger adapts *logger.Logger to resty.Logger so that resty's
// internal warnings land in the structured log.
type restyLogger struct {
	log *logger.Logger
}

// NewRestyLogger returns a resty.Logger writing through log.
func NewRestyLogger(log *logger.Logger) resty.Logger {
	if log == nil {
		log = logger.Nop()
	}
	return &restyLogger{log: log}
}

func (l *restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l *restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l *restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}
