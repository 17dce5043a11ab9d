package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// Prober decides whether the device can reach the outside world.
type Prober interface {
	// Probe returns true as soon as one endpoint answers. It returns false
	// when every endpoint failed or endpoints is empty.
	Probe(ctx context.Context, endpoints []string) bool
}

// httpProber issues concurrent HEAD requests with resty.
type httpProber struct {
	client  *utils.HTTPClient
	timeout time.Duration
	logger  *logger.Logger
}

// NewHTTPProber returns a [Prober] whose requests are each bounded by
// timeout.
func NewHTTPProber(timeout time.Duration, log *logger.Logger) Prober {
	if log == nil {
		log = logger.Nop()
	}
	client := utils.NewProbeClient(timeout)
	client.SetLogger(utils.NewRestyLogger(log))
	return &httpProber{client: client, timeout: timeout, logger: log}
}

// Probe implements [Prober]. Any HTTP response, whatever its status or body,
// proves reachability; only transport errors count as failures. The first
// success cancels the remaining requests.
func (p *httpProber) Probe(ctx context.Context, endpoints []string) bool {
	if len(endpoints) == 0 {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan bool, len(endpoints))
	var wg sync.WaitGroup
	for _, endpoint := range endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- p.probeOne(ctx, endpoint)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for ok := range results {
		if ok {
			return true
		}
	}
	return false
}

func (p *httpProber) probeOne(ctx context.Context, endpoint string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.R().
		SetContext(reqCtx).
		SetHeader("Cache-Control", "no-cache").
		Head(endpoint)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("probe failed")
		}
		return false
	}

	p.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode()).
		Dur("took", resp.Time()).
		Msg("probe answered")
	return true
}
