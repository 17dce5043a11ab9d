package netwatch

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

const defaultPollInterval = 5 * time.Second

// pollWatcher samples the interface table on a ticker.
type pollWatcher struct {
	interval time.Duration
	check    func() bool
	logger   *logger.Logger
}

func newPollWatcher(interval time.Duration, check func() bool, log *logger.Logger) *pollWatcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if check == nil {
		check = InterfacesOnline
	}
	return &pollWatcher{interval: interval, check: check, logger: log}
}

func (p *pollWatcher) Online() bool {
	return p.check()
}

func (p *pollWatcher) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, 1)

	go func() {
		defer close(ch)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		last := p.check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := p.check()
				if now == last {
					continue
				}
				last = now
				p.logger.Debug().Bool("online", now).Msg("interface state changed")
				select {
				case ch <- Event{Online: now, At: time.Now()}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
