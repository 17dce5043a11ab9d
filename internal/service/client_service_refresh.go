package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/cache"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// maxParallelFetches bounds the collection fan-out of one cycle.
const maxParallelFetches = 4

type refreshScheduler struct {
	remote      adapter.RemoteService
	cache       *cache.LocalCache
	monitor     ConnectivityMonitor
	collections []string
	schedule    cron.Schedule
	now         func() time.Time

	// cycleMu is held for the whole of a refresh cycle.
	cycleMu sync.Mutex

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewRefreshScheduler validates cfg.Schedule and returns an idle scheduler.
func NewRefreshScheduler(cfg config.ClientRefresh, remote adapter.RemoteService, c *cache.LocalCache, monitor ConnectivityMonitor, log *logger.Logger) (RefreshScheduler, error) {
	schedule, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", cfg.Schedule, err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &refreshScheduler{
		remote:      remote,
		cache:       c,
		monitor:     monitor,
		collections: slices.Clone(cfg.Collections),
		schedule:    schedule,
		now:         time.Now,
		logger:      log.Component("refresh"),
	}, nil
}

// Start implements RefreshScheduler.
func (s *refreshScheduler) Start(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	cronLogger := cron.PrintfLogger(&s.logger.Logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		s.Refresh(runCtx)
	}))
	c.Start()
	s.cron = c

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Refresh(runCtx)
	}()

	s.logger.Info().
		Strs("collections", s.collections).
		Time("next", s.schedule.Next(s.now())).
		Msg("refresh scheduler started")
}

// Stop implements RefreshScheduler. Safe to call when not started.
func (s *refreshScheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
}

// Refresh implements RefreshScheduler. Collections are fetched in parallel;
// a failing collection keeps its previous snapshot and does not affect the
// others. last_full_sync is only advanced when every collection succeeded.
func (s *refreshScheduler) Refresh(ctx context.Context) (models.RefreshReport, bool) {
	report := models.RefreshReport{StartedAt: s.now()}

	if !s.cycleMu.TryLock() {
		s.logger.Debug().Err(ErrRefreshInProgress).Msg("refresh skipped")
		return report, false
	}
	defer s.cycleMu.Unlock()

	if !s.monitor.IsOnline() {
		s.logger.Debug().Msg("offline, refresh skipped")
		return report, false
	}

	report.Collections = make([]models.CollectionRefresh, len(s.collections))

	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, collection := range s.collections {
		g.Go(func() error {
			report.Collections[i] = s.refreshOne(ctx, collection)
			return nil
		})
	}
	_ = g.Wait()

	ok := report.OK()
	if ok {
		if err := s.cache.MarkFullSync(ctx, report.StartedAt); err != nil {
			s.logger.Err(err).Msg("failed to record full sync")
		}
	}

	s.logger.Info().
		Bool("ok", ok).
		Int("collections", len(report.Collections)).
		Dur("took", s.now().Sub(report.StartedAt)).
		Msg("refresh cycle finished")
	return report, ok
}

func (s *refreshScheduler) refreshOne(ctx context.Context, collection string) (res models.CollectionRefresh) {
	res.Collection = collection

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("refresh %s panicked: %v", collection, r)
			s.logger.Error().Str("collection", collection).Interface("panic", r).Msg("refresh panicked")
		}
	}()

	records, err := s.remote.Fetch(ctx, collection)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("fetch failed, keeping cached snapshot")
		res.Err = err
		return res
	}

	if err = s.cache.ReplaceAll(ctx, collection, records); err != nil {
		res.Err = err
		return res
	}

	res.Records = len(records)
	return res
}
