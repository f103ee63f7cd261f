package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/logger"
)

// Publisher flips scheduled articles whose time has come.
type Publisher interface {
	PublishDue(ctx context.Context) (int64, error)
}

// Scheduler polls auto-import sources on their own interval and runs the
// scheduled-publish job.
type Scheduler struct {
	cron      *cron.Cron
	syncer    *Syncer
	repo      Repository
	publisher Publisher
	publishAt time.Duration
	log       *zerolog.Logger

	mu      sync.Mutex
	entries map[uint]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(syncer *Syncer, repo Repository, publisher Publisher, publishEvery time.Duration) *Scheduler {
	log := logger.Component("scheduler")
	cl := cronLogger{log: log}
	if publishEvery <= 0 {
		publishEvery = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		syncer:    syncer,
		repo:      repo,
		publisher: publisher,
		publishAt: publishEvery,
		log:       log,
		entries:   make(map[uint]cron.EntryID),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers every active auto-import source and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	sources, err := s.repo.ListActiveRssSources(ctx, true)
	if err != nil {
		return fmt.Errorf("list rss sources: %w", err)
	}

	s.mu.Lock()
	for i := range sources {
		if err := s.scheduleLocked(sources[i].ID, sources[i].Interval()); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	if s.publisher != nil {
		spec := fmt.Sprintf("@every %s", s.publishAt)
		if _, err := s.cron.AddFunc(spec, s.publishDue); err != nil {
			return fmt.Errorf("schedule publish job: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info().Int("sources", len(sources)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop, cancels running syncs and waits for them.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Refresh re-reads the source and re-registers, moves or removes its job.
// Call after a source is created, updated or deleted.
func (s *Scheduler) Refresh(ctx context.Context, sourceID uint) error {
	src, err := s.repo.GetRssSource(ctx, sourceID)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[sourceID]; ok {
		s.cron.Remove(id)
		delete(s.entries, sourceID)
	}
	if src == nil || !src.IsActive || !src.AutoImport {
		return nil
	}
	return s.scheduleLocked(src.ID, src.Interval())
}

// Scheduled reports whether the source currently has a polling job.
func (s *Scheduler) Scheduled(sourceID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[sourceID]
	return ok
}

func (s *Scheduler) scheduleLocked(sourceID uint, every time.Duration) error {
	if every <= 0 {
		every = time.Hour
	}
	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", every), func() {
		if _, err := s.syncer.SyncSource(s.ctx, sourceID); err != nil {
			s.log.Warn().Err(err).Uint("source_id", sourceID).Msg("Scheduled sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule source %d: %w", sourceID, err)
	}
	s.entries[sourceID] = id
	return nil
}

func (s *Scheduler) publishDue() {
	n, err := s.publisher.PublishDue(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Scheduled publish failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("published", n).Msg("Published scheduled articles")
	}
}

// cronLogger routes cron's own logging to zerolog.
type cronLogger struct {
	log *zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
