package backup

import (
	"context"
	"sync"
	"time"

	"autoparts/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the automatic backup and rotation on the configured cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	svc    *Service
	logger *zap.Logger
	mu     sync.Mutex
	entry  cron.EntryID
	keep   int
}

func NewScheduler(svc *Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		svc:    svc,
		logger: logger,
	}
}

// Start applies cfg and starts the cron loop.
func (s *Scheduler) Start(cfg config.Config) error {
	if err := s.Apply(cfg); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Apply replaces the scheduled job according to cfg. It is safe to call
// while the scheduler runs, e.g. after the settings were saved.
func (s *Scheduler) Apply(cfg config.Config) error {
	var schedule cron.Schedule
	if cfg.AutoBackupEnabled {
		var err error
		if schedule, err = cron.ParseStandard(cfg.BackupSchedule); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	s.keep = cfg.MaxBackupFiles
	if !cfg.AutoBackupEnabled {
		s.logger.Info("automatic backup disabled")
		return nil
	}

	s.entry = s.cron.Schedule(schedule, cron.FuncJob(s.run))
	s.logger.Info("automatic backup scheduled", zap.String("schedule", cfg.BackupSchedule), zap.Int("keep", cfg.MaxBackupFiles))
	return nil
}

// Next reports when the automatic backup runs next; zero when disabled.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("backup scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	keep := s.keep
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	info, err := s.svc.Create(ctx)
	if err != nil {
		s.logger.Error("automatic backup failed", zap.Error(err))
		return
	}
	s.logger.Info("automatic backup done", zap.String("name", info.Name))
	if _, err := s.svc.Cleanup(keep); err != nil {
		s.logger.Error("backup cleanup failed", zap.Error(err))
	}
}
