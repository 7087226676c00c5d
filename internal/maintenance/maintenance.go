// Package maintenance runs the daemon's background housekeeping. It sweeps
// expired audit entries on the configured retention schedule and periodically
// backs up and optimizes the underlying database.
package maintenance

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sentinel-console/internal/config"
	"sentinel-console/internal/metrics"
	"sentinel-console/internal/service"
	"sentinel-console/internal/store"
)

// Service runs the scheduled maintenance loops
type Service struct {
	config   *config.Config
	store    *store.Store
	logs     *service.ActivityLogService
	logger   zerolog.Logger
	lock     sync.Mutex
	running  bool
	tickers  []*time.Ticker
	stopChan chan struct{}
}

// New creates a new maintenance service
func New(cfg *config.Config, s *store.Store, logs *service.ActivityLogService) *Service {
	return &Service{
		config:   cfg,
		store:    s,
		logs:     logs,
		logger:   log.With().Str("component", "maintenance").Logger(),
		stopChan: make(chan struct{}),
	}
}

// Start launches the background schedules. Audit cleanup is skipped when
// auditing is disabled or retention is zero; zero retention means keep
// everything.
func (s *Service) Start() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running {
		return fmt.Errorf("maintenance service already running")
	}
	s.logger.Info().Msg("Starting maintenance service")

	if s.config.Audit.Enabled && s.config.Audit.RetentionDays > 0 {
		interval, err := s.config.AuditCleanupInterval()
		if err != nil {
			s.logger.Error().Err(err).Msg("Invalid audit cleanup interval in config, using default 1h")
			interval = time.Hour
		}
		s.schedule(interval, s.cleanupAuditTrail)
		s.logger.Info().
			Int("retentionDays", s.config.Audit.RetentionDays).
			Str("interval", interval.String()).
			Msg("Audit retention sweep scheduled")
	}

	if s.config.Database.BackupFrequency != "" {
		frequency, err := s.config.BackupFrequency()
		if err != nil {
			s.logger.Error().Err(err).Msg("Invalid backup frequency in config, using default 168h")
			frequency = 7 * 24 * time.Hour
		}
		s.schedule(frequency, s.backupDatabase)
		s.logger.Info().
			Str("frequency", frequency.String()).
			Str("backupDir", s.config.Database.BackupDir).
			Msg("Database backup scheduled")
	}

	if s.config.Database.OptimizeFrequency != "" {
		frequency, err := s.config.OptimizeFrequency()
		if err != nil {
			s.logger.Error().Err(err).Msg("Invalid optimize frequency in config, using default 24h")
			frequency = 24 * time.Hour
		}
		s.schedule(frequency, s.optimizeDatabase)
		s.logger.Info().Str("frequency", frequency.String()).Msg("Database optimization scheduled")
	}

	s.running = true
	return nil
}

// Stop halts all background schedules
func (s *Service) Stop() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.running {
		return nil
	}
	s.logger.Info().Msg("Stopping maintenance service")

	for _, ticker := range s.tickers {
		ticker.Stop()
	}
	close(s.stopChan)
	s.tickers = nil
	s.running = false

	return nil
}

// schedule runs task on every tick until Stop is called
func (s *Service) schedule(interval time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	s.tickers = append(s.tickers, ticker)

	go func() {
		for {
			select {
			case <-ticker.C:
				task()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// cleanupAuditTrail removes audit entries older than the retention window
func (s *Service) cleanupAuditTrail() {
	cutoff := time.Now().AddDate(0, 0, -s.config.Audit.RetentionDays)

	result, err := s.logs.DeleteOlderThan(cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("Audit retention sweep failed")
		return
	}
	metrics.PurgedLogEntries.Add(float64(result.DeletedCount))

	if result.DeletedCount > 0 || len(result.Failures) > 0 {
		s.logger.Info().
			Int("deleted", result.DeletedCount).
			Int("failed", len(result.Failures)).
			Time("cutoff", cutoff).
			Msg("Audit retention sweep completed")
	}
}

// backupDatabase snapshots the database into the configured backup directory
func (s *Service) backupDatabase() {
	path, err := s.store.Backup(s.config.Database.BackupDir)
	if err != nil {
		s.logger.Error().Err(err).Msg("Database backup failed")
		return
	}
	s.logger.Info().Str("path", path).Msg("Database backup completed")
}

// optimizeDatabase runs the periodic database maintenance
func (s *Service) optimizeDatabase() {
	if err := s.store.Optimize(); err != nil {
		s.logger.Error().Err(err).Msg("Database optimization failed")
		return
	}
	s.logger.Info().Msg("Database optimization completed")
}
