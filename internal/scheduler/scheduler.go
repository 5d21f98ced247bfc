// Package scheduler periodically collects site energy and stores it.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/solarmon/internal/database"
	"github.com/tejusbharadwaj/solarmon/internal/models"
	"github.com/tejusbharadwaj/solarmon/internal/monitoring"
)

// ErrNoSites is returned by Start when there is nothing to collect.
var ErrNoSites = errors.New("collector has no sites configured")

// EnergySource is the part of monitoring.Service the collector uses.
type EnergySource interface {
	SiteEnergy(ctx context.Context, sites []string, q monitoring.EnergyQuery, onErr monitoring.ErrorPolicy) ([]models.Record, error)
}

// Options configures a Scheduler.
type Options struct {
	// Schedule is a standard five-field cron expression.
	Schedule     string
	Sites        []string
	TimeUnit     string
	LookbackDays int
	// Timeout bounds one collection run. Zero means two minutes.
	Timeout time.Duration
}

type Scheduler struct {
	source EnergySource
	repo   database.ReadingRepository
	opts   Options
	logger *logrus.Logger
	cron   *cron.Cron
	now    func() time.Time
}

func NewScheduler(source EnergySource, repo database.ReadingRepository, opts Options, logger *logrus.Logger) *Scheduler {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	return &Scheduler{
		source: source,
		repo:   repo,
		opts:   opts,
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		now:    time.Now,
	}
}

// Start registers the collection job and starts the cron runner.
func (s *Scheduler) Start() error {
	if len(s.opts.Sites) == 0 {
		return ErrNoSites
	}
	if _, err := s.cron.AddFunc(s.opts.Schedule, s.collect); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"schedule": s.opts.Schedule,
		"sites":    len(s.opts.Sites),
	}).Info("Collector started")
	return nil
}

// Stop stops the cron runner and returns a context that is done once a
// running collection has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	if _, err := s.CollectOnce(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to collect energy")
	}
}

// Window returns the whole UTC days covered by one run: the LookbackDays
// days before today.
func (s *Scheduler) Window() (time.Time, time.Time) {
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -s.opts.LookbackDays), end
}

// CollectOnce fetches the collection window for every site and stores the
// readings. Sites that fail to fetch or store are logged and skipped; the
// number of stored readings is returned.
func (s *Scheduler) CollectOnce(ctx context.Context) (int, error) {
	start, end := s.Window()
	records, err := s.source.SiteEnergy(ctx, s.opts.Sites, monitoring.EnergyQuery{
		Start:    start,
		End:      end,
		TimeUnit: s.opts.TimeUnit,
	}, monitoring.LogAndContinue(s.logger))
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, rec := range records {
		n, err := s.repo.SaveRecord(ctx, rec)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"site_id": rec.SiteID,
			}).WithError(err).Warn("Failed to store readings")
			continue
		}
		stored += n
	}

	s.logger.WithFields(logrus.Fields{
		"start":    start.Format(time.DateOnly),
		"end":      end.Format(time.DateOnly),
		"records":  len(records),
		"readings": stored,
	}).Info("Collected energy")
	return stored, nil
}
