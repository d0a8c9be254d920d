// Package scheduler drives the periodic engine work: weekly baseline
// retraining and monthly performance reports. Jobs are idempotent and read
// their due-state from storage, so a restarted scheduler never double-runs
// work that already happened.
package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	baselinedomain "github.com/voltgrid/enbase/internal/baseline/domain"
	"github.com/voltgrid/enbase/internal/clock"
	obscontext "github.com/voltgrid/enbase/internal/observability/context"
	"github.com/voltgrid/enbase/internal/observability/logger"
	performancedomain "github.com/voltgrid/enbase/internal/performance/domain"
	seudomain "github.com/voltgrid/enbase/internal/seu/domain"
)

var ErrInvalidConfig = errors.New("scheduler: missing required dependency")

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	clock       clock.Clock
	baselines   baselinedomain.Service
	performance performancedomain.Service
	seus        seudomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Baselines == nil || p.Performance == nil || p.SEUs == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		clock:       p.Clock,
		baselines:   p.Baselines,
		performance: p.Performance,
		seus:        p.SEUs,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()
	ctx = obscontext.WithJobName(ctx, name)

	log := logger.WithContext(ctx, s.log).With(zap.String("job", name))
	log.Info("job started")

	err := fn(ctx)
	elapsed := s.clock.Now().Sub(start)
	if err != nil {
		log.Warn("job failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	log.Info("job finished", zap.Duration("elapsed", elapsed))
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"weekly_retrain", s.RetrainJob},
		{"monthly_reports", s.MonthlyReportsJob},
	}
	for _, job := range jobs {
		if s.isJobEnabled(job.Name) {
			err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// RetrainJob retrains every SEU whose active baseline is older than the
// retrain interval. SEUs without a model yet are skipped; initial training
// is an operator decision, not a background one.
func (s *Scheduler) RetrainJob(ctx context.Context) error {
	seus, err := s.seus.List(ctx)
	if err != nil {
		return err
	}
	cutoff := s.clock.Now().Add(-s.cfg.RetrainInterval)

	var errs error
	for _, seu := range seus {
		if ctx.Err() != nil {
			return errors.Join(errs, ctx.Err())
		}
		log := logger.WithSEU(logger.WithContext(ctx, s.log), seu.Code, seu.EnergySource)

		model, err := s.baselines.ActiveModel(ctx, seu.Code, seu.EnergySource)
		if err != nil {
			var noModel *baselinedomain.NoActiveModelError
			if errors.As(err, &noModel) {
				continue
			}
			errs = errors.Join(errs, err)
			continue
		}
		if model.TrainedAt.After(cutoff) {
			continue
		}

		_, err = s.baselines.Train(ctx, baselinedomain.TrainRequest{
			SEU:            seu.Code,
			EnergySource:   seu.EnergySource,
			AdjustmentType: baselinedomain.AdjustmentScheduledRetrain,
			Reason:         "scheduled weekly retrain",
		})
		if err != nil {
			// A rejected retrain keeps the previous model active.
			log.Warn("scheduled retrain failed", zap.Error(err))
			continue
		}
		log.Info("scheduled retrain completed")
	}
	return errs
}

// MonthlyReportsJob generates the previous month's reports for every SEU
// that does not have one yet.
func (s *Scheduler) MonthlyReportsJob(ctx context.Context) error {
	now := s.clock.Now()
	period := performancedomain.PeriodFor(now).Previous()

	seus, err := s.seus.List(ctx)
	if err != nil {
		return err
	}

	var errs error
	for _, seu := range seus {
		if ctx.Err() != nil {
			return errors.Join(errs, ctx.Err())
		}
		log := logger.WithSEU(logger.WithContext(ctx, s.log), seu.Code, seu.EnergySource).
			With(zap.String("period", period.Label))

		existing, err := s.performance.ListReports(ctx, seu.Code, seu.EnergySource, 1)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if len(existing) > 0 && existing[0].Period == period.Label {
			continue
		}

		if _, err := s.performance.GenerateReport(ctx, performancedomain.ReportRequest{
			SEU:          seu.Code,
			EnergySource: seu.EnergySource,
			Period:       period.Label,
		}); err != nil {
			var noModel *baselinedomain.NoActiveModelError
			if errors.As(err, &noModel) {
				continue
			}
			log.Warn("monthly report failed", zap.Error(err))
			continue
		}
		log.Info("monthly report generated")
	}
	return errs
}
