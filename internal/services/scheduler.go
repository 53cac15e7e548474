package services

import (
	"context"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler runs job on the cron spec. A run that is still going when the next
// one is due makes the next one skip.
func NewScheduler(ctx context.Context, spec string, job func(ctx context.Context)) (*Scheduler, error) {

	if spec == "" {
		return nil, errors.New("schedule is empty")
	}
	if job == nil {
		return nil, errors.New("job is nil")
	}

	s := &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	_, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", spec)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Infof("scheduler started, next run at %v", s.cron.Entries()[0].Next)
}

// Stop prevents new runs and waits for the running one.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
