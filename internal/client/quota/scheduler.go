package quota

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/pdfier/internal/logging"
)

// Scheduler rolls the guest window over at local midnight while the client
// runs, so a long-lived session does not wait for the next Reserve.
type Scheduler struct {
	cron *cron.Cron
	acct *Accountant
	log  logging.Logger
}

func NewScheduler(acct *Accountant, log logging.Logger, loc *time.Location) *Scheduler {
	if log == nil {
		log = logging.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		acct: acct,
		log:  log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.resetDaily); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for a running job.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) resetDaily() {
	ctx := context.Background()
	s.acct.Rollover(ctx)
	s.log.Debug(ctx, "daily guest quota check done")
}
