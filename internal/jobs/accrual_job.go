package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"investment-platform/internal/services"
)

// AccrualJob schedules the daily earnings run. The cron spec is expected to
// fire once per day; the accrual service itself refuses to credit the same
// investment twice in one calendar day, so an extra trigger is harmless.
type AccrualJob struct {
	accrual   *services.AccrualService
	scheduler *cron.Cron
	spec      string
}

func NewAccrualJob(accrual *services.AccrualService, spec string) *AccrualJob {
	if spec == "" {
		spec = "@daily"
	}
	return &AccrualJob{
		accrual:   accrual,
		scheduler: cron.New(),
		spec:      spec,
	}
}

// Start registers the accrual run with the scheduler and starts it.
func (j *AccrualJob) Start() error {
	if _, err := j.scheduler.AddFunc(j.spec, j.RunOnce); err != nil {
		return err
	}
	j.scheduler.Start()
	logrus.WithField("spec", j.spec).Info("[AccrualJob] Daily accrual job started")
	return nil
}

// RunOnce executes a single accrual pass.
func (j *AccrualJob) RunOnce() {
	if _, err := j.accrual.RunDailyAccrual(time.Now()); err != nil {
		logrus.WithField("error", err.Error()).Error("[AccrualJob] Accrual run failed")
	}
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *AccrualJob) Stop() {
	ctx := j.scheduler.Stop()
	<-ctx.Done()
	logrus.Info("[AccrualJob] Daily accrual job stopped")
}
