package search

import (
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSyncCron rebuilds the indices every night at 23:00.
const DefaultSyncCron = "0 0 23 * * ?"

type IndexRunner struct {
	crontab *cron.Cron
}

// StartIndexRunner schedules full syncs on a six field cron spec (seconds first).
func StartIndexRunner(spec string, synchronizer *Synchronizer) (*IndexRunner, error) {
	crontab := cron.New(cron.WithSeconds())
	_, err := crontab.AddFunc(spec, func() {
		if !synchronizer.ScheduleRun() {
			logrus.Info("indices fully sync: previous run still in progress, skipped")
		}
	})
	if err != nil {
		return nil, err
	}
	crontab.Start()
	logrus.WithField("cron", spec).Info("indices fully sync scheduled")
	return &IndexRunner{crontab: crontab}, nil
}

// Stop waits for a job being fired to return.
func (r *IndexRunner) Stop() {
	<-r.crontab.Stop().Done()
}
