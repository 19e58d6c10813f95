package services

import (
	"fmt"
	"time"

	"github.com/courtdesk/causelist/internal/config"
	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps expired files out of a FileStore.
type Janitor struct {
	cron   *cron.Cron
	store  *FileStore
	maxAge time.Duration
	now    func() time.Time
}

// NewJanitor registers the sweep on the given cron schedule (standard
// five-field spec or a descriptor such as "@hourly").
func NewJanitor(store *FileStore, schedule string, maxAge time.Duration) (*Janitor, error) {
	j := &Janitor{
		cron:   cron.New(),
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce() }); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	return j, nil
}

// RunOnce performs a single sweep and returns the number of removed files.
func (j *Janitor) RunOnce() int {
	removed, err := j.store.Sweep(j.maxAge, j.now())
	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Retention sweep failed")
	}
	return removed
}

func (j *Janitor) Start() {
	j.cron.Start()
	logger := config.GetLogger()
	logger.Info().Dur("maxAge", j.maxAge).Msg("Retention janitor started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	logger := config.GetLogger()
	logger.Info().Msg("Retention janitor stopped")
}
