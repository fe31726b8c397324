package cache

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Janitor sweeps expired entries out of the registered caches on a fixed
// schedule so long-lived processes do not accumulate dead keys between
// reads.
type Janitor struct {
	cron   *cron.Cron
	caches []*TTLCache
	log    zerolog.Logger
}

func NewJanitor(caches []*TTLCache, log zerolog.Logger) *Janitor {
	return &Janitor{
		cron:   cron.New(cron.WithSeconds()),
		caches: caches,
		log:    log,
	}
}

// Start schedules a sweep every minute.
func (j *Janitor) Start() error {
	if len(j.caches) == 0 {
		return nil
	}
	if _, err := j.cron.AddFunc("0 * * * * *", j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep() {
	removed := 0
	for _, c := range j.caches {
		removed += c.sweep()
	}
	if removed > 0 {
		j.log.Debug().Int("removed", removed).Msg("cache sweep")
	}
}
