package cronjob

import (
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

var (
	mu        sync.Mutex
	scheduler *cron.Cron
	pending   []job
	started   bool
)

type job struct {
	name string
	fn   func()
	spec string
}

// RegisterJob queues a named job with a cron spec. Jobs registered before
// Start are scheduled when Start runs; later registrations are scheduled
// immediately.
func RegisterJob(name string, fn func(), spec string) {
	mu.Lock()
	defer mu.Unlock()

	j := job{name: name, fn: fn, spec: spec}
	if !started {
		pending = append(pending, j)
		return
	}
	schedule(j)
}

// Start creates the scheduler and schedules every pending job.
func Start() {
	mu.Lock()
	defer mu.Unlock()

	if started {
		return
	}

	scheduler = cron.New()
	for _, j := range pending {
		schedule(j)
	}
	pending = nil
	started = true
	scheduler.Start()
}

// Stop halts the scheduler; running jobs finish on their own.
func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
	started = false
}

func schedule(j job) {
	name := j.name
	fn := j.fn
	_, err := scheduler.AddFunc(j.spec, func() {
		log.Info().Str("job", name).Msg("cron job starting")
		fn()
		log.Info().Str("job", name).Msg("cron job finished")
	})
	if err != nil {
		log.Error().Err(err).Str("job", name).Str("spec", j.spec).Msg("failed to schedule cron job")
	}
}
