package service

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// NewScheduler returns a scheduler pinned to UTC so cron schedules fire at
// the same wall-clock time regardless of the host timezone.
func NewScheduler() gocron.Scheduler {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		log.Fatal(err)
	}
	return scheduler
}
