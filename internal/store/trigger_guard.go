package store

import (
	"database/sql"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

var Guard *TriggerGuard

// TriggerGuard remembers recently seen webhook delivery IDs in a throwaway
// in-memory database so a redelivered webhook does not queue a duplicate
// execution.
type TriggerGuard struct {
	DB *sql.DB
}

func NewTriggerGuard() *TriggerGuard {
	db, err := sql.Open("sqlite", "file:triggerguard?mode=memory&cache=shared")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := db.Exec(
		"create table if not exists deliveries (delivery_id text primary key, expires timestamp)",
	); err != nil {
		log.Fatal(err)
	}
	return &TriggerGuard{DB: db}
}

func (tg *TriggerGuard) ScheduleDailyCleanUp(s gocron.Scheduler) {
	if _, err := s.NewJob(gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))), gocron.NewTask(func() {
		if err := tg.RemoveExpired(); err != nil {
			log.Println("err deleting expired webhook deliveries:", err)
		}
	})); err != nil {
		log.Fatal(err)
	}
}

// Seen records the delivery and reports whether it was already known. The
// insert and the check are one statement so concurrent redeliveries cannot
// both pass.
func (tg *TriggerGuard) Seen(deliveryID string, expires time.Time) (bool, error) {
	res, err := tg.DB.Exec(
		"insert into deliveries (delivery_id, expires) values ($1, $2) on conflict do nothing",
		deliveryID, expires,
	)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return inserted == 0, nil
}

func (tg *TriggerGuard) RemoveExpired() error {
	_, err := tg.DB.Exec("delete from deliveries where expires < CURRENT_TIMESTAMP")
	return err
}
