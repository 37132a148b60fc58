package internal

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/jhalttu/textpipe/internal/util"
)

var Config *Configuration

type HoursDuration time.Duration

func NewHoursDuration(hours int64) HoursDuration {
	return HoursDuration(time.Duration(hours) * time.Hour)
}

func (hd HoursDuration) MarshalJSON() ([]byte, error) {
	hours := float64(time.Duration(hd)) / float64(time.Hour)
	return json.Marshal(hours)
}

func (hd *HoursDuration) UnmarshalJSON(data []byte) error {
	var hours float64
	if err := json.Unmarshal(data, &hours); err != nil {
		return err
	}
	*hd = HoursDuration(hours * float64(time.Hour))
	return nil
}

type Configuration struct {
	SessionExpiresHours HoursDuration `json:"session_expires_hours"`
	QueueSize           int64         `json:"queue_size"`
	// Fixed polling cadence for remote pipeline executions and
	// profiling-data availability. The managed service owns all retries;
	// these only bound how long we keep asking.
	PollDelaySeconds int64 `json:"poll_delay_seconds"`
	PollMaxAttempts  int64 `json:"poll_max_attempts"`
}

func (c *Configuration) PollDelay() time.Duration {
	return time.Duration(c.PollDelaySeconds) * time.Second
}

func InitializeConfiguration() {
	Config = &Configuration{
		SessionExpiresHours: NewHoursDuration(30 * 24),
		QueueSize:           3,
		PollDelaySeconds:    30,
		PollMaxAttempts:     120,
	}

	configFileExists, _ := util.PathExists("config.json")
	if !configFileExists {
		b, err := json.MarshalIndent(Config, "", "    ")
		if err != nil {
			log.Fatal(err)
		}
		configFile, err := os.Create("config.json")
		if err != nil {
			log.Fatal(err)
		}
		if _, err := configFile.Write(b); err != nil {
			log.Fatal(err)
		}
	} else {
		configBytes, err := os.ReadFile("config.json")
		if err != nil {
			log.Fatal(err)
		}
		if err := json.Unmarshal(configBytes, &Config); err != nil {
			log.Fatal(err)
		}
	}
}

func UpdateConfiguration(config *Configuration) error {
	b, err := json.MarshalIndent(config, "", "    ")
	if err != nil {
		return err
	}

	configFile, err := os.Create("config.json")
	if err != nil {
		return err
	}

	if _, err := configFile.Write(b); err != nil {
		return err
	}

	Config = config

	return nil
}
