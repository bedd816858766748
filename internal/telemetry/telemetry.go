// Package telemetry reports accepted readings off the device. Reporting is
// best effort and never affects a cycle.
package telemetry

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/TheCacophonyProject/air-monitor/reading"
)

// Snapshot is what gets reported for a cycle that updated the display.
type Snapshot struct {
	Cycle string    `json:"cycle"`
	Time  time.Time `json:"time"`
	Wake  string    `json:"wake"`
	reading.Reading
	Trends  reading.Trends `json:"trends"`
	Battery string         `json:"battery"`
}

type Publisher interface {
	Publish(s Snapshot) error
	Close() error
}

// FormatPayload encodes s as JSON with the reading fields at the top level.
func FormatPayload(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// Multi publishes to every publisher, attempting all of them even if some fail.
type Multi []Publisher

func (m Multi) Publish(s Snapshot) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
