package telemetry

import (
	"github.com/TheCacophonyProject/event-reporter/v3/eventclient"
)

const eventType = "airMonitorReading"

// EventPublisher queues snapshots with the Cacophony event-reporter, which
// uploads them when the device next has a connection.
type EventPublisher struct {
	addEvent func(eventclient.Event) error
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{addEvent: eventclient.AddEvent}
}

func (p *EventPublisher) Publish(s Snapshot) error {
	return p.addEvent(eventclient.Event{
		Timestamp: s.Time,
		Type:      eventType,
		Details: map[string]interface{}{
			"cycle":       s.Cycle,
			"wake":        s.Wake,
			"co2":         s.CO2,
			"temperature": s.TemperatureC,
			"humidity":    s.HumidityPct,
			"trends": map[string]interface{}{
				"co2":         s.Trends.CO2.String(),
				"temperature": s.Trends.TemperatureC.String(),
				"humidity":    s.Trends.HumidityPct.String(),
			},
			"battery": s.Battery,
		},
	})
}

func (p *EventPublisher) Close() error {
	return nil
}
