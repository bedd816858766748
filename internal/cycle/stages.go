/*
air-monitor - CO2, temperature and humidity monitor.
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package cycle

import (
	"fmt"

	"github.com/TheCacophonyProject/air-monitor/internal/battery"
	"github.com/TheCacophonyProject/air-monitor/internal/button"
	"github.com/TheCacophonyProject/air-monitor/internal/display"
	"github.com/TheCacophonyProject/air-monitor/internal/telemetry"
	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/sirupsen/logrus"
)

// entry releases the pin held through the last sleep before anything
// reconfigures pins.
func (c *Controller) entry(s *State) {
	s.enter(StageEntry)
	if err := c.hw.Power.DisableGPIOHold(c.cfg.HoldPin); err != nil {
		c.log.WithFields(s.fields(StageEntry)).Warn("Failed to release GPIO hold: ", err)
	}
	c.log.WithFields(s.fields(StageEntry)).Debug("Woke up")
}

func (c *Controller) determineWakeReason(s *State) {
	s.enter(StageDetermineWakeReason)
	l := c.log.WithFields(s.fields(StageDetermineWakeReason))
	s.Wake = TimerExpired
	if c.hw.Button.IsPressed(button.Button1) {
		s.Wake = ButtonPressed
	}
	if rtc, ok := c.hw.Power.(timerFlag); ok {
		fired, err := rtc.TimerFired()
		if err != nil {
			l.Debug("Failed to read timer flag: ", err)
		}
		s.TimerFired = fired
		l = l.WithField("timer-fired", fired)
	}
	l.WithField("wake", s.Wake).Info("Wake reason")
}

func (c *Controller) loadState(s *State) {
	s.enter(StageLoadState)
	s.Last = c.hw.Store.Load()
	c.log.WithFields(s.fields(StageLoadState)).Debug("Last reading: ", s.Last)
}

func (c *Controller) sampleBattery(s *State) {
	s.enter(StageSampleBattery)
	raw, err := c.hw.Battery.ReadRaw()
	if err != nil {
		s.Battery = battery.UnknownVoltage
		c.log.WithFields(s.fields(StageSampleBattery)).Warn("Failed to sample battery: ", err)
		return
	}
	s.Battery = battery.FormatVoltage(c.cfg.BatteryScale.Voltage(raw))
	c.log.WithFields(s.fields(StageSampleBattery)).WithField("raw", raw).Debug("Battery ", s.Battery)
}

// acquireSensor makes one attempt at a reading. No reading is a normal
// outcome and the cycle goes straight to sleep.
func (c *Controller) acquireSensor(s *State) bool {
	s.enter(StageAcquireSensor)
	l := c.log.WithFields(s.fields(StageAcquireSensor))
	if err := c.hw.Sensor.Initialize(); err != nil {
		l.Warn("Sensor failed to initialize: ", err)
		return false
	}
	if !c.hw.Sensor.IsAvailable() {
		l.Info("Sensor not available")
		return false
	}
	co2, temp, humidity, err := c.hw.Sensor.GetReading()
	if err != nil {
		l.Warn("Failed to read sensor: ", err)
		return false
	}
	s.Current = reading.FromSample(co2, temp, humidity)
	s.Acquired = true
	l.Debug("Read ", s.Current)
	return true
}

// decide reports whether the display needs updating.
func (c *Controller) decide(s *State) bool {
	s.enter(StageDecision)
	s.Changed = reading.HasChanged(s.Current, s.Last)
	update := s.Changed || s.Wake == ButtonPressed
	c.log.WithFields(s.fields(StageDecision)).WithFields(logrus.Fields{
		"changed": s.Changed,
		"update":  update,
	}).Info(s.Current)
	return update
}

// updateAndRender saves the reading and redraws. A failed save is logged and
// the display is still redrawn.
func (c *Controller) updateAndRender(s *State) {
	s.enter(StageUpdateAndRender)
	l := c.log.WithFields(s.fields(StageUpdateAndRender))

	s.Trends = reading.Compare(s.Current, s.Last)
	if err := c.hw.Store.Save(s.Current); err != nil {
		l.Error(err)
	} else {
		s.Saved = true
	}

	primary := display.FormatPrimary(s.Current, s.Trends)
	if err := c.hw.Renderer.Render(primary, s.Battery, c.cfg.BatteryPos); err != nil {
		l.Error("Failed to render: ", err)
	} else {
		s.Rendered = true
	}
	l.WithField("saved", s.Saved).WithField("rendered", s.Rendered).Info("Display updated")

	if c.hw.Publisher != nil {
		if err := c.hw.Publisher.Publish(c.snapshot(s)); err != nil {
			l.Warn("Failed to publish reading: ", err)
		}
	}
}

func (c *Controller) snapshot(s *State) telemetry.Snapshot {
	return telemetry.Snapshot{
		Cycle:   s.ID,
		Time:    s.Started,
		Wake:    s.Wake.String(),
		Reading: s.Current,
		Trends:  s.Trends,
		Battery: s.Battery,
	}
}

// armSleep holds the pin, arms both wake sources and sleeps. Failing to arm
// one wake source still leaves the other, so sleep is entered regardless.
func (c *Controller) armSleep(s *State) error {
	s.enter(StageArmSleep)
	l := c.log.WithFields(s.fields(StageArmSleep))

	if err := c.hw.Power.EnableGPIOHold(c.cfg.HoldPin); err != nil {
		l.Error(err)
	}
	if err := c.hw.Power.ArmTimerWake(c.cfg.SleepDuration); err != nil {
		l.Error(err)
	}
	if err := c.hw.Power.ArmExternalWake(c.cfg.ButtonPin, c.cfg.WakeTrigger); err != nil {
		l.Error(err)
	}

	if c.cfg.SkipSleep {
		l.Info("Skipping sleep")
		return nil
	}
	l.WithField("duration", c.cfg.SleepDuration).Info("Sleeping")
	if err := c.hw.Power.EnterDeepSleep(); err != nil {
		return fmt.Errorf("failed to enter deep sleep: %w", err)
	}
	return nil
}
