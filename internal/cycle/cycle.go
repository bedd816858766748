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

// Package cycle runs one wake cycle of the monitor: wake, sense, decide,
// render and go back to sleep.
package cycle

import (
	"image"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/battery"
	"github.com/TheCacophonyProject/air-monitor/internal/button"
	"github.com/TheCacophonyProject/air-monitor/internal/display"
	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/TheCacophonyProject/air-monitor/internal/power"
	"github.com/TheCacophonyProject/air-monitor/internal/sensor"
	"github.com/TheCacophonyProject/air-monitor/internal/telemetry"
	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/TheCacophonyProject/go-utils/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logging.NewLogger("info")

type WakeReason int

const (
	TimerExpired WakeReason = iota
	ButtonPressed
)

func (w WakeReason) String() string {
	if w == ButtonPressed {
		return "button"
	}
	return "timer"
}

type Stage string

const (
	StageEntry               Stage = "entry"
	StageDetermineWakeReason Stage = "determine-wake-reason"
	StageLoadState           Stage = "load-state"
	StageSampleBattery       Stage = "sample-battery"
	StageAcquireSensor       Stage = "acquire-sensor"
	StageDecision            Stage = "decision"
	StageUpdateAndRender     Stage = "update-and-render"
	StageArmSleep            Stage = "arm-sleep"
)

// ReadingStore keeps the last accepted reading across sleeps.
type ReadingStore interface {
	Load() reading.Reading
	Save(r reading.Reading) error
}

type Config struct {
	HoldPin       int
	ButtonPin     int
	WakeTrigger   gpio.Level
	SleepDuration time.Duration
	BatteryScale  battery.Scale
	BatteryPos    image.Point

	// SkipSleep arms the wake sources but stays awake, for bench testing.
	SkipSleep bool
}

// Hardware is everything a cycle talks to. Publisher may be nil.
type Hardware struct {
	Store     ReadingStore
	Sensor    sensor.Driver
	Renderer  display.Renderer
	Power     power.Controller
	Button    button.Input
	Battery   battery.Sampler
	Publisher telemetry.Publisher
}

type Controller struct {
	cfg   Config
	hw    Hardware
	log   *logrus.Logger
	now   func() time.Time
	newID func() string
}

func New(cfg Config, hw Hardware) *Controller {
	return &Controller{
		cfg:   cfg,
		hw:    hw,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithLogger logs the cycle to l instead of the package logger.
func (c *Controller) WithLogger(l *logrus.Logger) *Controller {
	c.log = l
	return c
}

// timerFlag is implemented by power controllers that can tell whether the
// RTC countdown ran out.
type timerFlag interface {
	TimerFired() (bool, error)
}

// State is everything known during one cycle. It is created at entry and
// dropped at sleep; only the store outlives it.
type State struct {
	ID       string
	Started  time.Time
	Stages   []Stage
	Wake     WakeReason
	Last     reading.Reading
	Battery  string
	Acquired bool
	Current  reading.Reading
	Changed  bool
	Trends   reading.Trends
	Saved    bool
	Rendered bool

	// TimerFired is whether the RTC reported its countdown had run out.
	// The wake reason still comes from the button alone.
	TimerFired bool
}

func (s *State) enter(stage Stage) {
	s.Stages = append(s.Stages, stage)
}

func (s *State) fields(stage Stage) logrus.Fields {
	return logrus.Fields{"cycle": s.ID, "stage": stage}
}

// Run performs one cycle. On hardware it does not return unless the monitor
// could not be put to sleep.
func (c *Controller) Run() (*State, error) {
	s := &State{ID: c.newID(), Started: c.now()}

	c.entry(s)
	c.determineWakeReason(s)
	c.loadState(s)
	c.sampleBattery(s)
	if c.acquireSensor(s) && c.decide(s) {
		c.updateAndRender(s)
	}
	return s, c.armSleep(s)
}
