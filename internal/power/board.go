package power

import (
	"fmt"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
)

// haltFn waits for the power to be cut after a power off was requested.
var haltFn = func() { select {} }

// Board sleeps by powering off, with the RTC interrupt and the button both
// wired to the power supply enable. Holding a pin means keeping it driven
// until the power is cut.
type Board struct {
	pins      gpio.Pins
	holdLevel gpio.Level
	rtc       *PCF8563
	powerOff  func() error
}

func NewBoard(pins gpio.Pins, holdLevel gpio.Level, rtc *PCF8563) *Board {
	return &Board{
		pins:      pins,
		holdLevel: holdLevel,
		rtc:       rtc,
		powerOff:  PowerOff,
	}
}

func (b *Board) EnableGPIOHold(pin int) error {
	if _, err := b.pins.Output(pin, b.holdLevel); err != nil {
		return fmt.Errorf("failed to hold pin %d %s: %w", pin, b.holdLevel, err)
	}
	return nil
}

func (b *Board) DisableGPIOHold(pin int) error {
	return b.pins.Release(pin)
}

func (b *Board) ArmTimerWake(d time.Duration) error {
	actual, err := b.rtc.SetCountdown(d)
	if err != nil {
		return fmt.Errorf("failed to arm timer wake: %w", err)
	}
	if actual != d {
		log.Infof("Timer wake in %s, %s requested", actual, d)
	}
	return nil
}

// TimerFired reports whether the RTC countdown ran out since it was last
// armed.
func (b *Board) TimerFired() (bool, error) {
	return b.rtc.ReadTimerFlag()
}

func (b *Board) ArmExternalWake(pin int, trigger gpio.Level) error {
	if _, err := b.pins.Input(pin, trigger.Opposite()); err != nil {
		return fmt.Errorf("failed to arm wake on pin %d: %w", pin, err)
	}
	return nil
}

func (b *Board) EnterDeepSleep() error {
	if err := b.powerOff(); err != nil {
		return fmt.Errorf("failed to power off: %w", err)
	}
	haltFn()
	return nil
}
