// Package button reads the front panel buttons.
package button

import (
	"fmt"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/TheCacophonyProject/go-utils/logging"
)

const (
	Button1 = 1
	// Button2 has no pin wired to it and is never pressed.
	Button2 = 2

	debounceDelay = 10 * time.Millisecond
)

var log = logging.NewLogger("info")

var sleepFn = time.Sleep

type Input interface {
	IsPressed(channel int) bool
}

// Buttons reads Button1 from a GPIO line.
type Buttons struct {
	pins   gpio.Pins
	pin    int
	active gpio.Level
	line   gpio.Line
}

// New reads Button1 from pin. The pin is not touched until the first
// IsPressed, so it is only configured once the wake hold has been released.
func New(pins gpio.Pins, pin int, active gpio.Level) *Buttons {
	return &Buttons{pins: pins, pin: pin, active: active}
}

// IsPressed reports a press only when two reads debounceDelay apart both
// see the active level.
func (b *Buttons) IsPressed(channel int) bool {
	if channel != Button1 {
		return false
	}
	if err := b.request(); err != nil {
		log.Warn(err)
		return false
	}
	first := b.read()
	sleepFn(debounceDelay)
	second := b.read()
	return first && second
}

// request configures the pin as an input biased away from the active level.
func (b *Buttons) request() error {
	if b.line != nil {
		return nil
	}
	line, err := b.pins.Input(b.pin, b.active.Opposite())
	if err != nil {
		return fmt.Errorf("failed to set up button on pin %d: %w", b.pin, err)
	}
	b.line = line
	return nil
}

func (b *Buttons) read() bool {
	v, err := b.line.Value()
	if err != nil {
		log.Debug("Failed to read button: ", err)
		return false
	}
	return gpio.Level(v) == b.active
}

// FakeInput reports the channels in Pressed as held down.
type FakeInput struct {
	Pressed map[int]bool
	OnCall  func(name string)
}

func (f *FakeInput) IsPressed(channel int) bool {
	if f.OnCall != nil {
		f.OnCall("button.IsPressed")
	}
	return f.Pressed[channel]
}
