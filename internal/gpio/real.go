//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

type Chip struct {
	chip  *gpiocdev.Chip
	lines map[int]*gpiocdev.Line
}

var _ Pins = (*Chip)(nil)

func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip, lines: map[int]*gpiocdev.Line{}}, nil
}

func bias(pull Level) gpiocdev.LineBias {
	if pull == High {
		return gpiocdev.WithPullUp
	}
	return gpiocdev.WithPullDown
}

// Input configures pin as an input pulled towards pull.
func (c *Chip) Input(pin int, pull Level) (Line, error) {
	if line, ok := c.lines[pin]; ok {
		if err := line.Reconfigure(gpiocdev.AsInput, bias(pull)); err != nil {
			return nil, fmt.Errorf("reconfigure pin %d as input: %w", pin, err)
		}
		return line, nil
	}
	line, err := c.chip.RequestLine(pin, gpiocdev.AsInput, bias(pull))
	if err != nil {
		return nil, fmt.Errorf("request pin %d as input: %w", pin, err)
	}
	c.lines[pin] = line
	return line, nil
}

// Output drives pin at value for as long as the line is held.
func (c *Chip) Output(pin int, value Level) (Line, error) {
	if line, ok := c.lines[pin]; ok {
		if err := line.Reconfigure(gpiocdev.AsOutput(int(value))); err != nil {
			return nil, fmt.Errorf("reconfigure pin %d as output: %w", pin, err)
		}
		return line, nil
	}
	line, err := c.chip.RequestLine(pin, gpiocdev.AsOutput(int(value)))
	if err != nil {
		return nil, fmt.Errorf("request pin %d as output: %w", pin, err)
	}
	c.lines[pin] = line
	return line, nil
}

// Release gives pin back to the kernel.
func (c *Chip) Release(pin int) error {
	line, ok := c.lines[pin]
	if !ok {
		return nil
	}
	delete(c.lines, pin)
	return line.Close()
}

func (c *Chip) Close() error {
	var errs []error
	for pin := range c.lines {
		if err := c.Release(pin); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if err := c.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}
	return errors.Join(errs...)
}
