//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

func OpenChip(name string) (*Chip, error) {
	return nil, errUnsupported
}

func (c *Chip) Input(pin int, pull Level) (Line, error)   { return nil, errUnsupported }
func (c *Chip) Output(pin int, value Level) (Line, error) { return nil, errUnsupported }
func (c *Chip) Release(pin int) error                     { return nil }
func (c *Chip) Close() error                              { return nil }
