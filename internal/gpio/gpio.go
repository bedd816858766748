// Package gpio hands out GPIO lines from one chip so several users can
// reconfigure the same pin. The real implementation uses the Linux GPIO
// character device.
package gpio

import "fmt"

type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Opposite is the other level, used to bias an input away from its active level.
func (l Level) Opposite() Level {
	if l == High {
		return Low
	}
	return High
}

// ParseLevel accepts "high"/"low" and "1"/"0".
func ParseLevel(s string) (Level, error) {
	switch s {
	case "high", "1":
		return High, nil
	case "low", "0":
		return Low, nil
	}
	return Low, fmt.Errorf("invalid gpio level %q", s)
}

// Line is a requested GPIO line.
type Line interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

// Pins hands out lines by offset. Chip is the real implementation.
type Pins interface {
	Input(pin int, pull Level) (Line, error)
	Output(pin int, value Level) (Line, error)
	Release(pin int) error
}
