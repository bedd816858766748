// Package power controls what survives sleep and what wakes the monitor.
package power

import (
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/TheCacophonyProject/go-utils/logging"
)

var log = logging.NewLogger("info")

type Controller interface {
	// EnableGPIOHold latches pin at its sleep level until DisableGPIOHold.
	EnableGPIOHold(pin int) error
	// DisableGPIOHold must be called before pin is reconfigured after a wake.
	DisableGPIOHold(pin int) error
	ArmTimerWake(d time.Duration) error
	ArmExternalWake(pin int, trigger gpio.Level) error
	// EnterDeepSleep only returns if the monitor could not be put to sleep.
	EnterDeepSleep() error
}
