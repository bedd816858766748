package power

import (
	"fmt"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
)

// FakePower records each call as a readable string, e.g.
// "power.ArmTimerWake(4m0s)".
type FakePower struct {
	Calls     []string
	SleepErr  error
	TimerFlag bool
	OnCall    func(name string)
}

func (f *FakePower) record(format string, a ...interface{}) {
	call := fmt.Sprintf(format, a...)
	f.Calls = append(f.Calls, call)
	if f.OnCall != nil {
		f.OnCall(call)
	}
}

func (f *FakePower) EnableGPIOHold(pin int) error {
	f.record("power.EnableGPIOHold(%d)", pin)
	return nil
}

func (f *FakePower) DisableGPIOHold(pin int) error {
	f.record("power.DisableGPIOHold(%d)", pin)
	return nil
}

func (f *FakePower) ArmTimerWake(d time.Duration) error {
	f.record("power.ArmTimerWake(%s)", d)
	return nil
}

func (f *FakePower) ArmExternalWake(pin int, trigger gpio.Level) error {
	f.record("power.ArmExternalWake(%d, %s)", pin, trigger)
	return nil
}

func (f *FakePower) EnterDeepSleep() error {
	f.record("power.EnterDeepSleep()")
	return f.SleepErr
}

// TimerFired returns TimerFlag. It is not recorded in Calls.
func (f *FakePower) TimerFired() (bool, error) {
	return f.TimerFlag, nil
}
