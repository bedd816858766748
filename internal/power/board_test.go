package power

import (
	"errors"
	"testing"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestEnterDeepSleep(t *testing.T) {
	halted := false
	haltFn = func() { halted = true }
	defer func() { haltFn = func() { select {} } }()

	requested := false
	b := &Board{powerOff: func() error {
		requested = true
		return nil
	}}
	require.NoError(t, b.EnterDeepSleep())
	assert.True(t, requested)
	assert.True(t, halted)
}

func TestEnterDeepSleepFailure(t *testing.T) {
	haltFn = func() { t.Fatal("should not wait for power off") }
	defer func() { haltFn = func() { select {} } }()

	failure := errors.New("access denied")
	b := &Board{powerOff: func() error { return failure }}
	assert.ErrorIs(t, b.EnterDeepSleep(), failure)
}

func TestArmTimerWake(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCF8563Address},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x03}},
			{Addr: PCF8563Address, W: []byte{0x0F, 240}},
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x00}},
			{Addr: PCF8563Address, W: []byte{0x01, 0x09}},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x82}},
			{Addr: PCF8563Address, W: []byte{0x0E}, R: []byte{0x82}},
		},
	}
	rtc, err := NewPCF8563(bus, PCF8563Address)
	require.NoError(t, err)

	b := NewBoard(nil, gpio.Low, rtc)
	require.NoError(t, b.ArmTimerWake(4*time.Minute))
	require.NoError(t, bus.Close())
}

func TestHoldAndWakePins(t *testing.T) {
	chip := &gpio.FakeChip{}
	b := NewBoard(chip, gpio.Low, nil)

	require.NoError(t, b.DisableGPIOHold(27))
	require.NoError(t, b.EnableGPIOHold(27))
	require.NoError(t, b.ArmExternalWake(17, gpio.High))
	assert.Equal(t, []string{
		"gpio.Release(27)",
		"gpio.Output(27, low)",
		"gpio.Input(17, low)",
	}, chip.Calls)
	assert.Equal(t, []int{0}, chip.Lines[27].Set)
}

func TestTimerFired(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCF8563Address},
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x05}},
		},
	}
	rtc, err := NewPCF8563(bus, PCF8563Address)
	require.NoError(t, err)

	fired, err := NewBoard(&gpio.FakeChip{}, gpio.Low, rtc).TimerFired()
	require.NoError(t, err)
	assert.True(t, fired)
	require.NoError(t, bus.Close())
}

func TestFakePowerRecordsCalls(t *testing.T) {
	f := &FakePower{}
	require.NoError(t, f.DisableGPIOHold(27))
	require.NoError(t, f.ArmExternalWake(17, gpio.High))
	require.NoError(t, f.ArmTimerWake(4*time.Minute))
	assert.Equal(t, []string{
		"power.DisableGPIOHold(27)",
		"power.ArmExternalWake(17, high)",
		"power.ArmTimerWake(4m0s)",
	}, f.Calls)
}
