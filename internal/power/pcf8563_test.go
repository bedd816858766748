package power

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestCountdownSettings(t *testing.T) {
	tests := []struct {
		d      time.Duration
		value  byte
		source byte
		actual time.Duration
	}{
		{240 * time.Second, 240, PCF8563_TIMER_1HZ, 240 * time.Second},
		{255 * time.Second, 255, PCF8563_TIMER_1HZ, 255 * time.Second},
		{1500 * time.Millisecond, 2, PCF8563_TIMER_1HZ, 2 * time.Second},
		{0, 1, PCF8563_TIMER_1HZ, time.Second},
		{256 * time.Second, 5, PCF8563_TIMER_1_60HZ, 5 * time.Minute},
		{10 * time.Minute, 10, PCF8563_TIMER_1_60HZ, 10 * time.Minute},
		{24 * time.Hour, 255, PCF8563_TIMER_1_60HZ, 255 * time.Minute},
	}
	for _, tt := range tests {
		value, source, actual := countdownSettings(tt.d)
		assert.Equal(t, tt.value, value, tt.d.String())
		assert.Equal(t, tt.source, source, tt.d.String())
		assert.Equal(t, tt.actual, actual, tt.d.String())
	}
}

func TestSetCountdown(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCF8563Address},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x03}},
			{Addr: PCF8563Address, W: []byte{0x0F, 240}},
			// Timer flag set from the last countdown, pulse mode on.
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x14}},
			{Addr: PCF8563Address, W: []byte{0x01, 0x09}},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x82}},
			{Addr: PCF8563Address, W: []byte{0x0E}, R: []byte{0x82}},
		},
	}
	rtc, err := NewPCF8563(bus, PCF8563Address)
	require.NoError(t, err)

	actual, err := rtc.SetCountdown(240 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 240*time.Second, actual)
	require.NoError(t, bus.Close())
}

func TestSetCountdownVerifies(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCF8563Address},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x03}},
			{Addr: PCF8563Address, W: []byte{0x0F, 10}},
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x00}},
			{Addr: PCF8563Address, W: []byte{0x01, 0x09}},
			{Addr: PCF8563Address, W: []byte{0x0E, 0x83}},
			{Addr: PCF8563Address, W: []byte{0x0E}, R: []byte{0x03}},
		},
	}
	rtc, err := NewPCF8563(bus, PCF8563Address)
	require.NoError(t, err)

	_, err = rtc.SetCountdown(10 * time.Minute)
	assert.Error(t, err)
}

func TestReadTimerFlag(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: PCF8563Address},
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x05}},
			{Addr: PCF8563Address, W: []byte{0x01}, R: []byte{0x01}},
		},
	}
	rtc, err := NewPCF8563(bus, PCF8563Address)
	require.NoError(t, err)

	fired, err := rtc.ReadTimerFlag()
	require.NoError(t, err)
	assert.True(t, fired)
	fired, err = rtc.ReadTimerFlag()
	require.NoError(t, err)
	assert.False(t, fired)
}

func TestNoRTC(t *testing.T) {
	_, err := NewPCF8563(&i2ctest.Playback{DontPanic: true}, PCF8563Address)
	assert.Error(t, err)
}
