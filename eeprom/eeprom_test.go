package eeprom

import (
	"bytes"
	"testing"
	"time"

	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/TheCacophonyProject/air-monitor/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func noSleepFn(time.Duration) {}

var record400 = state.EncodeRecord(reading.Reading{CO2: 400, TemperatureC: 22, HumidityPct: 45})

func TestNewNeedsChip(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	_, err := New(bus, DefaultAddress, 0)
	assert.Error(t, err)

	_, err = New(&i2ctest.Playback{Ops: []i2ctest.IO{{Addr: DefaultAddress}}}, DefaultAddress, 3)
	assert.Error(t, err, "unaligned offset")
}

func TestEmptyChipHasNoRecord(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress},
			{Addr: DefaultAddress, W: []byte{0x10}, R: bytes.Repeat([]byte{0xFF}, state.RecordLength)},
		},
	}
	chip, err := New(bus, DefaultAddress, 0x10)
	require.NoError(t, err)

	_, err = chip.ReadRecord()
	assert.ErrorIs(t, err, state.ErrNoRecord)
	require.NoError(t, bus.Close())
}

func TestStoreOnChip(t *testing.T) {
	sleepFn = noSleepFn
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress},
			// Save: page write then read back.
			{Addr: DefaultAddress, W: append([]byte{0x00}, record400...)},
			{Addr: DefaultAddress, W: []byte{0x00}, R: record400},
			// Load.
			{Addr: DefaultAddress, W: []byte{0x00}, R: record400},
		},
	}
	chip, err := New(bus, DefaultAddress, 0)
	require.NoError(t, err)

	s := state.NewStore(chip)
	r := reading.Reading{CO2: 400, TemperatureC: 22, HumidityPct: 45}
	require.NoError(t, s.Save(r))
	assert.Equal(t, r, s.Load())
	require.NoError(t, bus.Close())
}

func TestWriteVerifyFailure(t *testing.T) {
	sleepFn = noSleepFn
	corrupted := append([]byte{}, record400...)
	corrupted[4] = 0x00
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress},
			{Addr: DefaultAddress, W: append([]byte{0x00}, record400...)},
			{Addr: DefaultAddress, W: []byte{0x00}, R: corrupted},
		},
	}
	chip, err := New(bus, DefaultAddress, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, chip.WriteRecord(record400), errEepromVerifyFail)
}

func TestClearWritesZeroRecord(t *testing.T) {
	sleepFn = noSleepFn
	zero := state.EncodeRecord(reading.Reading{})
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress},
			{Addr: DefaultAddress, W: append([]byte{0x20}, zero...)},
			{Addr: DefaultAddress, W: []byte{0x20}, R: zero},
			{Addr: DefaultAddress, W: []byte{0x20}, R: zero},
		},
	}
	chip, err := New(bus, DefaultAddress, 0x20)
	require.NoError(t, err)
	store := state.NewStore(chip)
	require.NoError(t, store.Clear())
	assert.Equal(t, reading.Reading{}, store.Load())
	require.NoError(t, bus.Close())
}

func TestRecordTooLong(t *testing.T) {
	chip := &Chip{}
	assert.Error(t, chip.WriteRecord(make([]byte, pageLength+1)))
}
