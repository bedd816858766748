package power

import (
	"fmt"
	"math"
	"time"

	"github.com/TheCacophonyProject/air-monitor/i2crequest"
	"periph.io/x/conn/v3/i2c"
)

const (
	PCF8563Address = 0x51

	PCF8563_STAT2_REG = 0x01
	PCF8563_TI_TP     = 0x01 << 4 // Pulsed rather than level interrupt
	PCF8563_ALARM_AF  = 0x01 << 3
	PCF8563_TIMER_TF  = 0x01 << 2
	PCF8563_ALARM_AIE = 0x01 << 1
	PCF8563_TIMER_TIE = 0x01 << 0

	PCF8563_TIMER_CTRL_REG = 0x0E
	PCF8563_TIMER_REG      = 0x0F
	PCF8563_TIMER_TE       = 0x01 << 7
	PCF8563_TIMER_1HZ      = 0x02
	PCF8563_TIMER_1_60HZ   = 0x03

	maxCountdown = 255
)

// PCF8563 uses the RTC countdown timer to raise its interrupt line, which
// powers the board back on.
type PCF8563 struct {
	dev *i2c.Dev
}

func NewPCF8563(bus i2c.Bus, address uint16) (*PCF8563, error) {
	// Check that a device is present on I2C bus at the PCF8563 address.
	if err := i2crequest.CheckAddress(bus, address); err != nil {
		return nil, fmt.Errorf("failed to find pcf8563 device on i2c bus: %w", err)
	}
	return &PCF8563{dev: &i2c.Dev{Bus: bus, Addr: address}}, nil
}

// countdownSettings picks the timer source for d. Up to 255s counts seconds,
// longer counts whole minutes rounded up, clamped to 255 minutes.
func countdownSettings(d time.Duration) (value byte, source byte, actual time.Duration) {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	if secs <= maxCountdown {
		return byte(secs), PCF8563_TIMER_1HZ, time.Duration(secs) * time.Second
	}
	mins := (secs + 59) / 60
	if mins > maxCountdown {
		mins = maxCountdown
	}
	return byte(mins), PCF8563_TIMER_1_60HZ, time.Duration(mins) * time.Minute
}

// SetCountdown starts the countdown timer with its interrupt enabled.
func (rtc *PCF8563) SetCountdown(d time.Duration) (time.Duration, error) {
	value, source, actual := countdownSettings(d)

	// Stop the timer while it is loaded.
	if err := writeByte(rtc.dev, PCF8563_TIMER_CTRL_REG, PCF8563_TIMER_1_60HZ); err != nil {
		return 0, err
	}
	if err := writeByte(rtc.dev, PCF8563_TIMER_REG, value); err != nil {
		return 0, err
	}

	state, err := readByte(rtc.dev, PCF8563_STAT2_REG)
	if err != nil {
		return 0, err
	}
	state |= PCF8563_ALARM_AF        // Maintain the current state of the alarm flag (i.e., don't reset it).
	state &= ^byte(PCF8563_TIMER_TF) // Clear timer flag from the last wake
	state &= ^byte(PCF8563_TI_TP)    // Hold the interrupt until the flag is cleared
	state |= PCF8563_TIMER_TIE       // Timer interrupt enabled
	if err := writeByte(rtc.dev, PCF8563_STAT2_REG, state); err != nil {
		return 0, err
	}

	ctrl := byte(PCF8563_TIMER_TE | source)
	if err := writeByte(rtc.dev, PCF8563_TIMER_CTRL_REG, ctrl); err != nil {
		return 0, err
	}
	rtcCtrl, err := readByte(rtc.dev, PCF8563_TIMER_CTRL_REG)
	if err != nil {
		return 0, err
	}
	if rtcCtrl != ctrl {
		return 0, fmt.Errorf("error setting countdown timer. Control %#02x. Control it was set to %#02x", rtcCtrl, ctrl)
	}
	return actual, nil
}

// ReadTimerFlag reports whether the countdown timer has expired.
func (rtc *PCF8563) ReadTimerFlag() (bool, error) {
	state, err := readByte(rtc.dev, PCF8563_STAT2_REG)
	if err != nil {
		return false, err
	}
	return state&PCF8563_TIMER_TF == PCF8563_TIMER_TF, nil
}

// readByte reads a byte from the I2C device from a given register.
func readByte(dev *i2c.Dev, register byte) (byte, error) {
	data := make([]byte, 1)
	if err := dev.Tx([]byte{register}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// writeByte writes a byte to the I2C device at a given register.
func writeByte(dev *i2c.Dev, register byte, data byte) error {
	_, err := dev.Write([]byte{register, data})
	return err
}
