package eeprom

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/TheCacophonyProject/air-monitor/i2crequest"
	"github.com/TheCacophonyProject/air-monitor/state"
	"periph.io/x/conn/v3/i2c"
)

const (
	DefaultAddress  = 0x50
	pageLength      = 16 // Can only write one page on the eeprom chip at a time
	writeCycleTime  = 5 * time.Millisecond
	maxTxAttempts   = 3
	erasedByteValue = 0xFF
)

var sleepFn = time.Sleep

var errEepromVerifyFail = errors.New("eeprom read back does not match what was written")

// Chip stores the state record in one page of a 24Cxx EEPROM.
type Chip struct {
	dev    *i2c.Dev
	offset byte
}

// New checks a chip answers at address. offset is the memory address of the
// record and must be page aligned.
func New(bus i2c.Bus, address uint16, offset byte) (*Chip, error) {
	if offset%pageLength != 0 {
		return nil, fmt.Errorf("eeprom offset %#02x is not aligned to a %d byte page", offset, pageLength)
	}
	if err := i2crequest.CheckAddress(bus, address); err != nil {
		return nil, fmt.Errorf("eeprom chip not found: %w", err)
	}
	return &Chip{dev: &i2c.Dev{Bus: bus, Addr: address}, offset: offset}, nil
}

func (c *Chip) String() string {
	return fmt.Sprintf("eeprom %#02x@%#02x", c.dev.Addr, c.offset)
}

func (c *Chip) ReadRecord() ([]byte, error) {
	data, err := c.read(state.RecordLength)
	if err != nil {
		return nil, err
	}
	all0xFF := true
	for _, b := range data {
		if b != erasedByteValue {
			all0xFF = false
			break
		}
	}
	if all0xFF {
		return nil, state.ErrNoRecord
	}
	return data, nil
}

// WriteRecord writes b as a single page write then reads it back.
func (c *Chip) WriteRecord(b []byte) error {
	if len(b) > pageLength {
		return fmt.Errorf("record of %d bytes does not fit in a %d byte page", len(b), pageLength)
	}
	if err := i2crequest.Tx(c.dev, append([]byte{c.offset}, b...), nil, maxTxAttempts); err != nil {
		return err
	}
	sleepFn(writeCycleTime)

	readBack, err := c.read(len(b))
	if err != nil {
		return err
	}
	if !bytes.Equal(readBack, b) {
		return errEepromVerifyFail
	}
	return nil
}

func (c *Chip) read(length int) ([]byte, error) {
	data := make([]byte, length)
	if err := i2crequest.Tx(c.dev, []byte{c.offset}, data, maxTxAttempts); err != nil {
		return nil, err
	}
	return data, nil
}
