package i2crequest

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

const txRetryInterval = 20 * time.Millisecond

var sleepFn = time.Sleep

// Tx performs a write then read transaction on dev, making up to attempts
// tries before giving up. Either of write or read can be nil.
func Tx(dev *i2c.Dev, write, read []byte, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = dev.Tx(write, read); err == nil {
			return nil
		}
		if i+1 < attempts {
			sleepFn(txRetryInterval)
		}
	}
	return fmt.Errorf("i2c tx to %#02x failed after %d attempts: %w", dev.Addr, attempts, err)
}

// CheckAddress probes for a device acknowledging address on bus.
func CheckAddress(bus i2c.Bus, address uint16) error {
	if err := bus.Tx(address, nil, nil); err != nil {
		return fmt.Errorf("no device found at %#02x: %w", address, err)
	}
	return nil
}

// CalculateCRC is CRC-16/AUG-CCITT, used to protect records written to
// non-volatile storage.
func CalculateCRC(data []byte) uint16 {
	var crc uint16 = 0x1D0F // Initial value
	for _, b := range data {
		crc ^= uint16(b) << 8 // Shift byte into MSB of 16bit CRC
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021 // Polynomial 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
