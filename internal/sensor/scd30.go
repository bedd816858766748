/*
air-monitor - Connecting to the SCD30 sensor.
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/TheCacophonyProject/air-monitor/i2crequest"
	"github.com/sigurn/crc8"
	"periph.io/x/conn/v3/i2c"
)

const (
	SCD30Address = 0x61

	cmdStartContinuous  = 0x0010
	cmdSetInterval      = 0x4600
	cmdDataReady        = 0x0202
	cmdReadMeasurement  = 0x0300
	cmdFirmwareVersion  = 0xD100
	measurementInterval = 2 // seconds
	readDelay           = 3 * time.Millisecond
	maxTxAttempts       = 2
)

var sleepFn = time.Sleep

var errBadCRC = errors.New("bad crc")

var crcTable = crc8.MakeTable(crc8.Params{
	Poly:   0x31, // Polynomial 1 + x^4 + x^5 + x^8
	Init:   0xFF,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x00,
})

// SCD30 is a Sensirion SCD30 NDIR CO2 sensor on I2C.
type SCD30 struct {
	dev *i2c.Dev
}

func NewSCD30(bus i2c.Bus, address uint16) *SCD30 {
	return &SCD30{dev: &i2c.Dev{Bus: bus, Addr: address}}
}

func (s *SCD30) Initialize() error {
	fw, err := s.readWords(cmdFirmwareVersion, 1)
	if err != nil {
		return fmt.Errorf("failed to read SCD30 firmware version: %w", err)
	}
	log.Debugf("SCD30 firmware %d.%d", fw[0]>>8, fw[0]&0xFF)

	if err := s.sendCommand(cmdSetInterval, measurementInterval); err != nil {
		return fmt.Errorf("failed to set SCD30 measurement interval: %w", err)
	}
	// Ambient pressure of 0 disables pressure compensation.
	if err := s.sendCommand(cmdStartContinuous, 0); err != nil {
		return fmt.Errorf("failed to start SCD30 measurements: %w", err)
	}
	return nil
}

func (s *SCD30) IsAvailable() bool {
	words, err := s.readWords(cmdDataReady, 1)
	if err != nil {
		log.Debug("SCD30 data ready check failed: ", err)
		return false
	}
	return words[0] == 1
}

func (s *SCD30) GetReading() (float32, float32, float32, error) {
	words, err := s.readWords(cmdReadMeasurement, 6)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to read SCD30 measurement: %w", err)
	}
	co2 := math.Float32frombits(uint32(words[0])<<16 | uint32(words[1]))
	temp := math.Float32frombits(uint32(words[2])<<16 | uint32(words[3]))
	humidity := math.Float32frombits(uint32(words[4])<<16 | uint32(words[5]))
	return co2, temp, humidity, nil
}

func (s *SCD30) sendCommand(cmd, arg uint16) error {
	w := make([]byte, 2, 5)
	binary.BigEndian.PutUint16(w, cmd)
	w = appendWord(w, arg)
	return i2crequest.Tx(s.dev, w, nil, maxTxAttempts)
}

// readWords writes cmd then, after the sensor has had time to prepare,
// reads n CRC protected words.
func (s *SCD30) readWords(cmd uint16, n int) ([]uint16, error) {
	w := make([]byte, 2)
	binary.BigEndian.PutUint16(w, cmd)
	if err := i2crequest.Tx(s.dev, w, nil, maxTxAttempts); err != nil {
		return nil, err
	}
	sleepFn(readDelay)

	r := make([]byte, n*3)
	if err := i2crequest.Tx(s.dev, nil, r, maxTxAttempts); err != nil {
		return nil, err
	}
	words := make([]uint16, n)
	for i := range words {
		chunk := r[i*3 : i*3+3]
		if calculateCRC(chunk[:2]) != chunk[2] {
			return nil, fmt.Errorf("%w in word %d of command %#04x", errBadCRC, i, cmd)
		}
		words[i] = binary.BigEndian.Uint16(chunk[:2])
	}
	return words, nil
}

func appendWord(b []byte, word uint16) []byte {
	b = binary.BigEndian.AppendUint16(b, word)
	return append(b, calculateCRC(b[len(b)-2:]))
}

func calculateCRC(data []byte) byte {
	return crc8.Checksum(data, crcTable)
}
