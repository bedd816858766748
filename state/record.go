/*
air-monitor - CO2, temperature and humidity monitor.
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

package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/air-monitor/i2crequest"
	"github.com/TheCacophonyProject/air-monitor/reading"
)

// Record layout, big-endian:
// Magic: 1
// Version: 1
// CO2: 4
// Temperature: 4
// Humidity: 4
// CRC: 2
const (
	RecordLength  = 1 + 1 + 4 + 4 + 4 + 2
	recordMagic   = 0xC0
	recordVersion = 1
)

var (
	// ErrNoRecord is returned by a Backend that holds nothing yet.
	ErrNoRecord = errors.New("no state record")

	errRecordLength  = errors.New("state record has wrong length")
	errRecordMagic   = errors.New("state record has bad magic byte")
	errRecordVersion = errors.New("state record version not supported")
	errRecordCRC     = errors.New("state record CRC check failed")
)

// EncodeRecord serializes r into a single record.
func EncodeRecord(r reading.Reading) []byte {
	b := make([]byte, RecordLength)
	b[0] = recordMagic
	b[1] = recordVersion
	binary.BigEndian.PutUint32(b[2:6], uint32(int32(r.CO2)))
	binary.BigEndian.PutUint32(b[6:10], uint32(int32(r.TemperatureC)))
	binary.BigEndian.PutUint32(b[10:14], uint32(int32(r.HumidityPct)))
	crc := i2crequest.CalculateCRC(b[:RecordLength-2])
	binary.BigEndian.PutUint16(b[RecordLength-2:], crc)
	return b
}

// DecodeRecord parses a record made by EncodeRecord.
func DecodeRecord(b []byte) (reading.Reading, error) {
	if len(b) != RecordLength {
		return reading.Reading{}, fmt.Errorf("%w: got %d bytes, expected %d", errRecordLength, len(b), RecordLength)
	}
	if b[0] != recordMagic {
		return reading.Reading{}, fmt.Errorf("%w: %#02x", errRecordMagic, b[0])
	}
	if b[1] != recordVersion {
		return reading.Reading{}, fmt.Errorf("%w: %d", errRecordVersion, b[1])
	}
	calculatedCRC := i2crequest.CalculateCRC(b[:RecordLength-2])
	receivedCRC := binary.BigEndian.Uint16(b[RecordLength-2:])
	if calculatedCRC != receivedCRC {
		return reading.Reading{}, fmt.Errorf("%w: received %#04x, calculated %#04x", errRecordCRC, receivedCRC, calculatedCRC)
	}
	return reading.Reading{
		CO2:          int(int32(binary.BigEndian.Uint32(b[2:6]))),
		TemperatureC: int(int32(binary.BigEndian.Uint32(b[6:10]))),
		HumidityPct:  int(int32(binary.BigEndian.Uint32(b[10:14]))),
	}, nil
}
