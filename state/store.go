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

// Package state keeps the last accepted reading across power cycles.
package state

import (
	"errors"
	"fmt"

	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/TheCacophonyProject/go-utils/logging"
)

var log = logging.NewLogger("info")

// Backend stores one whole record. WriteRecord must replace the previous
// record in a single operation.
type Backend interface {
	ReadRecord() ([]byte, error)
	WriteRecord(b []byte) error
	String() string
}

type Store struct {
	backend Backend
	legacy  KeyValue
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// WithLegacy makes Load fall back to keyed preferences when the backend
// holds no record yet.
func (s *Store) WithLegacy(kv KeyValue) *Store {
	s.legacy = kv
	return s
}

func (s *Store) String() string {
	return s.backend.String()
}

// Inspect returns the stored reading or why there isn't a usable one.
func (s *Store) Inspect() (reading.Reading, error) {
	b, err := s.backend.ReadRecord()
	if err != nil {
		return reading.Reading{}, err
	}
	return DecodeRecord(b)
}

// Load returns the last saved reading. Anything unusable reads as zeros.
func (s *Store) Load() reading.Reading {
	r, err := s.Inspect()
	if err == nil {
		return r
	}
	if errors.Is(err, ErrNoRecord) && s.legacy != nil {
		log.Debug("No state record, reading legacy preferences")
		return loadLegacy(s.legacy)
	}
	log.Debugf("Using zero reading from %s: %v", s.backend, err)
	return reading.Reading{}
}

// Save replaces the stored reading with r.
func (s *Store) Save(r reading.Reading) error {
	if err := s.backend.WriteRecord(EncodeRecord(r)); err != nil {
		return fmt.Errorf("failed to save reading to %s: %w", s.backend, err)
	}
	return nil
}

// Clear stores a zero reading. Writing a record rather than erasing one
// keeps legacy preferences from being read back on the next Load.
func (s *Store) Clear() error {
	return s.Save(reading.Reading{})
}
