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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	data     []byte
	writes   int
	writeErr error
}

func (m *memBackend) String() string { return "memory" }

func (m *memBackend) ReadRecord() ([]byte, error) {
	if m.data == nil {
		return nil, ErrNoRecord
	}
	return m.data, nil
}

func (m *memBackend) WriteRecord(b []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data = append([]byte{}, b...)
	return nil
}

func TestFirstLoadIsZero(t *testing.T) {
	s := NewStore(&memBackend{})
	assert.Equal(t, reading.Reading{}, s.Load())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	backend := &memBackend{}
	s := NewStore(backend)
	for _, r := range []reading.Reading{
		{CO2: 400, TemperatureC: 22, HumidityPct: 45},
		{CO2: 5000, TemperatureC: -12, HumidityPct: 100},
		{},
	} {
		require.NoError(t, s.Save(r))
		assert.Equal(t, r, s.Load())
	}
	assert.Equal(t, 3, backend.writes, "one write per save")
}

func TestCorruptRecordLoadsZero(t *testing.T) {
	b := append([]byte{}, record400...)
	b[3] ^= 0xFF
	s := NewStore(&memBackend{data: b})
	assert.Equal(t, reading.Reading{}, s.Load())

	_, err := s.Inspect()
	assert.ErrorIs(t, err, errRecordCRC)
}

func TestSaveErrorIsWrapped(t *testing.T) {
	failure := errors.New("bus fault")
	s := NewStore(&memBackend{writeErr: failure})
	err := s.Save(reading.Reading{CO2: 1})
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "memory")
}

func TestClear(t *testing.T) {
	s := NewStore(&memBackend{})
	require.NoError(t, s.Save(reading.Reading{CO2: 900, TemperatureC: 20, HumidityPct: 50}))
	require.NoError(t, s.Clear())
	assert.Equal(t, reading.Reading{}, s.Load())
}

func TestLegacyPrefsMigration(t *testing.T) {
	dir := t.TempDir()
	prefs := OpenPrefs(filepath.Join(dir, "prefs.json"))
	require.NoError(t, prefs.PutInt(KeyCO2, 812))
	require.NoError(t, prefs.PutInt(KeyHumidity, 38))

	backend := &memBackend{}
	s := NewStore(backend).WithLegacy(prefs)
	assert.Equal(t, reading.Reading{CO2: 812, TemperatureC: 0, HumidityPct: 38}, s.Load())

	next := reading.Reading{CO2: 950, TemperatureC: 21, HumidityPct: 40}
	require.NoError(t, s.Save(next))
	assert.Equal(t, next, s.Load(), "record wins once written")
	assert.Equal(t, 812, prefs.GetInt(KeyCO2, 0), "legacy keys are never written")
}

func TestClearHidesLegacyPrefs(t *testing.T) {
	prefs := OpenPrefs(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, prefs.PutInt(KeyCO2, 812))

	backend := &memBackend{}
	s := NewStore(backend).WithLegacy(prefs)
	require.Equal(t, 812, s.Load().CO2)

	require.NoError(t, s.Clear())
	assert.Equal(t, reading.Reading{}, s.Load())
	assert.Equal(t, EncodeRecord(reading.Reading{}), backend.data)
}

func TestLegacyIgnoredWhenRecordIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	prefs := OpenPrefs(filepath.Join(dir, "prefs.json"))
	require.NoError(t, prefs.PutInt(KeyCO2, 812))

	s := NewStore(&memBackend{data: []byte{0x01}}).WithLegacy(prefs)
	assert.Equal(t, reading.Reading{}, s.Load())
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.bin")
	s := NewStore(&File{Path: path})
	assert.Equal(t, reading.Reading{}, s.Load())

	r := reading.Reading{CO2: 400, TemperatureC: 22, HumidityPct: 45}
	require.NoError(t, s.Save(r))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, record400, b)
	assert.Equal(t, r, s.Load())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear(), "clearing twice is fine")
	_, err = s.Inspect()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestEmptyFileIsNoRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := (&File{Path: path}).ReadRecord()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p := OpenPrefs(path)
	assert.Equal(t, 7, p.GetInt(KeyTemperature, 7))

	require.NoError(t, p.PutInt(KeyTemperature, 19))
	assert.Equal(t, 19, p.GetInt(KeyTemperature, 7))
	assert.Equal(t, 0, p.GetInt(KeyHumidity, 0))

	other := &Prefs{Path: path, Namespace: "other"}
	assert.Equal(t, -1, other.GetInt(KeyTemperature, -1), "namespaces are separate")

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	assert.Equal(t, 3, p.GetInt(KeyTemperature, 3), "unreadable prefs fall back to default")
}
