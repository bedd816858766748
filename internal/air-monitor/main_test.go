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

package airmonitor

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/TheCacophonyProject/air-monitor/reading"
	"github.com/TheCacophonyProject/air-monitor/state"
	"github.com/TheCacophonyProject/go-utils/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcArgs(t *testing.T) {
	args, err := procArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultConfigDir, args.ConfigDir)
	assert.Nil(t, args.Status)
	assert.Nil(t, args.ResetState)
	assert.False(t, args.SkipSleep)

	args, err = procArgs([]string{"--config-dir", "/tmp/conf", "-l", "debug", "status"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/conf", args.ConfigDir)
	assert.Equal(t, "debug", args.LogLevel)
	assert.NotNil(t, args.Status)

	args, err = procArgs([]string{"--log-serial", "/dev/serial0", "reset-state"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/serial0", args.LogSerial)
	assert.NotNil(t, args.ResetState)

	args, err = procArgs([]string{"--skip-sleep", "cycle"})
	require.NoError(t, err)
	assert.True(t, args.SkipSleep)
	assert.NotNil(t, args.Cycle)

	_, err = procArgs([]string{"bogus"})
	assert.Error(t, err)
}

func TestTeeToMissingSerial(t *testing.T) {
	var out bytes.Buffer
	l := logging.NewLogger("info")
	l.SetOutput(&out)

	closeSerial := teeToSerial(l, filepath.Join(t.TempDir(), "ttyAMA9"))
	closeSerial()
	assert.Contains(t, out.String(), "Not logging to")

	out.Reset()
	l.Info("still here")
	assert.Contains(t, out.String(), "still here")
}

func fileConfig(t *testing.T) *Config {
	dir := t.TempDir()
	return &Config{State: StateConfig{
		Backend:     backendFile,
		File:        filepath.Join(dir, "state.bin"),
		LegacyPrefs: filepath.Join(dir, "co2sensor.json"),
	}}
}

func TestStatus(t *testing.T) {
	conf := fileConfig(t)
	path := conf.State.File

	var out bytes.Buffer
	require.NoError(t, status(conf, &out))
	assert.Equal(t, "file "+path+": no state record, the next cycle starts from co2: 0ppm, temperature: 0C, humidity: 0%\n", out.String())

	require.NoError(t, state.NewStore(&state.File{Path: path}).Save(reading.Reading{CO2: 650, TemperatureC: 21, HumidityPct: 45}))
	out.Reset()
	require.NoError(t, status(conf, &out))
	assert.Equal(t, "file "+path+": co2: 650ppm, temperature: 21C, humidity: 45%\n", out.String())
}

func TestStatusShowsLegacyReading(t *testing.T) {
	conf := fileConfig(t)
	prefs := state.OpenPrefs(conf.State.LegacyPrefs)
	require.NoError(t, prefs.PutInt(state.KeyCO2, 700))
	require.NoError(t, prefs.PutInt(state.KeyTemperature, 19))

	var out bytes.Buffer
	require.NoError(t, status(conf, &out))
	assert.Contains(t, out.String(), "starts from co2: 700ppm, temperature: 19C, humidity: 0%")
}

func TestResetState(t *testing.T) {
	conf := fileConfig(t)
	prefs := state.OpenPrefs(conf.State.LegacyPrefs)
	require.NoError(t, prefs.PutInt(state.KeyCO2, 812))

	store, err := openStore(conf, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(reading.Reading{CO2: 650, TemperatureC: 21, HumidityPct: 45}))

	require.NoError(t, resetState(conf))
	store, err = openStore(conf, nil)
	require.NoError(t, err)
	assert.Equal(t, reading.Reading{}, store.Load(), "legacy prefs must not come back")

	// Resetting again is fine.
	assert.NoError(t, resetState(conf))
}

func TestOpenPublishersNoneConfigured(t *testing.T) {
	assert.Empty(t, openPublishers(&Config{}))

	p := openPublishers(&Config{Events: EventsConfig{Enabled: true}})
	assert.Len(t, p, 1)
}

func TestOpenPublishersDoesNotWaitForBroker(t *testing.T) {
	start := time.Now()
	p := openPublishers(&Config{MQTT: MQTTConfig{Broker: "tcp://192.0.2.1:1883", ClientID: "air-monitor", Topic: "air-monitor/reading"}})
	assert.Len(t, p, 1)
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, p.Close())
}
