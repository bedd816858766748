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
	"errors"
	"fmt"
	"image"
	"reflect"
	"strings"
	"time"

	"github.com/TheCacophonyProject/air-monitor/internal/battery"
	"github.com/TheCacophonyProject/air-monitor/internal/cycle"
	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	configName       = "air-monitor"
	envPrefix        = "AIR_MONITOR"
	defaultConfigDir = "/etc/cacophony"
)

type Config struct {
	SleepDuration time.Duration `mapstructure:"sleep-duration"`

	GPIOChip  string     `mapstructure:"gpio-chip"`
	HoldPin   int        `mapstructure:"hold-pin"`
	HoldLevel gpio.Level `mapstructure:"hold-level"`
	ButtonPin int        `mapstructure:"button-pin"`
	WakeLevel gpio.Level `mapstructure:"wake-level"`

	I2CBus        string `mapstructure:"i2c-bus"`
	SensorAddress uint16 `mapstructure:"sensor-address"`
	RTCAddress    uint16 `mapstructure:"rtc-address"`
	ADCAddress    uint16 `mapstructure:"adc-address"`
	ADCChannel    int    `mapstructure:"adc-channel"`
	EEPROMAddress uint16 `mapstructure:"eeprom-address"`

	Battery BatteryConfig `mapstructure:"battery"`
	Display DisplayConfig `mapstructure:"display"`
	State   StateConfig   `mapstructure:"state"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	Events  EventsConfig  `mapstructure:"events"`
}

type BatteryConfig struct {
	MaxCounts  int     `mapstructure:"max-counts"`
	MaxVoltage float64 `mapstructure:"max-voltage"`
}

type DisplayConfig struct {
	SPIPort  string `mapstructure:"spi-port"`
	Rotate   bool   `mapstructure:"rotate"`
	BatteryX int    `mapstructure:"battery-x"`
	BatteryY int    `mapstructure:"battery-y"`
}

type StateConfig struct {
	Backend     string `mapstructure:"backend"`
	File        string `mapstructure:"file"`
	LegacyPrefs string `mapstructure:"legacy-prefs"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client-id"`
}

type EventsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	backendFile   = "file"
	backendEEPROM = "eeprom"
)

var defaults = map[string]interface{}{
	"sleep-duration": 240 * time.Second,

	"gpio-chip":  "gpiochip0",
	"hold-pin":   27,
	"hold-level": "low",
	"button-pin": 17,
	"wake-level": "high",

	"i2c-bus":        "",
	"sensor-address": 0x61,
	"rtc-address":    0x51,
	"adc-address":    0x48,
	"adc-channel":    0,
	"eeprom-address": 0x50,

	"battery.max-counts":  32767,
	"battery.max-voltage": 4.096,

	"display.spi-port":  "",
	"display.rotate":    false,
	"display.battery-x": 4,
	"display.battery-y": 240,

	"state.backend":      backendFile,
	"state.file":         "/var/lib/air-monitor/state.bin",
	"state.legacy-prefs": "/var/lib/air-monitor/co2sensor.json",

	"mqtt.broker":    "",
	"mqtt.topic":     "air-monitor/reading",
	"mqtt.client-id": "air-monitor",

	"events.enabled": false,
}

// ParseConfig reads air-monitor.toml from configDir. A missing file gives
// the defaults. Any key can also be set from the environment, e.g.
// AIR_MONITOR_MQTT_BROKER.
func ParseConfig(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Debugf("No %s config in %s, using defaults", configName, configDir)
	}

	conf := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToLevelHookFunc(),
	))
	if err := v.Unmarshal(conf, hook); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func stringToLevelHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(gpio.Low) {
			return data, nil
		}
		return gpio.ParseLevel(data.(string))
	}
}

func (c *Config) validate() error {
	if c.SleepDuration <= 0 {
		return fmt.Errorf("sleep-duration must be positive, got %s", c.SleepDuration)
	}
	if c.HoldPin == c.ButtonPin {
		return fmt.Errorf("hold-pin and button-pin are both %d", c.HoldPin)
	}
	if c.ADCChannel < 0 || c.ADCChannel > 3 {
		return fmt.Errorf("adc-channel must be 0 to 3, got %d", c.ADCChannel)
	}
	if c.Battery.MaxCounts <= 0 {
		return fmt.Errorf("battery.max-counts must be positive, got %d", c.Battery.MaxCounts)
	}
	switch c.State.Backend {
	case backendFile, backendEEPROM:
	default:
		return fmt.Errorf("unknown state.backend %q", c.State.Backend)
	}
	return nil
}

func (c *Config) cycleConfig(skipSleep bool) cycle.Config {
	return cycle.Config{
		HoldPin:       c.HoldPin,
		ButtonPin:     c.ButtonPin,
		WakeTrigger:   c.WakeLevel,
		SleepDuration: c.SleepDuration,
		BatteryScale: battery.Scale{
			MaxCounts:  c.Battery.MaxCounts,
			MaxVoltage: c.Battery.MaxVoltage,
		},
		BatteryPos: image.Pt(c.Display.BatteryX, c.Display.BatteryY),
		SkipSleep:  skipSleep,
	}
}
