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

	"github.com/TheCacophonyProject/air-monitor/eeprom"
	"github.com/TheCacophonyProject/air-monitor/internal/battery"
	"github.com/TheCacophonyProject/air-monitor/internal/button"
	"github.com/TheCacophonyProject/air-monitor/internal/cycle"
	"github.com/TheCacophonyProject/air-monitor/internal/display"
	"github.com/TheCacophonyProject/air-monitor/internal/gpio"
	"github.com/TheCacophonyProject/air-monitor/internal/power"
	"github.com/TheCacophonyProject/air-monitor/internal/sensor"
	"github.com/TheCacophonyProject/air-monitor/internal/telemetry"
	"github.com/TheCacophonyProject/air-monitor/state"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/waveshare2in13v2"
	"periph.io/x/host/v3"
)

// eepromOffset is the page the state record is kept in, clear of the HAT
// identification data at the start of the chip.
const eepromOffset = 0xF0

// hardware is the cycle's collaborators plus what has to be closed after.
type hardware struct {
	cycle.Hardware
	closers []func() error
}

func (h *hardware) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i]())
	}
	return errors.Join(errs...)
}

func openBus(conf *Config) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(conf.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", conf.I2CBus, err)
	}
	return bus, nil
}

// openStore opens the configured state backend. bus is only needed, and
// only opened, for the EEPROM backend.
func openStore(conf *Config, bus func() (i2c.Bus, error)) (*state.Store, error) {
	var backend state.Backend
	switch conf.State.Backend {
	case backendEEPROM:
		b, err := bus()
		if err != nil {
			return nil, err
		}
		chip, err := eeprom.New(b, conf.EEPROMAddress, eepromOffset)
		if err != nil {
			return nil, err
		}
		backend = chip
	default:
		backend = &state.File{Path: conf.State.File}
	}

	store := state.NewStore(backend)
	if conf.State.LegacyPrefs != "" {
		store.WithLegacy(state.OpenPrefs(conf.State.LegacyPrefs))
	}
	return store, nil
}

func openHardware(conf *Config) (*hardware, error) {
	h := &hardware{}
	ok := false
	defer func() {
		if !ok {
			h.Close()
		}
	}()

	bus, err := openBus(conf)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, bus.Close)

	chip, err := gpio.OpenChip(conf.GPIOChip)
	if err != nil {
		return nil, err
	}
	h.closers = append(h.closers, chip.Close)

	h.Store, err = openStore(conf, func() (i2c.Bus, error) { return bus, nil })
	if err != nil {
		return nil, err
	}

	h.Sensor = sensor.NewSCD30(bus, conf.SensorAddress)

	h.Battery, err = battery.NewADS1115(bus, conf.ADCAddress, conf.ADCChannel)
	if err != nil {
		return nil, err
	}

	rtc, err := power.NewPCF8563(bus, conf.RTCAddress)
	if err != nil {
		return nil, err
	}
	h.Power = power.NewBoard(chip, conf.HoldLevel, rtc)

	// The button pin is requested on the first read, after the cycle has
	// released the hold.
	h.Button = button.New(chip, conf.ButtonPin, conf.WakeLevel)

	h.Renderer, err = openDisplay(conf, h)
	if err != nil {
		log.Errorf("Display unavailable: %v", err)
		h.Renderer = noDisplay{err: err}
	}

	if p := openPublishers(conf); len(p) > 0 {
		h.Publisher = p
		h.closers = append(h.closers, p.Close)
	}

	ok = true
	return h, nil
}

func openDisplay(conf *Config, h *hardware) (display.Renderer, error) {
	port, err := spireg.Open(conf.Display.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi port %q: %w", conf.Display.SPIPort, err)
	}
	h.closers = append(h.closers, port.Close)

	dev, err := waveshare2in13v2.NewHat(port, &waveshare2in13v2.EPD2in13v2)
	if err != nil {
		return nil, fmt.Errorf("failed to open e-paper: %w", err)
	}
	epaper, err := display.NewEPaper(dev, func() error {
		return dev.Init()
	})
	if err != nil {
		return nil, err
	}
	epaper.Rotate = conf.Display.Rotate
	return epaper, nil
}

// noDisplay stands in for a panel that could not be opened so the rest of
// the cycle still runs.
type noDisplay struct {
	err error
}

func (d noDisplay) Render(primary, secondary string, secondaryPos image.Point) error {
	return d.err
}

func openPublishers(conf *Config) telemetry.Multi {
	var publishers telemetry.Multi
	if conf.MQTT.Broker != "" {
		publishers = append(publishers, telemetry.NewMQTTPublisher(conf.MQTT.Broker, conf.MQTT.ClientID, conf.MQTT.Topic))
	}
	if conf.Events.Enabled {
		publishers = append(publishers, telemetry.NewEventPublisher())
	}
	return publishers
}
