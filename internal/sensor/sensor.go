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

// Package sensor reads CO2, temperature and humidity.
package sensor

import "github.com/TheCacophonyProject/go-utils/logging"

var log = logging.NewLogger("info")

// Driver is a CO2/temperature/humidity sensor.
type Driver interface {
	// Initialize prepares the sensor for measuring. It is safe to call on
	// every boot.
	Initialize() error
	// IsAvailable reports whether a new measurement can be read now.
	IsAvailable() bool
	GetReading() (co2, temperatureC, humidityPct float32, err error)
}
