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

// Package reading holds the measurement snapshot and the rules deciding
// whether a new snapshot is worth showing.
package reading

import (
	"fmt"
	"math"
)

// Hysteresis bands. A metric is considered unchanged while it stays strictly
// inside last-deviation..last+deviation. A deviation of 0 means exact match.
const (
	CO2Deviation         = 100
	HumidityDeviation    = 2
	TemperatureDeviation = 0
)

// Reading is a single sampled or persisted measurement.
type Reading struct {
	CO2          int `json:"co2"`
	TemperatureC int `json:"temperature"`
	HumidityPct  int `json:"humidity"`
}

// FromSample rounds raw sensor values to the nearest whole unit.
func FromSample(co2, temperatureC, humidityPct float32) Reading {
	return Reading{
		CO2:          int(math.Round(float64(co2))),
		TemperatureC: int(math.Round(float64(temperatureC))),
		HumidityPct:  int(math.Round(float64(humidityPct))),
	}
}

func (r Reading) String() string {
	return fmt.Sprintf("co2: %dppm, temperature: %dC, humidity: %d%%", r.CO2, r.TemperatureC, r.HumidityPct)
}

// InRange reports whether last lies strictly inside value±deviation.
func InRange(value, last, deviation int) bool {
	return value-deviation < last && last < value+deviation
}

// HasChanged reports whether any metric of current has left the hysteresis
// band around last.
func HasChanged(current, last Reading) bool {
	co2Steady := InRange(current.CO2, last.CO2, CO2Deviation)
	humiditySteady := InRange(current.HumidityPct, last.HumidityPct, HumidityDeviation)
	temperatureSteady := current.TemperatureC == last.TemperatureC
	return !(co2Steady && humiditySteady && temperatureSteady)
}
