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

package reading

// Trend is the direction a metric moved between two accepted readings.
type Trend int

const (
	Flat Trend = iota
	Up
	Down
)

// TrendOf compares a new value against the old one.
func TrendOf(newValue, oldValue int) Trend {
	switch {
	case newValue > oldValue:
		return Up
	case newValue < oldValue:
		return Down
	default:
		return Flat
	}
}

// Symbol is the glyph drawn next to a metric on the display.
func (t Trend) Symbol() string {
	switch t {
	case Up:
		return "/\\"
	case Down:
		return "\\/"
	default:
		return "-"
	}
}

func (t Trend) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// MarshalText lets trends appear by name in JSON payloads.
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type Trends struct {
	CO2          Trend `json:"co2"`
	TemperatureC Trend `json:"temperature"`
	HumidityPct  Trend `json:"humidity"`
}

// Compare computes the trend of every metric from old to current.
func Compare(current, old Reading) Trends {
	return Trends{
		CO2:          TrendOf(current.CO2, old.CO2),
		TemperatureC: TrendOf(current.TemperatureC, old.TemperatureC),
		HumidityPct:  TrendOf(current.HumidityPct, old.HumidityPct),
	}
}
