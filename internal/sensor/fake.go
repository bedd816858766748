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

package sensor

// FakeSensor returns a fixed sample, for tests and running without hardware.
type FakeSensor struct {
	Available bool
	CO2       float32
	Temp      float32
	Humidity  float32
	InitErr   error
	ReadErr   error

	InitCalls    int
	ReadingCalls int
	OnCall       func(name string)
}

func (f *FakeSensor) Initialize() error {
	f.InitCalls++
	f.record("sensor.Initialize")
	return f.InitErr
}

func (f *FakeSensor) IsAvailable() bool {
	f.record("sensor.IsAvailable")
	return f.Available
}

func (f *FakeSensor) GetReading() (float32, float32, float32, error) {
	f.ReadingCalls++
	f.record("sensor.GetReading")
	if f.ReadErr != nil {
		return 0, 0, 0, f.ReadErr
	}
	return f.CO2, f.Temp, f.Humidity, nil
}

func (f *FakeSensor) record(name string) {
	if f.OnCall != nil {
		f.OnCall(name)
	}
}
