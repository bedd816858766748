// Package battery samples the battery voltage for display.
package battery

import "fmt"

// UnknownVoltage is shown when the battery couldn't be sampled.
const UnknownVoltage = "?.??V"

// Sampler returns a raw ADC reading of the battery.
type Sampler interface {
	ReadRaw() (int, error)
}

// Scale converts raw counts to volts linearly.
type Scale struct {
	MaxCounts  int
	MaxVoltage float64
}

func (s Scale) Voltage(raw int) float64 {
	if s.MaxCounts == 0 {
		return 0
	}
	return float64(raw) / float64(s.MaxCounts) * s.MaxVoltage
}

func FormatVoltage(v float64) string {
	return fmt.Sprintf("%.2fV", v)
}

// FakeBattery returns a fixed raw value.
type FakeBattery struct {
	Raw    int
	Err    error
	OnCall func(name string)
}

func (f *FakeBattery) ReadRaw() (int, error) {
	if f.OnCall != nil {
		f.OnCall("battery.ReadRaw")
	}
	return f.Raw, f.Err
}
