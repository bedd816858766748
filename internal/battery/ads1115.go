package battery

import (
	"fmt"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
)

const (
	ADS1115Address = 0x48

	// fullScale of 4.096V puts 32767 counts at 4.096V.
	fullScale = 4096 * physic.MilliVolt
	dataRate  = 860 * physic.Hertz
)

var channels = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

type adcPin interface {
	Read() (analog.Sample, error)
}

// ADS1115 reads one single-ended channel in single-shot mode.
type ADS1115 struct {
	pin     adcPin
	channel int
}

func NewADS1115(bus i2c.Bus, address uint16, channel int) (*ADS1115, error) {
	if channel < 0 || channel >= len(channels) {
		return nil, fmt.Errorf("invalid ADS1115 channel %d", channel)
	}
	dev, err := ads1x15.NewADS1115(bus, &ads1x15.Opts{I2cAddress: address})
	if err != nil {
		return nil, fmt.Errorf("ads1115: %w", err)
	}
	pin, err := dev.PinForChannel(channels[channel], fullScale, dataRate, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("ads1115: channel %d: %w", channel, err)
	}
	return &ADS1115{pin: pin, channel: channel}, nil
}

// ReadRaw runs one conversion. Negative readings are clamped to 0.
func (a *ADS1115) ReadRaw() (int, error) {
	s, err := a.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1115: read channel %d: %w", a.channel, err)
	}
	raw := int(s.Raw)
	if raw < 0 {
		raw = 0
	}
	return raw, nil
}
