// Package display draws readings on the e-paper panel.
package display

import (
	"fmt"
	"image"

	"github.com/TheCacophonyProject/air-monitor/reading"
)

// Renderer redraws the whole screen with the primary text from the top left
// and the secondary text at secondaryPos.
type Renderer interface {
	Render(primary, secondary string, secondaryPos image.Point) error
}

// FormatPrimary lays out the three metrics, each followed by its trend
// symbol and separated by a blank line.
func FormatPrimary(r reading.Reading, t reading.Trends) string {
	return fmt.Sprintf("\n%dppm %s\n \n%dC %s\n \n%d%% %s",
		r.CO2, t.CO2.Symbol(),
		r.TemperatureC, t.TemperatureC.Symbol(),
		r.HumidityPct, t.HumidityPct.Symbol())
}
