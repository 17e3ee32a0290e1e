package tui

import (
	"fmt"
	"strings"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline scales values onto block characters, lowest to highest.
func sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func renderForecast(points []services.ForecastPoint) string {
	if len(points) == 0 {
		return dimStyle.Render("Forecast unavailable")
	}
	temps := make([]float64, len(points))
	lo, hi := points[0].TemperatureC, points[0].TemperatureC
	for i, p := range points {
		temps[i] = p.TemperatureC
		lo = min(lo, p.TemperatureC)
		hi = max(hi, p.TemperatureC)
	}
	from := points[0].Time.Format("15:04")
	to := points[len(points)-1].Time.Format("15:04")
	return warmStyle.Render(sparkline(temps)) + " " +
		dimStyle.Render(fmt.Sprintf("%.0f°..%.0f° (%s-%s)", lo, hi, from, to))
}
