package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxForecastPoints is the number of 3-hour forecast slots kept (one day).
const maxForecastPoints = 8

type ForecastPoint struct {
	Time         time.Time
	TemperatureC float64
}

// WeatherSnapshot is a point-in-time read for one city. It is replaced
// wholesale on re-fetch.
type WeatherSnapshot struct {
	City         string
	TemperatureC float64
	Description  string
	HumidityPct  int
	WindSpeed    float64 // m/s
	Forecast     []ForecastPoint
}

// Summary is the one-line form used in prompts and the header.
func (w *WeatherSnapshot) Summary() string {
	return fmt.Sprintf("%.1f°C, %s", w.TemperatureC, w.Description)
}

type owmCurrent struct {
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

type owmForecast struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main *struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

// Weather fetches current conditions and the next day's forecast for city.
// A failed forecast leaves Forecast empty; a failed or incomplete current
// reading is ErrUnavailable.
func (c *Client) Weather(ctx context.Context, city string) (*WeatherSnapshot, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, unavailable("weather", "no city")
	}
	if c.opts.WeatherKey == "" {
		return nil, unavailable("weather", "no api key")
	}

	var cur owmCurrent
	if err := c.getJSON(ctx, "weather", c.weatherURL("weather", city), &cur); err != nil {
		return nil, err
	}
	if cur.Main == nil || cur.Main.Temp == nil || cur.Main.Humidity == nil ||
		len(cur.Weather) == 0 || cur.Wind == nil || cur.Wind.Speed == nil {
		return nil, unavailable("weather", "incomplete payload")
	}

	snap := &WeatherSnapshot{
		City:         city,
		TemperatureC: *cur.Main.Temp,
		Description:  cur.Weather[0].Description,
		HumidityPct:  *cur.Main.Humidity,
		WindSpeed:    *cur.Wind.Speed,
	}

	points, err := c.forecast(ctx, city)
	if err != nil {
		c.log.Warn("forecast unavailable", zap.String("city", city), zap.Error(err))
	} else {
		snap.Forecast = points
	}
	return snap, nil
}

func (c *Client) forecast(ctx context.Context, city string) ([]ForecastPoint, error) {
	var fc owmForecast
	if err := c.getJSON(ctx, "forecast", c.weatherURL("forecast", city), &fc); err != nil {
		return nil, err
	}

	var points []ForecastPoint
	for _, item := range fc.List {
		if item.Main == nil || item.Main.Temp == nil {
			return nil, unavailable("forecast", "incomplete payload")
		}
		points = append(points, ForecastPoint{
			Time:         time.Unix(item.Dt, 0),
			TemperatureC: *item.Main.Temp,
		})
		if len(points) == maxForecastPoints {
			break
		}
	}
	return points, nil
}

func (c *Client) weatherURL(endpoint, city string) string {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.opts.WeatherKey)
	q.Set("units", c.opts.WeatherUnits)
	return c.opts.WeatherURL + "/" + endpoint + "?" + q.Encode()
}
