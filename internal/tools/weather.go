package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	geocodeURL          = "https://geocoding-api.open-meteo.com/v1/search"
	weatherURL          = "https://api.open-meteo.com/v1/forecast"
	weatherTimeout      = 15 * time.Second
	defaultForecastDays = 7
)

// wmoCodes maps WMO weather interpretation codes to descriptions (spec §4.4
// "weather", grounded on the Open-Meteo-backed weather tool).
var wmoCodes = map[int]string{
	0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Depositing rime fog",
	51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
	56: "Light freezing drizzle", 57: "Dense freezing drizzle",
	61: "Slight rain", 63: "Moderate rain", 65: "Heavy rain",
	66: "Light freezing rain", 67: "Heavy freezing rain",
	71: "Slight snowfall", 73: "Moderate snowfall", 75: "Heavy snowfall", 77: "Snow grains",
	80: "Slight rain showers", 81: "Moderate rain showers", 82: "Violent rain showers",
	85: "Slight snow showers", 86: "Heavy snow showers",
	95: "Thunderstorm", 96: "Thunderstorm with slight hail", 99: "Thunderstorm with heavy hail",
}

func wmoDescription(code int) string {
	if d, ok := wmoCodes[code]; ok {
		return d
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

type cityCoord struct {
	lat, lon float64
	timezone string
	name     string
}

// knownCities short-circuits geocoding for a handful of common cities,
// matching the original tool's built-in table.
var knownCities = map[string]cityCoord{
	"lviv":     {49.8397, 24.0297, "Europe/Kyiv", "Lviv, Ukraine"},
	"kyiv":     {50.4501, 30.5234, "Europe/Kyiv", "Kyiv, Ukraine"},
	"london":   {51.5074, -0.1278, "Europe/London", "London, UK"},
	"new york": {40.7128, -74.0060, "America/New_York", "New York, USA"},
	"tokyo":    {35.6762, 139.6503, "Asia/Tokyo", "Tokyo, Japan"},
	"berlin":   {52.5200, 13.4050, "Europe/Berlin", "Berlin, Germany"},
	"paris":    {48.8566, 2.3522, "Europe/Paris", "Paris, France"},
	"warsaw":   {52.2297, 21.0122, "Europe/Warsaw", "Warsaw, Poland"},
}

// WeatherTool gets current weather and a daily forecast for a city via the
// Open-Meteo API (no API key required).
type WeatherTool struct {
	DefaultCity string
	client      *http.Client
}

// NewWeatherTool creates a WeatherTool, defaulting to Lviv like the original.
func NewWeatherTool() *WeatherTool {
	return &WeatherTool{DefaultCity: "lviv", client: &http.Client{Timeout: weatherTimeout}}
}

func (t *WeatherTool) Name() string { return "weather" }

func (t *WeatherTool) Execute(ctx context.Context, params map[string]any) *Result {
	city, _ := params["city"].(string)
	city = strings.TrimSpace(city)
	if city == "" {
		city = t.DefaultCity
	}

	geo, err := t.geocode(ctx, city)
	if err != nil {
		return ErrorResult(err)
	}

	data, err := t.fetchForecast(ctx, geo)
	if err != nil {
		return ErrorResult(err)
	}

	return NewResult(formatWeather(geo.name, data))
}

func (t *WeatherTool) geocode(ctx context.Context, city string) (cityCoord, error) {
	if c, ok := knownCities[strings.ToLower(city)]; ok {
		return c, nil
	}

	q := url.Values{"name": {city}, "count": {"1"}, "language": {"en"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return cityCoord{}, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return cityCoord{}, fmt.Errorf("geocoding failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Timezone  string  `json:"timezone"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return cityCoord{}, fmt.Errorf("geocoding response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return cityCoord{}, fmt.Errorf("city not found: %s", city)
	}
	r := parsed.Results[0]
	name := strings.TrimRight(fmt.Sprintf("%s, %s", r.Name, r.Country), ", ")
	tz := r.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return cityCoord{lat: r.Latitude, lon: r.Longitude, timezone: tz, name: name}, nil
}

type forecastResponse struct {
	Current struct {
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (t *WeatherTool) fetchForecast(ctx context.Context, geo cityCoord) (forecastResponse, error) {
	q := url.Values{
		"latitude":      {fmt.Sprintf("%f", geo.lat)},
		"longitude":     {fmt.Sprintf("%f", geo.lon)},
		"timezone":      {geo.timezone},
		"current":       {"temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m"},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum"},
		"forecast_days": {fmt.Sprintf("%d", defaultForecastDays)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, weatherURL+"?"+q.Encode(), nil)
	if err != nil {
		return forecastResponse{}, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return forecastResponse{}, fmt.Errorf("weather API error: %w", err)
	}
	defer resp.Body.Close()

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return forecastResponse{}, fmt.Errorf("weather response: %w", err)
	}
	return data, nil
}

func formatWeather(cityName string, data forecastResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Now: %s, %.1f°C (feels %.1f°C), humidity %.0f%%, wind %.1f km/h\n",
		wmoDescription(data.Current.WeatherCode), data.Current.Temperature2m,
		data.Current.ApparentTemperature, data.Current.RelativeHumidity2m, data.Current.WindSpeed10m)

	if len(data.Daily.Time) > 0 {
		b.WriteString("Forecast:\n")
		for i, date := range data.Daily.Time {
			if i >= 7 {
				break
			}
			code := -1
			if i < len(data.Daily.WeatherCode) {
				code = data.Daily.WeatherCode[i]
			}
			var tmax, tmin, precip float64
			if i < len(data.Daily.Temperature2mMax) {
				tmax = data.Daily.Temperature2mMax[i]
			}
			if i < len(data.Daily.Temperature2mMin) {
				tmin = data.Daily.Temperature2mMin[i]
			}
			if i < len(data.Daily.PrecipitationSum) {
				precip = data.Daily.PrecipitationSum[i]
			}
			fmt.Fprintf(&b, "  %s: %s, %.0f–%.0f°C, precip %.1fmm\n", date, wmoDescription(code), tmin, tmax, precip)
		}
	}
	return strings.TrimRight(fmt.Sprintf("[Weather: %s]\n%s", cityName, b.String()), "\n")
}
