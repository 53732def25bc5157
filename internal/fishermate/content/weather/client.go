package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"
	defaultTimeout = 10 * time.Second
)

// ErrNoAPIKey is returned by Client calls when no key is configured.
var ErrNoAPIKey = errors.New("weather: OpenWeather API key not configured")

// ClientConfig configures the OpenWeather client.
type ClientConfig struct {
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to
	// https://api.openweathermap.org/data/2.5.
	BaseURL string

	// Timeout bounds each HTTP request. Defaults to 10 s.
	Timeout time.Duration
}

// Client calls the OpenWeather current-weather and forecast APIs. It is
// safe for concurrent use.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient returns a Client for cfg.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Current is the present conditions at a point.
type Current struct {
	Place       string    `json:"name"`
	Country     string    `json:"country"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	WindKmh     float64   `json:"wind_speed"`
	WindDeg     int       `json:"wind_direction"`
	Visibility  float64   `json:"visibility"` // km
	Rain1h      float64   `json:"rain_1h"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
}

// Slot is one three-hour forecast step.
type Slot struct {
	At          time.Time `json:"datetime"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	WindKmh     float64   `json:"wind_speed"`
	WindDeg     int       `json:"wind_direction"`
	Rain3h      float64   `json:"precipitation"`
	Level       Level     `json:"safety_level"`
}

// Forecast is a multi-day forecast.
type Forecast struct {
	Place   string `json:"name"`
	Country string `json:"country"`
	Slots   []Slot `json:"forecast"`
	Days    []Day  `json:"daily_summary"`
	offset  int    // seconds east of UTC
}

// msToKmh converts OpenWeather's metric wind speed.
func msToKmh(v float64) float64 { return v * 3.6 }

// Current fetches the current conditions at lat/lon.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Current, error) {
	body, err := c.get(ctx, "/weather", lat, lon, nil)
	if err != nil {
		return Current{}, err
	}
	if !gjson.GetBytes(body, "main.temp").Exists() {
		return Current{}, fmt.Errorf("weather: current: missing main.temp")
	}
	r := gjson.ParseBytes(body)
	vis := r.Get("visibility")
	visKm := 10.0
	if vis.Exists() {
		visKm = vis.Float() / 1000
	}
	country := r.Get("sys.country").String()
	if country == "" {
		country = "IN"
	}
	name := r.Get("name").String()
	if name == "" {
		name = "Unknown"
	}
	return Current{
		Place:       name,
		Country:     country,
		Lat:         lat,
		Lon:         lon,
		Temperature: r.Get("main.temp").Float(),
		FeelsLike:   r.Get("main.feels_like").Float(),
		Humidity:    int(r.Get("main.humidity").Int()),
		Pressure:    int(r.Get("main.pressure").Int()),
		Description: r.Get("weather.0.description").String(),
		Icon:        r.Get("weather.0.icon").String(),
		WindKmh:     msToKmh(r.Get("wind.speed").Float()),
		WindDeg:     int(r.Get("wind.deg").Int()),
		Visibility:  visKm,
		Rain1h:      r.Get("rain.1h").Float(),
		Sunrise:     time.Unix(r.Get("sys.sunrise").Int(), 0).UTC(),
		Sunset:      time.Unix(r.Get("sys.sunset").Int(), 0).UTC(),
	}, nil
}

// Forecast fetches a forecast covering days days in three-hour slots.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (Forecast, error) {
	if days <= 0 {
		days = 3
	}
	body, err := c.get(ctx, "/forecast", lat, lon, url.Values{"cnt": {strconv.Itoa(days * 8)}})
	if err != nil {
		return Forecast{}, err
	}
	r := gjson.ParseBytes(body)
	list := r.Get("list")
	if !list.IsArray() {
		return Forecast{}, fmt.Errorf("weather: forecast: missing list")
	}
	f := Forecast{
		Place:   r.Get("city.name").String(),
		Country: r.Get("city.country").String(),
		offset:  int(r.Get("city.timezone").Int()),
	}
	list.ForEach(func(_, item gjson.Result) bool {
		s := Slot{
			At:          time.Unix(item.Get("dt").Int(), 0).UTC(),
			Temperature: item.Get("main.temp").Float(),
			Humidity:    int(item.Get("main.humidity").Int()),
			Pressure:    int(item.Get("main.pressure").Int()),
			Description: item.Get("weather.0.description").String(),
			Icon:        item.Get("weather.0.icon").String(),
			WindKmh:     msToKmh(item.Get("wind.speed").Float()),
			WindDeg:     int(item.Get("wind.deg").Int()),
			Rain3h:      item.Get("rain.3h").Float(),
		}
		s.Level = SlotLevel(s.WindKmh, s.Rain3h)
		f.Slots = append(f.Slots, s)
		return true
	})
	f.Days = summarize(f.Slots, time.FixedZone("local", f.offset))
	return f, nil
}

func (c *Client) get(ctx context.Context, path string, lat, lon float64, extra url.Values) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	q := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', -1, 64)},
		"appid": {c.cfg.APIKey},
		"units": {"metric"},
	}
	for k, v := range extra {
		q[k] = v
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "message").String()
		return nil, fmt.Errorf("weather: HTTP %d: %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("weather: invalid JSON response")
	}
	return body, nil
}
