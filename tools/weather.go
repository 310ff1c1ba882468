// Weather tool backed by the wttr.in API.
//
// wttr.in is a free, no-authentication weather service. A request like
// https://wttr.in/Paris?format=j1 returns JSON with current conditions.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const weatherAPIURL = "https://wttr.in/%s?format=j1"

// WeatherTool reports current weather for a city.
type WeatherTool struct {
	client *http.Client
	apiURL string
}

// NewWeatherTool creates a weather tool with the given timeout in seconds.
func NewWeatherTool(timeoutSecs uint64) *WeatherTool {
	return &WeatherTool{
		client: &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
		apiURL: weatherAPIURL,
	}
}

// Metadata returns the tool metadata.
func (t *WeatherTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "weather",
		Description: "Gets current weather for a city. Returns temperature and conditions.",
		Parameters: []ToolParameter{
			{Name: "city", ParamType: "string", Description: `Name of the city (e.g., "Paris", "Tokyo", "New York")`, Required: true},
		},
	}
}

// wttrResponse covers the slice of wttr.in's j1 format we report on.
type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		FeelsLikeC  string `json:"FeelsLikeC"`
		Humidity    string `json:"humidity"`
		WindspeedKm string `json:"windspeedKmph"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

// Execute looks up current conditions for the city parameter.
func (t *WeatherTool) Execute(ctx context.Context, params map[string]string) (ToolResult, error) {
	city := strings.TrimSpace(params["city"])
	if city == "" {
		return FailureResultf("city parameter is required"), nil
	}

	url := fmt.Sprintf(t.apiURL, strings.ReplaceAll(city, " ", "+"))
	body, err := fetchJSON(ctx, t.client, url)
	if err != nil {
		return FailureResultf("could not get weather for %q: %v", city, err), nil
	}

	var wttr wttrResponse
	if err := json.Unmarshal(body, &wttr); err != nil {
		return FailureResultf("could not parse weather data for %q: %v", city, err), nil
	}
	if len(wttr.CurrentCondition) == 0 {
		return FailureResultf("no weather data available for %q", city), nil
	}

	current := wttr.CurrentCondition[0]
	description := ""
	if len(current.WeatherDesc) > 0 {
		description = current.WeatherDesc[0].Value
	}

	return SuccessResult(fmt.Sprintf(
		"%s: %s°C (feels like %s°C), %s. Humidity: %s%%, Wind: %s km/h",
		city, current.TempC, current.FeelsLikeC, description, current.Humidity, current.WindspeedKm,
	)), nil
}

var _ Tool = (*WeatherTool)(nil)
