// Country information tool backed by the REST Countries API.
//
// REST Countries is a free, no-authentication API. A request like
// https://restcountries.com/v3.1/name/france returns an array of matching
// countries with capital, population, languages and more.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const countryAPIURL = "https://restcountries.com/v3.1/name/%s"

// CountryInfoTool reports facts about a country.
type CountryInfoTool struct {
	client *http.Client
	apiURL string
}

// NewCountryInfoTool creates a country info tool with the given timeout in seconds.
func NewCountryInfoTool(timeoutSecs uint64) *CountryInfoTool {
	return &CountryInfoTool{
		client: &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
		apiURL: countryAPIURL,
	}
}

// Metadata returns the tool metadata.
func (t *CountryInfoTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "country_info",
		Description: "Gets information about a country: capital, population, region, and languages.",
		Parameters: []ToolParameter{
			{Name: "country", ParamType: "string", Description: `Name of the country (e.g., "France", "Japan", "Brazil")`, Required: true},
		},
	}
}

// countryRecord covers the slice of the v3.1 response we report on.
type countryRecord struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string          `json:"capital"`
	Population int64             `json:"population"`
	Region     string            `json:"region"`
	Subregion  string            `json:"subregion"`
	Languages  map[string]string `json:"languages"`
}

// Execute looks up the country parameter and formats a one-line summary.
func (t *CountryInfoTool) Execute(ctx context.Context, params map[string]string) (ToolResult, error) {
	country := strings.TrimSpace(params["country"])
	if country == "" {
		return FailureResultf("country parameter is required"), nil
	}

	reqURL := fmt.Sprintf(t.apiURL, url.PathEscape(country))
	body, err := fetchJSON(ctx, t.client, reqURL)
	if err != nil {
		return FailureResultf("could not find information for country %q: %v", country, err), nil
	}

	// The API returns an array of matches; take the first.
	var records []countryRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return FailureResultf("could not parse country data for %q: %v", country, err), nil
	}
	if len(records) == 0 {
		return FailureResultf("no information found for country %q", country), nil
	}

	record := records[0]
	capital := "N/A"
	if len(record.Capital) > 0 {
		capital = record.Capital[0]
	}
	subregion := record.Subregion
	if subregion == "" {
		subregion = "N/A"
	}

	return SuccessResult(fmt.Sprintf(
		"%s - Capital: %s, Population: %d, Region: %s (%s), Languages: %s",
		record.Name.Common, capital, record.Population, record.Region, subregion,
		formatLanguages(record.Languages),
	)), nil
}

// formatLanguages lists up to three languages in stable order.
func formatLanguages(languages map[string]string) string {
	if len(languages) == 0 {
		return "N/A"
	}

	names := make([]string, 0, len(languages))
	for _, name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 3 {
		return strings.Join(names[:3], ", ") + ", ..."
	}
	return strings.Join(names, ", ")
}

var _ Tool = (*CountryInfoTool)(nil)
