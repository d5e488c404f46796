package geocode

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"wanderlust/pkg/client"
	"wanderlust/pkg/model"
)

const DefaultMapboxURL = "https://api.mapbox.com"

var ErrNoMatch = errors.New("no geocoding match")

type Geocoder interface {
	// Geocode resolves free-form place text to a GeoJSON point.
	Geocode(ctx context.Context, query string) (*model.Geometry, error)
}

type mapboxResponse struct {
	Features []struct {
		Geometry model.Geometry `json:"geometry"`
	} `json:"features"`
}

// Mapbox calls the forward geocoding endpoint of the Mapbox places API.
type Mapbox struct {
	http  *client.HttpClient
	token string
}

func NewMapbox(baseURL, token string, timeout time.Duration) *Mapbox {
	return &Mapbox{
		http:  client.NewHttpClient(strings.TrimRight(baseURL, "/"), timeout),
		token: token,
	}
}

func (m *Mapbox) Geocode(ctx context.Context, query string) (*model.Geometry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoMatch
	}

	params := url.Values{}
	params.Set("access_token", m.token)
	params.Set("limit", "1")

	var resp mapboxResponse
	path := "/geocoding/v5/mapbox.places/" + url.PathEscape(query) + ".json"
	if err := m.http.GetJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 || len(resp.Features[0].Geometry.Coordinates) != 2 {
		return nil, ErrNoMatch
	}

	g := resp.Features[0].Geometry
	return model.NewPoint(g.Coordinates[0], g.Coordinates[1]), nil
}

// Disabled is used when no map token is configured.
type Disabled struct{}

func (Disabled) Geocode(context.Context, string) (*model.Geometry, error) {
	return nil, ErrNoMatch
}
