package types

import (
	"encoding/json"
	"strings"
)

// LatLon is a coordinate pair in the shape the places and meet-friend APIs use.
type LatLon struct {
	Lat float64 `json:"lat" example:"26.9124"`
	Lon float64 `json:"lon" example:"75.7873"`
}

// LatLng is the shape used by plan-day and route optimisation.
type LatLng struct {
	Lat float64 `json:"lat" example:"26.9124"`
	Lng float64 `json:"lng" example:"75.7873"`
}

func (l LatLng) LatLon() LatLon { return LatLon{Lat: l.Lat, Lon: l.Lng} }

func (l LatLon) LatLng() LatLng { return LatLng{Lat: l.Lat, Lng: l.Lon} }

type Category struct {
	ID   string `json:"fsq_category_id,omitempty"`
	Name string `json:"name"`
}

// FlexString decodes either a JSON string or an array of strings.
// The provider is not consistent about neighborhood.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*f = FlexString(strings.Join(list, ", "))
	return nil
}

type PlaceLocation struct {
	Address          string     `json:"address,omitempty"`
	Locality         string     `json:"locality,omitempty"`
	Neighborhood     FlexString `json:"neighborhood,omitempty"`
	Region           string     `json:"region,omitempty"`
	Postcode         string     `json:"postcode,omitempty"`
	Country          string     `json:"country,omitempty"`
	FormattedAddress string     `json:"formatted_address,omitempty"`
}

// AreaName is the most specific human readable area for reverse geocoding.
func (l *PlaceLocation) AreaName() string {
	if l == nil {
		return ""
	}
	switch {
	case l.Locality != "":
		return l.Locality
	case l.Neighborhood != "":
		return string(l.Neighborhood)
	default:
		return l.Address
	}
}

type PlaceStats struct {
	TotalPhotos  int `json:"total_photos,omitempty"`
	TotalTips    int `json:"total_tips,omitempty"`
	TotalRatings int `json:"total_ratings,omitempty"`
}

// Place is a venue as returned by the places provider, optionally enriched
// with photo URLs. Zero Distance, Rating and coordinates mean unknown.
type Place struct {
	FsqPlaceID string         `json:"fsq_place_id"`
	Name       string         `json:"name"`
	Categories []Category     `json:"categories,omitempty"`
	Distance   int            `json:"distance,omitempty"`
	Rating     float64        `json:"rating,omitempty"`
	Latitude   float64        `json:"latitude,omitempty"`
	Longitude  float64        `json:"longitude,omitempty"`
	Location   *PlaceLocation `json:"location,omitempty"`
	Tel        string         `json:"tel,omitempty"`
	Website    string         `json:"website,omitempty"`
	Stats      *PlaceStats    `json:"stats,omitempty"`
	Photos     []string       `json:"photos,omitempty"`
}

// PrimaryCategory returns the first category name or def.
func (p Place) PrimaryCategory(def string) string {
	if len(p.Categories) > 0 && p.Categories[0].Name != "" {
		return p.Categories[0].Name
	}
	return def
}

func (p Place) HasCoordinates() bool {
	return p.Latitude != 0 && p.Longitude != 0
}

type SearchResponse struct {
	Results []Place `json:"results"`
}

type Photo struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Suffix    string `json:"suffix,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	URL       string `json:"url,omitempty"`
}

// SizedURL joins prefix and suffix around size, falling back to URL.
func (p Photo) SizedURL(size string) string {
	if p.Prefix != "" && p.Suffix != "" {
		return p.Prefix + size + p.Suffix
	}
	return p.URL
}

type Tip struct {
	ID         string `json:"id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Text       string `json:"text"`
	Lang       string `json:"lang,omitempty"`
	AgreeCount int    `json:"agree_count,omitempty"`
}

type GeocodeResult struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
	ID   string  `json:"id"`
}

type MeetFriendRequest struct {
	User     *LatLon `json:"user,omitempty"`
	Friend   *LatLon `json:"friend,omitempty"`
	Activity string  `json:"activity,omitempty"`
	Radius   int     `json:"radius,omitempty"`
}

type MeetFriendResponse struct {
	Midpoint LatLon  `json:"midpoint"`
	Results  []Place `json:"results"`
}

type ExploreGroup struct {
	Type  string  `json:"type"`
	Name  string  `json:"name"`
	Items []Place `json:"items"`
}

type ExploreResponse struct {
	Groups []ExploreGroup `json:"groups"`
}
