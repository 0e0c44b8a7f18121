package chat

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dark-devil9/UrNav/internal/types"
)

// titleCase builds a fresh Caser per call; Casers are not safe to share.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

type destination struct {
	at            types.LatLon
	international bool
	display       string
}

// destinations are the places a search can be moved to. Other recognised
// cities keep the caller's own location.
var destinations = map[string]destination{
	"manali":    {at: types.LatLon{Lat: 32.2432, Lon: 77.1892}},
	"jaipur":    {at: types.LatLon{Lat: 26.9124, Lon: 75.7873}},
	"delhi":     {at: types.LatLon{Lat: 28.7041, Lon: 77.1025}},
	"mumbai":    {at: types.LatLon{Lat: 19.0760, Lon: 72.8777}},
	"udaipur":   {at: types.LatLon{Lat: 24.5854, Lon: 73.7125}},
	"germany":   {at: types.LatLon{Lat: 51.1657, Lon: 10.4515}, international: true},
	"france":    {at: types.LatLon{Lat: 46.2276, Lon: 2.2137}, international: true},
	"italy":     {at: types.LatLon{Lat: 41.8719, Lon: 12.5674}, international: true},
	"spain":     {at: types.LatLon{Lat: 40.4637, Lon: -3.7492}, international: true},
	"uk":        {at: types.LatLon{Lat: 55.3781, Lon: -3.4360}, international: true, display: "UK"},
	"usa":       {at: types.LatLon{Lat: 37.0902, Lon: -95.7129}, international: true, display: "USA"},
	"japan":     {at: types.LatLon{Lat: 36.2048, Lon: 138.2529}, international: true},
	"thailand":  {at: types.LatLon{Lat: 15.8700, Lon: 100.9925}, international: true},
	"singapore": {at: types.LatLon{Lat: 1.3521, Lon: 103.8198}, international: true},
	"dubai":     {at: types.LatLon{Lat: 25.2048, Lon: 55.2708}, international: true},
}

// displayName formats a lowered city for prompts and replies.
func displayName(city string) string {
	if d, ok := destinations[city]; ok && d.display != "" {
		return d.display
	}
	return titleCase(city)
}
