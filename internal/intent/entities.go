package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Entities are the optional hints pulled out of a query. Activity is part of
// the shape the router reads but nothing here sets it.
type Entities struct {
	Distance     int    `json:"distance,omitempty"`
	DistanceUnit string `json:"distanceUnit,omitempty"`
	PriceRange   string `json:"priceRange,omitempty"`
	Time         string `json:"time,omitempty"`
	Atmosphere   string `json:"atmosphere,omitempty"`
	Dietary      string `json:"dietary,omitempty"`
	Activity     string `json:"activity,omitempty"`
}

var distancePattern = regexp.MustCompile(`(?i)(\d+)\s*(km|kilometer|mile|m)`)

// ExtractEntities expects an already lower-cased query.
func ExtractEntities(q string) Entities {
	var e Entities

	if m := distancePattern.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			e.Distance = n
			e.DistanceUnit = m[2]
		}
	}

	switch {
	case containsAny(q, "cheap", "budget", "affordable"):
		e.PriceRange = "low"
	case containsAny(q, "expensive", "luxury", "high end"):
		e.PriceRange = "high"
	}

	switch {
	case containsAny(q, "today", "now"):
		e.Time = "immediate"
	case containsAny(q, "tomorrow", "next"):
		e.Time = "future"
	}

	switch {
	case containsAny(q, "quiet", "peaceful"):
		e.Atmosphere = "quiet"
	case containsAny(q, "busy", "crowded"):
		e.Atmosphere = "busy"
	}

	switch {
	case containsAny(q, "vegetarian", "vegan"):
		e.Dietary = "vegetarian"
	case strings.Contains(q, "halal"):
		e.Dietary = "halal"
	case strings.Contains(q, "kosher"):
		e.Dietary = "kosher"
	}

	return e
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
