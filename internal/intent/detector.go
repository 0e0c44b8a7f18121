// Package intent maps a free-text location question to one of a fixed set of
// intents, extracts a few entities from it and renders the chat reply for the
// data the backend returned.
package intent

import (
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ExplorePlaces     = "explore_places"
	FindFood          = "find_food"
	FreeActivities    = "free_activities"
	MeetFriend        = "meet_friend"
	PlanDay           = "plan_day"
	FindSpecificPlace = "find_specific_place"
	WeatherBased      = "weather_based"
	DistanceBased     = "distance_based"
	GeneralQuery      = "general_query"
)

// Backend endpoints a rule can point at.
const (
	EndpointExplorer     = "explorer"
	EndpointPlacesSearch = "places/search"
	EndpointFreePlaces   = "free-places"
	EndpointMeetFriend   = "meet-friend"
	EndpointPlanDay      = "plan-day"
)

const fallbackConfidence = 0.5

// Result is the outcome of Detect.
type Result struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   Entities          `json:"entities"`
	Action     string            `json:"action"`
	Endpoint   string            `json:"endpoint"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type Rule struct {
	Patterns   []string
	Intent     string
	Action     string
	Endpoint   string
	Parameters map[string]string
	Confidence float64
}

// DefaultRules is the ordered rule table. Order matters for equal confidences.
var DefaultRules = []Rule{
	{
		Patterns: []string{
			"where should i go", "where should i travel", "where to visit", "places to see",
			"what to explore", "recommend places", "suggest locations", "best places", "top attractions",
		},
		Intent: ExplorePlaces, Action: "search_attractions", Endpoint: EndpointExplorer, Confidence: 0.9,
	},
	{
		Patterns: []string{
			"restaurant", "food", "eat", "dining", "cafe", "coffee",
			"lunch", "dinner", "breakfast", "hungry", "best food",
		},
		Intent: FindFood, Action: "search_restaurants", Endpoint: EndpointPlacesSearch,
		Parameters: map[string]string{"query": "restaurant"}, Confidence: 0.85,
	},
	{
		Patterns: []string{
			"free places", "free activities", "no cost", "budget friendly",
			"cheap", "affordable", "free things to do",
		},
		Intent: FreeActivities, Action: "search_free_places", Endpoint: EndpointFreePlaces, Confidence: 0.9,
	},
	{
		Patterns: []string{
			"meet friend", "meeting spot", "halfway point", "between us", "meet up", "central location",
		},
		Intent: MeetFriend, Action: "find_meeting_spot", Endpoint: EndpointMeetFriend, Confidence: 0.85,
	},
	{
		Patterns: []string{
			"plan my day", "day itinerary", "what to do today", "schedule", "daily plan", "activities for today",
		},
		Intent: PlanDay, Action: "create_day_plan", Endpoint: EndpointPlanDay, Confidence: 0.9,
	},
	{
		Patterns: []string{
			"park", "museum", "shopping", "mall", "cinema", "theater", "library", "gym", "hospital", "bank",
		},
		Intent: FindSpecificPlace, Action: "search_by_category", Endpoint: EndpointPlacesSearch, Confidence: 0.8,
	},
	{
		Patterns: []string{
			"outdoor", "weather", "sunny", "rainy", "indoor", "covered", "air conditioned",
		},
		Intent: WeatherBased, Action: "weather_appropriate_places", Endpoint: EndpointExplorer, Confidence: 0.75,
	},
	{
		Patterns: []string{
			"nearby", "close by", "walking distance", "within 1km", "within 5km", "far away", "local",
		},
		Intent: DistanceBased, Action: "search_by_distance", Endpoint: EndpointPlacesSearch, Confidence: 0.8,
	},
}

type compiledRule struct {
	Rule
	matcher ahocorasick.AhoCorasick
}

// Detector is safe for concurrent use once built.
type Detector struct {
	rules []compiledRule
}

// NewDetector compiles DefaultRules.
func NewDetector() *Detector {
	return NewDetectorWithRules(DefaultRules)
}

// NewDetectorWithRules builds one automaton per rule. Patterns are matched as
// plain substrings, so "eat" also fires inside "theater".
func NewDetectorWithRules(rules []Rule) *Detector {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if len(r.Patterns) == 0 {
			continue
		}
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: true,
			MatchOnlyWholeWords:  false,
			MatchKind:            ahocorasick.LeftMostLongestMatch,
			DFA:                  true,
		})
		compiled = append(compiled, compiledRule{Rule: r, matcher: builder.Build(r.Patterns)})
	}
	return &Detector{rules: compiled}
}

// Detect picks the matching rule with the highest confidence. Ties keep the
// rule listed first. Entities are extracted regardless of the winner.
func (d *Detector) Detect(query string) Result {
	q := cases.Lower(language.Und).String(query)

	best := Result{
		Intent:     GeneralQuery,
		Confidence: fallbackConfidence,
		Action:     "general_search",
		Endpoint:   EndpointExplorer,
	}
	bestScore := 0.0
	for _, r := range d.rules {
		if r.Confidence <= bestScore {
			continue
		}
		if len(r.matcher.FindAll(q)) == 0 {
			continue
		}
		bestScore = r.Confidence
		best = Result{
			Intent:     r.Intent,
			Confidence: r.Confidence,
			Action:     r.Action,
			Endpoint:   r.Endpoint,
			Parameters: copyParams(r.Parameters),
		}
	}

	best.Entities = ExtractEntities(q)
	return best
}

func copyParams(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
