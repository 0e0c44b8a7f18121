package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name       string
		query      string
		intent     string
		endpoint   string
		confidence float64
	}{
		{"explore", "Where should I go this weekend?", ExplorePlaces, EndpointExplorer, 0.9},
		{"food", "I'm hungry, any good dinner spots", FindFood, EndpointPlacesSearch, 0.85},
		{"free beats food on confidence", "cheap food around here", FreeActivities, EndpointFreePlaces, 0.9},
		{"meet", "find a meeting spot between us", MeetFriend, EndpointMeetFriend, 0.85},
		{"plan", "Plan my day please", PlanDay, EndpointPlanDay, 0.9},
		{"specific", "is there a museum", FindSpecificPlace, EndpointPlacesSearch, 0.8},
		{"weather", "somewhere indoor", WeatherBased, EndpointExplorer, 0.75},
		{"distance", "anything within walking distance", DistanceBased, EndpointPlacesSearch, 0.8},
		{"fallback", "hello there", GeneralQuery, EndpointExplorer, 0.5},
		{"empty", "", GeneralQuery, EndpointExplorer, 0.5},
		{"substring inside another word", "any theater shows", FindFood, EndpointPlacesSearch, 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Detect(tt.query)
			assert.Equal(t, tt.intent, res.Intent)
			assert.Equal(t, tt.endpoint, res.Endpoint)
			assert.Equal(t, tt.confidence, res.Confidence)
		})
	}
}

func TestDetector_TiesKeepEarlierRule(t *testing.T) {
	d := NewDetector()

	// explore_places and plan_day both score 0.9
	res := d.Detect("best places and plan my day")
	assert.Equal(t, ExplorePlaces, res.Intent)

	// specific and distance both score 0.8
	res = d.Detect("a park nearby")
	assert.Equal(t, FindSpecificPlace, res.Intent)
}

func TestDetector_FoodCarriesQueryParameter(t *testing.T) {
	res := NewDetector().Detect("where can I eat")
	assert.Equal(t, FindFood, res.Intent)
	assert.Equal(t, "search_restaurants", res.Action)
	assert.Equal(t, map[string]string{"query": "restaurant"}, res.Parameters)

	// mutating the result must not leak into the rule table
	res.Parameters["query"] = "pizza"
	assert.Equal(t, "restaurant", NewDetector().Detect("eat").Parameters["query"])
}

func TestDetector_FallbackStillExtractsEntities(t *testing.T) {
	res := NewDetector().Detect("Something QUIET for tomorrow within 3 km")
	assert.Equal(t, GeneralQuery, res.Intent)
	assert.Equal(t, "general_search", res.Action)
	assert.Equal(t, 3, res.Entities.Distance)
	assert.Equal(t, "km", res.Entities.DistanceUnit)
	assert.Equal(t, "quiet", res.Entities.Atmosphere)
	assert.Equal(t, "future", res.Entities.Time)
}

func TestNewDetectorWithRules(t *testing.T) {
	d := NewDetectorWithRules([]Rule{
		{Patterns: nil, Intent: "never", Confidence: 1},
		{Patterns: []string{"zoo"}, Intent: "zoo", Endpoint: EndpointPlacesSearch, Confidence: 0.6},
	})
	assert.Equal(t, "zoo", d.Detect("take me to the ZOO").Intent)
	assert.Equal(t, GeneralQuery, d.Detect("anything").Intent)
}

func BenchmarkDetect(b *testing.B) {
	d := NewDetector()
	queries := []string{
		"Where should I go this evening?",
		"I'm hungry, any good cafe nearby?",
		"meet my friend in Malviya Nagar",
		"tell me something interesting",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		d.Detect(queries[i%len(queries)])
	}
}
