package intent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dark-devil9/UrNav/internal/types"
)

// Location is where the user is, with a display name from reverse geocoding.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Payload is the part of a backend response the reply templates read.
type Payload struct {
	Results []types.Place      `json:"results,omitempty"`
	Stops   []types.PlannedTask `json:"stops,omitempty"`
	Summary *types.PlanSummary  `json:"summary,omitempty"`
}

type listTemplate struct {
	noLocation  string
	heading     string
	limit       int
	defaultCat  string
	closing     string
	emptyResult string
}

var listTemplates = map[string]listTemplate{
	ExplorePlaces: {
		noLocation:  "I'd love to recommend places for you! First, could you share your current location so I can suggest nearby attractions?",
		heading:     "Based on your location in %s, here are some great places to explore:\n\n",
		limit:       5,
		defaultCat:  "attraction",
		closing:     "\nThese are just a few options! Would you like me to suggest more specific types of places or help you plan a route?",
		emptyResult: "I found some great places near %s! Let me get the latest recommendations for you.",
	},
	FindFood: {
		noLocation:  "I'd love to recommend restaurants! First, could you share your current location?",
		heading:     "Here are some great dining options near %s:\n\n",
		limit:       5,
		defaultCat:  "restaurant",
		closing:     "\nWould you like me to filter by cuisine type, price range, or distance?",
		emptyResult: "I'm finding the best restaurants near %s for you!",
	},
	FreeActivities: {
		noLocation:  "I'd love to suggest free activities! First, could you share your current location?",
		heading:     "Here are some great free activities near %s:\n\n",
		limit:       5,
		defaultCat:  "activity",
		closing:     "\nAll of these are completely free! Would you like me to suggest more budget-friendly options or help you plan a day around these activities?",
		emptyResult: "I'm finding the best free activities near %s for you!",
	},
	MeetFriend: {
		noLocation:  "I'd love to help you find a meeting spot! First, could you share your current location?",
		heading:     "Here are some great meeting spots near %s:\n\n",
		limit:       3,
		defaultCat:  "meeting spot",
		closing:     "\nThese are perfect for meeting up with friends! Would you like me to help you find the exact midpoint between two locations?",
		emptyResult: "I'm finding the best meeting spots near %s for you!",
	},
	FindSpecificPlace: {
		noLocation:  "I'd love to recommend specific places! First, could you share your current location?",
		heading:     "Here are some great options near %s:\n\n",
		limit:       3,
		defaultCat:  "place",
		emptyResult: "I'm finding the best options near %s for you!",
	},
}

const generalHelp = `I'm here to help you explore %s! You can ask me about:
• Places to visit and attractions
• Restaurants and food options  
• Free activities and budget-friendly options
• Meeting spots for friends
• Day planning and itineraries
• Specific types of places (parks, museums, etc.)

What would you like to explore today?`

// GenerateResponse renders the chat reply for a detected intent. A nil
// location always produces the "share your location" prompt for that intent.
func GenerateResponse(res Result, loc *Location, data *Payload) string {
	if t, ok := listTemplates[res.Intent]; ok {
		return t.render(loc, data)
	}
	if res.Intent == PlanDay {
		return renderDayPlan(loc, data)
	}
	if loc == nil {
		return "I'd love to help you explore! First, could you share your current location so I can provide personalized recommendations?"
	}
	return fmt.Sprintf(generalHelp, loc.Name)
}

func (t listTemplate) render(loc *Location, data *Payload) string {
	if loc == nil {
		return t.noLocation
	}
	if data == nil || len(data.Results) == 0 {
		return fmt.Sprintf(t.emptyResult, loc.Name)
	}

	places := data.Results
	if len(places) > t.limit {
		places = places[:t.limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, t.heading, loc.Name)
	for i, p := range places {
		fmt.Fprintf(&b, "%d. **%s** - %s (%s)\n", i+1, p.Name, p.PrimaryCategory(t.defaultCat), distanceLabel(p.Distance))
		if p.Rating != 0 {
			fmt.Fprintf(&b, "   Rating: ⭐ %s/10\n", formatNumber(p.Rating))
		}
	}
	b.WriteString(t.closing)
	return b.String()
}

func renderDayPlan(loc *Location, data *Payload) string {
	if loc == nil {
		return "I'd love to help you plan your day! First, could you share your current location?"
	}
	if data == nil || len(data.Stops) == 0 {
		return fmt.Sprintf("I'm creating a personalized day plan for %s for you!", loc.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's a great day plan for %s:\n\n", loc.Name)
	for i, stop := range data.Stops {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, stop.Task)
	}
	if data.Summary != nil {
		fmt.Fprintf(&b, "\n**Summary:** Total distance: %skm, Estimated time: %d minutes",
			formatNumber(data.Summary.DistanceKM), data.Summary.EtaMin)
	}
	b.WriteString("\nWould you like me to adjust this plan or add more specific activities?")
	return b.String()
}

func distanceLabel(meters int) string {
	if meters == 0 {
		return "nearby"
	}
	return strconv.Itoa(meters) + "m away"
}

// formatNumber prints the shortest form, so 9 stays "9" and 8.5 stays "8.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
