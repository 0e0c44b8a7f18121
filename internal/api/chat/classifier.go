package chat

import (
	"regexp"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

type QueryKind string

const (
	KindTravel   QueryKind = "travel"
	KindPersonal QueryKind = "personal"
	KindGeneral  QueryKind = "general"
)

const (
	travelPatternWeight   = 0.4
	personalPatternWeight = 0.3
	cityBonus             = 0.8
	activityBonus         = 0.4
	travelWordBonus       = 0.6
	travelPhraseBonus     = 0.7

	travelThreshold   = 0.2
	personalThreshold = 0.3
)

const cityAlternation = `manali|jaipur|delhi|mumbai|bangalore|chennai|kolkata|hyderabad|pune|ahmedabad|udaipur|jodhpur|jaisalmer|mount\s+abu|pushkar|germany|france|italy|spain|uk|usa|canada|australia|japan|china|thailand|singapore|dubai`

var (
	travelPatterns = compileAll(
		`\b(places?|attractions?|restaurants?|hotels?|cafes?|parks?|museums?|shops?)\b`,
		`\b(visit|go|travel|explore|roam|wander|see|find)\b`,
		`\b(near|around|in|at|to)\s+\w+`,
		`\b(best|top|popular|famous|recommended)\s+\w+`,
		`\b(where|what)\s+(places?|to\s+do|to\s+visit)`,
		`\b(`+cityAlternation+`)\b`,
		`\b(coffee|food|eat|drink|shopping|entertainment)\b`,
		`\b(travel|trip|vacation|holiday|journey)\b`,
		`\b(want\s+to\s+go|planning\s+to\s+visit|thinking\s+of\s+going)\b`,
	)
	personalPatterns = compileAll(
		`\b(hi|hello|hey|good\s+(morning|afternoon|evening))\b`,
		`\b(how\s+are\s+you|how\s+you\s+doing)\b`,
		`\b(what\s+is\s+your\s+name|who\s+are\s+you)\b`,
		`\b(my\s+name\s+is|i\s+am\s+called|call\s+me)\b`,
		`\b(thank\s+you|thanks|bye|goodbye)\b`,
		`\b(weather|time|date|day)\b`,
		`\b(joke|funny|entertain|tell\s+me)\b`,
	)

	cityPattern     = regexp.MustCompile(`\b(` + cityAlternation + `)\b`)
	activityPattern = regexp.MustCompile(`\b(coffee|cafe|restaurant|food|park|museum|shopping|hotel|attraction|place)\b`)
	namePattern     = regexp.MustCompile(`\b(?:my\s+name\s+is|i\s+am\s+called|call\s+me)\s+(\w+)`)
	spaces          = regexp.MustCompile(`\s+`)
)

// Plain substring sets; "go" also fires inside "good".
var (
	travelWords   = substringMatcher("travel", "trip", "vacation", "holiday", "journey")
	travelPhrases = substringMatcher("want to go", "planning to visit", "thinking of going")
	placeWords    = substringMatcher("place", "visit", "go", "see", "find")
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func substringMatcher(words ...string) ahocorasick.AhoCorasick {
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
		DFA:                  true,
	})
	return builder.Build(words)
}

func containsAny(m ahocorasick.AhoCorasick, s string) bool {
	return len(m.FindAll(s)) > 0
}

// Classification is the outcome of Classify. Score belongs to the winning
// kind; it is the personal score for general messages.
type Classification struct {
	Kind     QueryKind
	Score    float64
	City     string
	Activity string
}

// Classify scores a message against the travel and small-talk pattern sets.
func Classify(message string) Classification {
	q := strings.ToLower(message)

	var travel, personal float64
	for _, re := range travelPatterns {
		travel += float64(len(re.FindAllStringIndex(q, -1))) * travelPatternWeight
	}
	for _, re := range personalPatterns {
		personal += float64(len(re.FindAllStringIndex(q, -1))) * personalPatternWeight
	}

	var c Classification
	if city := findCity(q); city != "" {
		c.City = city
		travel += cityBonus
	}
	if m := activityPattern.FindStringSubmatch(q); m != nil {
		c.Activity = m[1]
		travel += activityBonus
	}
	if containsAny(travelWords, q) {
		travel += travelWordBonus
	}
	if containsAny(travelPhrases, q) {
		travel += travelPhraseBonus
	}

	switch {
	case travel > personal && travel > travelThreshold:
		c.Kind, c.Score = KindTravel, travel
	case personal > personalThreshold:
		c.Kind, c.Score = KindPersonal, personal
	default:
		c.Kind, c.Score = KindGeneral, personal
	}
	return c
}

// findCity returns the first known city or country in an already lowered text.
func findCity(lowered string) string {
	m := cityPattern.FindStringSubmatch(lowered)
	if m == nil {
		return ""
	}
	return spaces.ReplaceAllString(m[1], " ")
}

// CapturedName returns the name from "my name is X" style messages.
func CapturedName(message string) (string, bool) {
	m := namePattern.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return "", false
	}
	return titleCase(m[1]), true
}

// looksLikeTravel decides general messages that mention going somewhere.
func looksLikeTravel(message string) bool {
	return containsAny(placeWords, strings.ToLower(message))
}
