package modes

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	categorySearchLimit = 20
	keywordSearchLimit  = 15
	keywordSearchRadius = 25000
	taskLookupParallel  = 3

	noPlaceName     = "No suitable place found"
	noPlaceCategory = "Unknown"
)

// radii are tried in order; the first one that yields anything wins.
var searchRadii = []int{5000, 10000, 15000, 20000}

type keywordRule struct {
	pattern string
	queries []string
}

// taskQueries is checked first: a known phrase anywhere in the task.
var taskQueries = []keywordRule{
	{"get coffee", []string{"coffee", "cafe", "coffee shop"}},
	{"buy coffee", []string{"coffee", "cafe", "coffee shop"}},
	{"get breakfast", []string{"breakfast", "cafe", "restaurant", "coffee shop"}},
	{"buy bouquets", []string{"florist", "flower shop", "gift shop"}},
	{"buy flowers", []string{"florist", "flower shop", "gift shop"}},
	{"buy groceries", []string{"grocery", "supermarket", "market", "convenience store"}},
	{"visit post office", []string{"post office", "courier", "shipping"}},
	{"meet friend", []string{"cafe", "restaurant", "park", "coffee shop"}},
	{"go shopping", []string{"shop", "mall", "market", "store", "shopping center"}},
	{"get food", []string{"restaurant", "food", "dining", "eatery"}},
	{"go to gym", []string{"gym", "fitness", "health club", "fitness center"}},
	{"visit park", []string{"park", "garden", "recreation", "playground"}},
	{"go to bank", []string{"bank", "atm", "financial", "credit union"}},
	{"get medicine", []string{"pharmacy", "drugstore", "chemist", "medical store"}},
	{"buy clothes", []string{"clothing store", "fashion", "apparel", "boutique"}},
	{"get haircut", []string{"salon", "barber", "hair salon", "beauty salon"}},
	{"watch movie", []string{"cinema", "movie theater", "multiplex", "theater"}},
	{"get gas", []string{"gas station", "petrol pump", "fuel station"}},
	{"buy books", []string{"bookstore", "library", "book shop"}},
	{"get nails done", []string{"nail salon", "beauty salon", "spa"}},
	{"buy electronics", []string{"electronics store", "mobile shop", "computer store"}},
}

// taskCategories matches when any of its keywords appears in the task;
// the keywords themselves become the queries.
var taskCategories = [][]string{
	{"coffee", "cafe", "breakfast", "coffee shop", "espresso"},
	{"restaurant", "food", "dining", "eatery", "bistro", "kitchen"},
	{"shop", "store", "mall", "market", "shopping center", "plaza"},
	{"grocery", "supermarket", "market", "convenience store", "food store"},
	{"florist", "flower", "garden center", "flower shop", "nursery"},
	{"post office", "courier", "shipping", "mail", "logistics"},
	{"bank", "atm", "financial", "credit union", "savings"},
	{"pharmacy", "drugstore", "chemist", "medical store", "health store"},
	{"park", "garden", "recreation", "playground", "green space"},
	{"gym", "fitness", "health club", "fitness center", "workout"},
	{"cinema", "theater", "museum", "gallery", "amusement"},
	{"bus stop", "train station", "taxi stand", "transport hub"},
	{"salon", "spa", "beauty salon", "nail salon", "barber"},
	{"clothing store", "fashion", "apparel", "boutique", "outlet"},
	{"electronics store", "mobile shop", "computer store", "tech store"},
	{"gas station", "car wash", "auto repair", "dealership"},
}

var stopWords = map[string]struct{}{
	"get": {}, "buy": {}, "go": {}, "to": {}, "the": {}, "a": {}, "an": {}, "and": {}, "or": {},
	"but": {}, "in": {}, "on": {}, "at": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

type fallbackPlace struct {
	name     string
	category string
	distance int
	rating   float64
}

type fallbackGroup struct {
	key    string
	places []fallbackPlace
}

var (
	cafeFallbacks = []fallbackPlace{
		{"Local Coffee Shop", "Cafe", 200, 4.2},
		{"Corner Café", "Cafe", 450, 4.0},
		{"Morning Brew", "Coffee Shop", 800, 4.3},
	}
	fallbackPlaces = []fallbackGroup{
		{"coffee", cafeFallbacks},
		{"cafe", cafeFallbacks},
		{"florist", []fallbackPlace{
			{"Flower Paradise", "Florist", 300, 4.5},
			{"Garden Blooms", "Florist", 600, 4.1},
			{"Fresh Flowers", "Florist", 1200, 4.3},
		}},
		{"grocery", []fallbackPlace{
			{"Local Market", "Grocery Store", 150, 4.0},
			{"Fresh Foods", "Supermarket", 400, 4.2},
			{"City Mart", "Convenience Store", 700, 3.8},
		}},
		{"restaurant", []fallbackPlace{
			{"Local Restaurant", "Restaurant", 250, 4.1},
			{"Food Corner", "Restaurant", 500, 4.3},
			{"Tasty Bites", "Restaurant", 900, 4.0},
		}},
		{"park", []fallbackPlace{
			{"Central Park", "Park", 300, 4.4},
			{"Garden Square", "Garden", 600, 4.1},
			{"Riverside Walk", "Walking Trail", 800, 4.5},
		}},
	}
)

// PlacesManager resolves free-form errands to concrete nearby places.
type PlacesManager struct {
	provider  foursquare.Provider
	assistant generativeAI.Assistant
	logger    *slog.Logger
}

func NewPlacesManager(provider foursquare.Provider, assistant generativeAI.Assistant, logger *slog.Logger) *PlacesManager {
	return &PlacesManager{provider: provider, assistant: assistant, logger: logger}
}

// FindPlacesForTasks returns one entry per task, in task order.
func (m *PlacesManager) FindPlacesForTasks(ctx context.Context, tasks []string, origin types.LatLng) []types.PlannedTask {
	out := make([]types.PlannedTask, len(tasks))
	var g errgroup.Group
	g.SetLimit(taskLookupParallel)
	for i, task := range tasks {
		g.Go(func() error {
			out[i] = m.FindPlaceForTask(ctx, task, origin, i)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// FindPlaceForTask tries model-suggested categories over widening radii,
// then a plain keyword search, then a synthetic place near origin.
func (m *PlacesManager) FindPlaceForTask(ctx context.Context, task string, origin types.LatLng, index int) types.PlannedTask {
	ctx, span := otel.Tracer("PlacesManager").Start(ctx, "FindPlaceForTask", trace.WithAttributes(
		attribute.String("task", task),
		attribute.Int("index", index),
	))
	defer span.End()
	l := m.logger.With(slog.String("method", "FindPlaceForTask"), slog.String("task", task))

	categories := m.searchCategories(ctx, task)
	if len(categories) == 0 {
		l.InfoContext(ctx, "No search terms for task")
		return types.PlannedTask{Task: task, Place: noPlaceName, Category: noPlaceCategory}
	}

	ll := origin.LatLon()
	for _, radius := range searchRadii {
		var candidates []types.Place
		for _, category := range categories {
			resp, err := m.provider.Search(ctx, foursquare.SearchParams{
				LL: &ll, Query: category, Radius: radius, Limit: categorySearchLimit,
			})
			if err != nil {
				l.DebugContext(ctx, "Category search failed", slog.String("category", category), slog.Int("radius", radius), slog.Any("error", err))
				continue
			}
			for _, p := range resp.Results {
				if p.HasCoordinates() {
					candidates = append(candidates, p)
				}
			}
		}
		if len(candidates) > 0 {
			best := bestCandidate(candidates, categories)
			l.DebugContext(ctx, "Found place", slog.String("place", best.Name), slog.Int("radius", radius))
			return plannedFromPlace(task, best)
		}
	}

	for _, keyword := range TaskKeywords(task) {
		resp, err := m.provider.Search(ctx, foursquare.SearchParams{
			LL: &ll, Query: keyword, Radius: keywordSearchRadius, Limit: keywordSearchLimit,
		})
		if err != nil {
			continue
		}
		for _, p := range resp.Results {
			if p.HasCoordinates() {
				return plannedFromPlace(task, p)
			}
		}
	}

	l.InfoContext(ctx, "All place searches failed, using fallback place")
	metrics.Get().FallbackResponsesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "plan-day")))
	return fallbackTask(task, categories[0], origin, index)
}

func (m *PlacesManager) searchCategories(ctx context.Context, task string) []string {
	if m.assistant != nil {
		categories, err := m.assistant.SuggestCategories(ctx, task)
		if err == nil && len(categories) > 0 {
			return categories
		}
	}
	return TaskKeywords(task)
}

// TaskKeywords maps a task to search queries: a known phrase, else a category
// keyword hit, else up to three meaningful words from the task itself.
func TaskKeywords(task string) []string {
	lower := strings.ToLower(task)
	for _, rule := range taskQueries {
		if strings.Contains(lower, rule.pattern) {
			return rule.queries
		}
	}
	for _, keywords := range taskCategories {
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return keywords
			}
		}
	}

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	var out []string
	for _, w := range words {
		if _, stop := stopWords[w]; stop || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		out = append(out, w)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// bestCandidate prefers the closest place and breaks ties on relevance.
// Unknown distance sorts last.
func bestCandidate(places []types.Place, keywords []string) types.Place {
	dist := func(p types.Place) int {
		if p.Distance <= 0 {
			return math.MaxInt
		}
		return p.Distance
	}
	return slices.MinFunc(places, func(a, b types.Place) int {
		if c := cmp.Compare(dist(a), dist(b)); c != 0 {
			return c
		}
		return cmp.Compare(relevance(b, keywords), relevance(a, keywords))
	})
}

func relevance(p types.Place, keywords []string) float64 {
	var score float64
	name := strings.ToLower(p.Name)
	for _, k := range keywords {
		k = strings.ToLower(k)
		if strings.Contains(name, k) {
			score += 2.0
		}
		for _, c := range p.Categories {
			if strings.Contains(strings.ToLower(c.Name), k) {
				score += 1.5
				break
			}
		}
	}
	switch {
	case p.Distance > 0 && p.Distance < 500:
		score += 1.0
	case p.Distance > 0 && p.Distance < 1000:
		score += 0.5
	}
	return score + p.Rating*0.2
}

func plannedFromPlace(task string, p types.Place) types.PlannedTask {
	return types.PlannedTask{
		Task:     task,
		Place:    p.Name,
		Lat:      p.Latitude,
		Lng:      p.Longitude,
		Category: p.PrimaryCategory("Place"),
		Distance: p.Distance,
		Rating:   p.Rating,
		FsqID:    p.FsqPlaceID,
	}
}

func fallbackTask(task, keyword string, origin types.LatLng, index int) types.PlannedTask {
	fp := fallbackPlace{
		name:     fmt.Sprintf("Local %s Place", cases.Title(language.English).String(keyword)),
		category: "General",
		distance: (index + 1) * 200,
		rating:   4.0,
	}
	lower := strings.ToLower(keyword)
	for _, g := range fallbackPlaces {
		if strings.Contains(lower, g.key) {
			fp = g.places[min(index, len(g.places)-1)]
			break
		}
	}
	lat, lng := fallbackCoordinates(origin, index)
	return types.PlannedTask{
		Task:     task,
		Place:    fp.name,
		Lat:      lat,
		Lng:      lng,
		Category: fp.category,
		Distance: fp.distance,
		Rating:   fp.rating,
		FsqID:    fmt.Sprintf("fallback_%s_%d", keyword, index),
	}
}

// fallbackCoordinates spreads synthetic places on a spiral around origin.
func fallbackCoordinates(origin types.LatLng, index int) (float64, float64) {
	var angle, radius float64
	switch index {
	case 0:
		angle, radius = 0.3, 0.0005
	case 1:
		angle, radius = 1.2, 0.001
	case 2:
		angle, radius = 2.1, 0.0015
	default:
		angle = float64(index) * 0.8
		radius = float64(index+1) * 0.0008
	}
	return origin.Lat + radius*math.Cos(angle), origin.Lng + radius*math.Sin(angle)
}
