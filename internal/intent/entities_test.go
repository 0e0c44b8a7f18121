package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Entities
	}{
		{"empty", "", Entities{}},
		{"kilometers", "within 5 km", Entities{Distance: 5, DistanceUnit: "km"}},
		{"long unit", "10 kilometers away", Entities{Distance: 10, DistanceUnit: "kilometer"}},
		{"meters", "200m", Entities{Distance: 200, DistanceUnit: "m"}},
		{"miles", "2 miles", Entities{Distance: 2, DistanceUnit: "mile"}},
		{"low price wins", "cheap but luxury", Entities{PriceRange: "low"}},
		{"high price", "a luxury hotel", Entities{PriceRange: "high"}},
		{"immediate", "open now", Entities{Time: "immediate"}},
		{"future", "next weekend", Entities{Time: "future"}},
		{"busy", "crowded bars", Entities{Atmosphere: "busy"}},
		{"vegan", "vegan food", Entities{Dietary: "vegetarian"}},
		{"halal before kosher", "kosher or halal", Entities{Dietary: "halal"}},
		{"kosher", "kosher deli", Entities{Dietary: "kosher"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.query))
		})
	}
}
