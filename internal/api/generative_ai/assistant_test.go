package generativeAI

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/types"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateContent(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	args := m.Called(ctx, prompt, cfg)
	return args.String(0), args.Error(1)
}

func newAssistant(gen Generator) *AssistantImpl {
	return NewAssistant(gen, config.LLMConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHeuristicPlan(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"grab coffee and then buy flowers", []string{"Get coffee", "Buy bouquets"}},
		{"post a parcel then meet my friend; pick up groceries.", []string{"Visit post office", "Meet friend", "Buy groceries"}},
		{"return library books", []string{"Return library books"}},
		{"   ", []string{"Get coffee", "Buy bouquets"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicPlan(tt.in))
		})
	}
}

func TestHeuristicReply(t *testing.T) {
	assert.Equal(t, replyNearby, HeuristicReply("anything good NEAR ME?"))
	assert.Equal(t, replyGeneric, HeuristicReply("tell me about forts"))
}

func TestAssistant_Offline(t *testing.T) {
	a := newAssistant(nil)
	ctx := context.Background()

	assert.False(t, a.Enabled())
	assert.Equal(t, []string{"Get coffee"}, a.ParsePlan(ctx, "coffee"))
	_, err := a.SuggestCategories(ctx, "Get coffee")
	assert.ErrorIs(t, err, ErrNotConfigured)

	reply := a.GenerateReply(ctx, "long prompt mentioning nearby", &ReplyContext{Query: "museums in Jaipur"})
	assert.Equal(t, replyGeneric, reply)
}

func TestAssistant_GenerateReply(t *testing.T) {
	ctx := context.Background()

	t.Run("adds context", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateContent", mock.Anything, "Context: lang=hi; coords=(26.9,75.8)\nQuestion: cafes?", mock.Anything).
			Return("  Try Tapri.  ", nil).Once()

		got := newAssistant(gen).GenerateReply(ctx, "cafes?", &ReplyContext{Lang: "hi", Coords: &types.LatLon{Lat: 26.9, Lon: 75.8}})
		assert.Equal(t, "Try Tapri.", got)
		gen.AssertExpectations(t)
	})

	t.Run("error falls back", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

		assert.Equal(t, replyNearby, newAssistant(gen).GenerateReply(ctx, "what is close by", nil))
	})

	t.Run("blank falls back", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil).Once()

		assert.Equal(t, replyGeneric, newAssistant(gen).GenerateReply(ctx, "hello", nil))
	})
}

func TestAssistant_ParsePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("model output", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
			Return("```json\n{\"tasks\": [\"Get coffee\", \" \", \"Go to bank\"]}\n```", nil).Once()

		assert.Equal(t, []string{"Get coffee", "Go to bank"}, newAssistant(gen).ParsePlan(ctx, "coffee, then the bank"))
	})

	t.Run("garbage uses heuristics", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("sure!", nil).Once()

		assert.Equal(t, []string{"Get coffee", "Buy bouquets"}, newAssistant(gen).ParsePlan(ctx, "coffee and flowers"))
	})
}

func TestAssistant_SuggestCategories(t *testing.T) {
	ctx := context.Background()

	gen := new(MockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).
		Return(`Here you go: ["florist", "flower shop", "gift shop", "nursery"]`, nil).Once()
	got, err := newAssistant(gen).SuggestCategories(ctx, "Buy flowers")
	require.NoError(t, err)
	assert.Equal(t, []string{"florist", "flower shop", "gift shop"}, got)

	gen = new(MockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(`[]`, nil).Once()
	_, err = newAssistant(gen).SuggestCategories(ctx, "Buy flowers")
	assert.Error(t, err)
}
