package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	"github.com/dark-devil9/UrNav/internal/api/foursquare/foursquaretest"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/types"
)

type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) GenerateReply(ctx context.Context, text string, rc *generativeAI.ReplyContext) string {
	return m.Called(ctx, text, rc).String(0)
}

func (m *MockAssistant) ParsePlan(ctx context.Context, text string) []string {
	return m.Called(ctx, text).Get(0).([]string)
}

func (m *MockAssistant) SuggestCategories(ctx context.Context, task string) ([]string, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAssistant) Enabled() bool {
	return m.Called().Bool(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func offlineAssistant() generativeAI.Assistant {
	return generativeAI.NewAssistant(nil, config.LLMConfig{}, discardLogger())
}

func newTestService(provider foursquare.Provider, assistant generativeAI.Assistant) *ChatServiceImpl {
	return NewChatService(provider, assistant, NewConversationStore(time.Hour, DefaultHistoryLimit), discardLogger())
}

func cScheme() types.ChatLocation {
	lat, lon := 26.9, 75.8
	return types.ChatLocation{Lat: &lat, Lon: &lon, Name: "C Scheme"}
}

var nearbyCafes = &types.SearchResponse{Results: []types.Place{
	{Name: "Blue Tokai", Categories: []types.Category{{Name: "Coffee Shop"}}, Distance: 120, Rating: 8.6},
	{Name: "Tapri"},
}}

func TestProcessMessage_RemembersName(t *testing.T) {
	svc := newTestService(new(foursquaretest.MockProvider), offlineAssistant())
	ctx := context.Background()

	assert.Equal(t, replyUnknownName, svc.ProcessMessage(ctx, "u1", "Do you know my name?", cScheme()))

	reply := svc.ProcessMessage(ctx, "u1", "My name is priya", cScheme())
	assert.Equal(t, "Nice to meet you, Priya! How can I help you explore today?", reply)

	info := svc.UserInfo(ctx, "u1")
	require.NotNil(t, info.Name)
	assert.Equal(t, "Priya", *info.Name)
	require.NotNil(t, info.Location)
	assert.Equal(t, "C Scheme", info.Location.Name)

	assert.Equal(t, "Your name is Priya! How can I help you today?", svc.ProcessMessage(ctx, "u1", "what is my name", cScheme()))
	assert.Equal(t, replyIdentity, svc.ProcessMessage(ctx, "u1", "who are you", cScheme()))
	assert.Equal(t, replyHereToHelp, svc.ProcessMessage(ctx, "u1", "thanks!", cScheme()))

	svc.ClearConversation(ctx, "u1")
	assert.Nil(t, svc.UserInfo(ctx, "u1").Name)
}

func TestProcessMessage_LocalSearch(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, foursquare.SearchParams{
		LL: &types.LatLon{Lat: 26.9, Lon: 75.8}, Query: "coffee", Radius: localRadius,
	}).Return(nearbyCafes, nil)

	reply := newTestService(provider, offlineAssistant()).ProcessMessage(context.Background(), "u1", "coffee near me", cScheme())

	assert.Equal(t, "Here are some places around C Scheme: Blue Tokai (Coffee Shop, 120m away); Tapri (Place, nearby).", reply)
	provider.AssertExpectations(t)
}

func TestProcessMessage_CityFromHistory(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{}, nil)
	svc := newTestService(provider, offlineAssistant())
	ctx := context.Background()

	reply := svc.ProcessMessage(ctx, "u1", "best cafes in Udaipur", cScheme())
	assert.Equal(t, "I couldn't find specific places in Udaipur. Could you tell me a bit more about what you're looking for?", reply)

	svc.ProcessMessage(ctx, "u1", "any parks?", cScheme())

	require.Len(t, provider.Calls, 2)
	for _, call := range provider.Calls {
		p := call.Arguments.Get(1).(foursquare.SearchParams)
		assert.Equal(t, cityRadius, p.Radius)
		assert.Equal(t, destinations["udaipur"].at, *p.LL)
	}
}

func TestProcessMessage_NewestCityInHistoryWins(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(&types.SearchResponse{}, nil)
	svc := newTestService(provider, offlineAssistant())
	ctx := context.Background()

	svc.ProcessMessage(ctx, "u1", "cafes in Manali", cScheme())
	svc.ProcessMessage(ctx, "u1", "best cafes in Udaipur", cScheme())
	svc.ProcessMessage(ctx, "u1", "any parks?", cScheme())

	require.Len(t, provider.Calls, 3)
	last := provider.Calls[2].Arguments.Get(1).(foursquare.SearchParams)
	assert.Equal(t, cityRadius, last.Radius)
	assert.Equal(t, destinations["udaipur"].at, *last.LL)
}

func TestLastMentionedCity(t *testing.T) {
	history := []types.ChatMessage{
		{Role: types.RoleUser, Content: "cafes in Manali"},
		{Role: types.RoleUser, Content: "what about Udaipur"},
		{Role: types.RoleAssistant, Content: "Delhi is lovely too"},
		{Role: types.RoleUser, Content: "any parks?"},
	}
	assert.Equal(t, "udaipur", lastMentionedCity(history))
	assert.Equal(t, "manali", lastMentionedCity(history[:1]))
	assert.Empty(t, lastMentionedCity(history[2:]))
	assert.Empty(t, lastMentionedCity(nil))
}

func TestProcessMessage_International(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	reply := newTestService(provider, offlineAssistant()).ProcessMessage(context.Background(), "u1", "I want to go to the USA", cScheme())

	assert.True(t, strings.HasPrefix(reply, "USA is a wonderful place to visit!"))
	provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestProcessMessage_SearchFailure(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("down"))

	reply := newTestService(provider, offlineAssistant()).ProcessMessage(context.Background(), "u1", "coffee near me", cScheme())
	assert.Equal(t, replySearchFailed, reply)
}

func TestProcessMessage_UsesModelWithContext(t *testing.T) {
	provider := new(foursquaretest.MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nearbyCafes, nil)

	assistant := new(MockAssistant)
	assistant.On("Enabled").Return(true)
	assistant.On("GenerateReply", mock.Anything,
		mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, `"name": "Blue Tokai"`) &&
				strings.Contains(prompt, "USER'S LOCATION: around C Scheme") &&
				strings.Contains(prompt, "User: coffee near me")
		}),
		mock.MatchedBy(func(rc *generativeAI.ReplyContext) bool {
			return rc.Query == "coffee near me" && rc.Coords != nil && rc.Coords.Lat == 26.9
		}),
	).Return("Try Blue Tokai!")

	svc := newTestService(provider, assistant)
	assert.Equal(t, "Try Blue Tokai!", svc.ProcessMessage(context.Background(), "u1", "coffee near me", cScheme()))
	assistant.AssertExpectations(t)

	history := svc.store.Get("u1").Messages
	require.Len(t, history, 2)
	assert.Equal(t, types.RoleAssistant, history[1].Role)
	assert.Equal(t, "Try Blue Tokai!", history[1].Content)
}

func TestProcessMessage_TrimsHistory(t *testing.T) {
	svc := NewChatService(new(foursquaretest.MockProvider), offlineAssistant(), NewConversationStore(time.Hour, 4), discardLogger())
	ctx := context.Background()
	for _, m := range []string{"thanks", "thank you", "bye"} {
		svc.ProcessMessage(ctx, "u1", m, cScheme())
	}

	history := svc.store.Get("u1").Messages
	require.Len(t, history, 4)
	assert.Equal(t, "thank you", history[0].Content)
	assert.Equal(t, types.RoleAssistant, history[3].Role)
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, noHistory, formatHistory(nil))
	assert.Equal(t, "User: hi\nURNAV: hello", formatHistory([]types.ChatMessage{
		{Role: types.RoleUser, Content: "hi"},
		{Role: types.RoleAssistant, Content: "hello"},
	}))
}
