package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/internal/api"
	"github.com/dark-devil9/UrNav/internal/api/foursquare"
	generativeAI "github.com/dark-devil9/UrNav/internal/api/generative_ai"
	"github.com/dark-devil9/UrNav/internal/types"
)

const (
	localRadius      = 5000
	cityRadius       = 10000
	placesInSummary  = 5
	noHistory        = "No previous conversation."
	assistantSpeaker = "URNAV"
)

const (
	replySearchFailed = "I'm having trouble finding places right now. Please try again in a moment!"
	replyHereToHelp   = "I'm here to help! What would you like to explore today?"
	replyIdentity     = "I'm URNAV, your travel companion. I can help you find places to visit, eat and explore around you."
	replyUnknownName  = "I don't know your name yet. Tell me by saying \"my name is ...\" and I'll remember it."
)

var _ ChatService = (*ChatServiceImpl)(nil)

type ChatService interface {
	// ProcessMessage answers one message and records both sides of the exchange.
	ProcessMessage(ctx context.Context, userID, message string, loc types.ChatLocation) string
	UserInfo(ctx context.Context, userID string) types.ChatUserInfo
	ClearConversation(ctx context.Context, userID string)
}

type ChatServiceImpl struct {
	logger    *slog.Logger
	provider  foursquare.Provider
	assistant generativeAI.Assistant
	store     *ConversationStore
	now       func() time.Time
}

func NewChatService(provider foursquare.Provider, assistant generativeAI.Assistant, store *ConversationStore, logger *slog.Logger) *ChatServiceImpl {
	return &ChatServiceImpl{
		logger:    logger,
		provider:  provider,
		assistant: assistant,
		store:     store,
		now:       time.Now,
	}
}

func (s *ChatServiceImpl) ProcessMessage(ctx context.Context, userID, message string, loc types.ChatLocation) string {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "ProcessMessage", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	conv := s.store.Update(userID, func(c *conversation) {
		c.Info.Location = &loc
		c.Messages = append(c.Messages, types.ChatMessage{Role: types.RoleUser, Content: message, Timestamp: s.now()})
	})

	class := Classify(message)
	kind := class.Kind
	if kind == KindGeneral && looksLikeTravel(message) {
		kind = KindTravel
	}
	span.SetAttributes(attribute.String("chat.kind", string(kind)), attribute.Float64("chat.score", class.Score))
	metrics.Get().ChatMessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))

	var (
		reply    string
		username string
	)
	if kind == KindTravel {
		reply = s.travelReply(ctx, message, loc, class, conv)
	} else {
		reply, username = s.personalReply(ctx, message, conv)
	}

	s.store.Update(userID, func(c *conversation) {
		if username != "" {
			c.Info.Name = &username
		}
		c.Messages = append(c.Messages, types.ChatMessage{Role: types.RoleAssistant, Content: reply, Timestamp: s.now()})
	})
	return reply
}

func (s *ChatServiceImpl) UserInfo(_ context.Context, userID string) types.ChatUserInfo {
	return s.store.Get(userID).Info
}

func (s *ChatServiceImpl) ClearConversation(ctx context.Context, userID string) {
	s.store.Delete(userID)
	s.logger.DebugContext(ctx, "Conversation cleared", slog.String("user_id", userID))
}

// generate asks the model when one is configured and returns offline otherwise.
func (s *ChatServiceImpl) generate(ctx context.Context, prompt, offline, query string, loc *types.ChatLocation) string {
	if s.assistant == nil || !s.assistant.Enabled() {
		return offline
	}
	rc := &generativeAI.ReplyContext{Query: query}
	if loc != nil && loc.Lat != nil && loc.Lon != nil {
		rc.Coords = &types.LatLon{Lat: *loc.Lat, Lon: *loc.Lon}
	}
	return s.assistant.GenerateReply(ctx, prompt, rc)
}

func formatHistory(messages []types.ChatMessage) string {
	if len(messages) == 0 {
		return noHistory
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "User"
		if m.Role == types.RoleAssistant {
			speaker = assistantSpeaker
		}
		lines = append(lines, speaker+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// lastMentionedCity scans the user's side of the history, newest first.
func lastMentionedCity(messages []types.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != types.RoleUser {
			continue
		}
		if city := findCity(strings.ToLower(messages[i].Content)); city != "" {
			return city
		}
	}
	return ""
}

type placeSummary struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Distance string `json:"distance"`
	Rating   string `json:"rating"`
}

func summarizePlaces(places []types.Place) []placeSummary {
	out := make([]placeSummary, 0, min(len(places), placesInSummary))
	for _, p := range places[:min(len(places), placesInSummary)] {
		ps := placeSummary{Name: p.Name, Category: p.PrimaryCategory("Place"), Distance: "nearby"}
		if ps.Name == "" {
			ps.Name = "Unknown"
		}
		if p.Distance > 0 {
			ps.Distance = fmt.Sprintf("%dm away", p.Distance)
		}
		if p.Rating > 0 {
			ps.Rating = fmt.Sprintf("⭐ %v/10", p.Rating)
		}
		out = append(out, ps)
	}
	return out
}

func (s *ChatServiceImpl) travelReply(ctx context.Context, message string, loc types.ChatLocation, class Classification, conv conversation) string {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "travelReply")
	defer span.End()

	history := formatHistory(conv.Messages)
	userName := "Not provided"
	if conv.Info.Name != nil {
		userName = *conv.Info.Name
	}

	city, destinationType := class.City, "current_query"
	if city == "" {
		city, destinationType = lastMentionedCity(conv.Messages), "conversation_history"
	}
	if city == "" {
		destinationType = "local"
	}

	at := types.LatLon{Lat: api.DefaultLat, Lon: api.DefaultLon}
	if loc.Lat != nil && loc.Lon != nil {
		at = types.LatLon{Lat: *loc.Lat, Lon: *loc.Lon}
	}
	radius := localRadius
	if d, ok := destinations[city]; ok {
		at, radius = d.at, cityRadius
		destinationType = "domestic"
		if d.international {
			destinationType = "international"
		}
	}
	span.SetAttributes(attribute.String("chat.city", city), attribute.String("chat.destination_type", destinationType))

	if destinationType == "international" {
		name := displayName(city)
		prompt := fmt.Sprintf(internationalPrompt, history, message, userName, locationName(loc), name)
		offline := fmt.Sprintf("%s is a wonderful place to visit! Look into its popular attractions, the best season to travel and local customs before you go.", name)
		return s.generate(ctx, prompt, offline, message, &loc)
	}

	resp, err := s.provider.Search(ctx, foursquare.SearchParams{LL: &at, Query: class.Activity, Radius: radius})
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Chat place search failed", slog.Any("error", err))
		return s.generate(ctx, fmt.Sprintf(searchFailedPrompt, message, history), replySearchFailed, message, &loc)
	}

	summary := summarizePlaces(resp.Results)
	area := "around " + locationName(loc)
	if city != "" {
		area = "in " + displayName(city)
	}
	found := "No specific places found"
	if len(summary) > 0 {
		b, _ := json.MarshalIndent(summary, "", "  ")
		found = string(b)
	}
	previous := "None"
	if city != "" {
		previous = city
	}
	prompt := fmt.Sprintf(travelPrompt, history, message, userName, area, destinationType, previous, found)
	return s.generate(ctx, prompt, offlinePlaces(area, summary), message, &loc)
}

func offlinePlaces(area string, summary []placeSummary) string {
	if len(summary) == 0 {
		return fmt.Sprintf("I couldn't find specific places %s. Could you tell me a bit more about what you're looking for?", area)
	}
	parts := make([]string, len(summary))
	for i, p := range summary {
		parts[i] = fmt.Sprintf("%s (%s, %s)", p.Name, p.Category, p.Distance)
	}
	return fmt.Sprintf("Here are some places %s: %s.", area, strings.Join(parts, "; "))
}

func locationName(loc types.ChatLocation) string {
	if loc.Name != "" {
		return loc.Name
	}
	return "your location"
}

// personalReply handles small talk. A captured name is returned so the caller
// can store it with the reply.
func (s *ChatServiceImpl) personalReply(ctx context.Context, message string, conv conversation) (string, string) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "personalReply")
	defer span.End()

	history := formatHistory(conv.Messages)
	lowered := strings.ToLower(message)

	if name, ok := CapturedName(message); ok {
		offline := fmt.Sprintf("Nice to meet you, %s! How can I help you explore today?", name)
		return s.generate(ctx, fmt.Sprintf(namePrompt, history, name), offline, message, nil), name
	}

	if strings.Contains(lowered, "what is my name") || strings.Contains(lowered, "do you know my name") {
		if conv.Info.Name != nil {
			name := *conv.Info.Name
			offline := fmt.Sprintf("Your name is %s! How can I help you today?", name)
			return s.generate(ctx, fmt.Sprintf(knownNamePrompt, message, history, name), offline, message, nil), ""
		}
		return s.generate(ctx, fmt.Sprintf(unknownNamePrompt, message, history), replyUnknownName, message, nil), ""
	}

	if strings.Contains(lowered, "what is your name") || strings.Contains(lowered, "who are you") {
		return s.generate(ctx, fmt.Sprintf(identityPrompt, message, history), replyIdentity, message, nil), ""
	}

	userName, userLocation := "Not provided", "Not provided"
	if conv.Info.Name != nil {
		userName = *conv.Info.Name
	}
	if conv.Info.Location != nil {
		userLocation = locationName(*conv.Info.Location)
	}
	prompt := fmt.Sprintf(smallTalkPrompt, history, message, userName, userLocation)
	return s.generate(ctx, prompt, replyHereToHelp, message, conv.Info.Location), ""
}
