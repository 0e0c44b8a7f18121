package generativeAI

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/dark-devil9/UrNav/config"
	"github.com/dark-devil9/UrNav/internal/types"
)

const systemPrompt = "You are URNAV, a helpful navigation assistant. Use provided context only when relevant. Be concise."

const (
	replyNearby  = "Looking for nearby options... I’ll list a few suggestions for you."
	replyGeneric = "Got it. Let me think about that and gather relevant options."
)

// ReplyContext carries soft hints for GenerateReply. Query, when set, is the
// user's own words and drives the offline reply instead of the full prompt.
type ReplyContext struct {
	Query   string
	Lang    string
	Pincode string
	Coords  *types.LatLon
}

var _ Assistant = (*AssistantImpl)(nil)

type Assistant interface {
	// GenerateReply always returns text; failures degrade to a canned reply.
	GenerateReply(ctx context.Context, text string, rc *ReplyContext) string
	// ParsePlan splits free text into task names, never returning an empty list.
	ParsePlan(ctx context.Context, text string) []string
	// SuggestCategories asks the model for up to three search categories.
	SuggestCategories(ctx context.Context, task string) ([]string, error)
	Enabled() bool
}

type AssistantImpl struct {
	gen         Generator
	temperature float32
	logger      *slog.Logger
}

// NewAssistant wraps gen; a nil gen runs every call on heuristics.
func NewAssistant(gen Generator, cfg config.LLMConfig, logger *slog.Logger) *AssistantImpl {
	temp := cfg.Temperature
	if temp <= 0 {
		temp = DefaultTemperature
	}
	return &AssistantImpl{gen: gen, temperature: temp, logger: logger}
}

func (a *AssistantImpl) Enabled() bool { return a.gen != nil }

func (a *AssistantImpl) GenerateReply(ctx context.Context, text string, rc *ReplyContext) string {
	ctx, span := otel.Tracer("Assistant").Start(ctx, "GenerateReply", trace.WithAttributes(
		attribute.Bool("llm.enabled", a.Enabled()),
	))
	defer span.End()

	if a.Enabled() {
		cfg := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr(a.temperature),
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
		out, err := a.gen.GenerateContent(ctx, withContext(text, rc), cfg)
		if err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
		if err != nil {
			span.RecordError(err)
			a.logger.WarnContext(ctx, "Falling back to heuristic reply", slog.Any("error", err))
		}
	}

	subject := text
	if rc != nil && rc.Query != "" {
		subject = rc.Query
	}
	return HeuristicReply(subject)
}

func withContext(text string, rc *ReplyContext) string {
	if rc == nil {
		return text
	}
	var meta []string
	if rc.Lang != "" {
		meta = append(meta, "lang="+rc.Lang)
	}
	if rc.Pincode != "" {
		meta = append(meta, "pincode="+rc.Pincode)
	}
	if rc.Coords != nil {
		meta = append(meta, fmt.Sprintf("coords=(%v,%v)", rc.Coords.Lat, rc.Coords.Lon))
	}
	if len(meta) == 0 {
		return text
	}
	return fmt.Sprintf("Context: %s\nQuestion: %s", strings.Join(meta, "; "), text)
}

// HeuristicReply is the offline answer.
func HeuristicReply(text string) string {
	t := strings.ToLower(text)
	for _, k := range []string{"nearby", "around me", "close by", "near me"} {
		if strings.Contains(t, k) {
			return replyNearby
		}
	}
	return replyGeneric
}

const planPrompt = `Split the following request into a short list of errands, one per stop.
Use short imperative names such as "Get coffee", "Buy bouquets", "Visit post office".
Return ONLY JSON of the form {"tasks": ["..."]}.

Request: %q`

func (a *AssistantImpl) ParsePlan(ctx context.Context, text string) []string {
	ctx, span := otel.Tracer("Assistant").Start(ctx, "ParsePlan")
	defer span.End()

	if a.Enabled() {
		cfg := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(0.1)),
			ResponseMIMEType: "application/json",
		}
		out, err := a.gen.GenerateContent(ctx, fmt.Sprintf(planPrompt, text), cfg)
		if err == nil {
			var parsed struct {
				Tasks []string `json:"tasks"`
			}
			if jerr := json.Unmarshal([]byte(extractJSON(out, '{', '}')), &parsed); jerr == nil {
				if tasks := compact(parsed.Tasks); len(tasks) > 0 {
					span.SetAttributes(attribute.Int("plan.tasks", len(tasks)))
					return tasks
				}
			}
		}
		a.logger.DebugContext(ctx, "Plan parsing fell back to heuristics", slog.Any("error", err))
	}
	return HeuristicPlan(text)
}

// HeuristicPlan splits on "and then", "then", "and" and ";" and maps each
// chunk onto a canonical task.
func HeuristicPlan(text string) []string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	lowered = strings.ReplaceAll(lowered, " and then ", ";")
	lowered = strings.ReplaceAll(lowered, " then ", ";")
	lowered = strings.ReplaceAll(lowered, " and ", ";")

	var tasks []string
	for _, chunk := range strings.Split(lowered, ";") {
		chunk = strings.Trim(chunk, " .")
		if chunk == "" {
			continue
		}
		tasks = append(tasks, canonicalTask(chunk))
	}
	if len(tasks) == 0 {
		return []string{"Get coffee", "Buy bouquets"}
	}
	return tasks
}

var canonicalTasks = []struct {
	keywords []string
	task     string
}{
	{[]string{"bouquet", "flowers", "flower"}, "Buy bouquets"},
	{[]string{"coffee", "cafe", "breakfast"}, "Get coffee"},
	{[]string{"grocer", "store", "shopping"}, "Buy groceries"},
	{[]string{"post", "courier", "parcel"}, "Visit post office"},
	{[]string{"meet", "friend"}, "Meet friend"},
}

func canonicalTask(chunk string) string {
	for _, ct := range canonicalTasks {
		for _, k := range ct.keywords {
			if strings.Contains(chunk, k) {
				return ct.task
			}
		}
	}
	r := []rune(chunk)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

const categoriesPrompt = `Given this task: %q

Determine the best 2-3 Foursquare API search categories to find places for this task.
Return ONLY a JSON array of category strings, nothing else.

Examples:
- Task: "Get coffee" → ["coffee shop", "cafe", "coffee"]
- Task: "Buy flowers" → ["florist", "flower shop", "gift shop"]
- Task: "Get groceries" → ["grocery store", "supermarket", "convenience store"]
- Task: "Go to gym" → ["gym", "fitness center", "health club"]
- Task: "Watch movie" → ["movie theater", "cinema", "entertainment"]
- Task: "Get haircut" → ["hair salon", "barber", "beauty salon"]
- Task: "Get medicine" → ["pharmacy", "drugstore", "medical store"]
- Task: "Go to bank" → ["bank", "atm", "financial"]

Return the JSON array:`

const maxCategories = 3

func (a *AssistantImpl) SuggestCategories(ctx context.Context, task string) ([]string, error) {
	ctx, span := otel.Tracer("Assistant").Start(ctx, "SuggestCategories", trace.WithAttributes(
		attribute.String("task", task),
	))
	defer span.End()

	if !a.Enabled() {
		return nil, ErrNotConfigured
	}
	out, err := a.gen.GenerateContent(ctx, fmt.Sprintf(categoriesPrompt, task), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal([]byte(extractJSON(out, '[', ']')), &categories); err != nil {
		return nil, fmt.Errorf("unparseable categories %q: %w", out, err)
	}
	categories = compact(categories)
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories for %q", task)
	}
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}
	return categories, nil
}

// extractJSON trims model chatter around the outermost open/close pair.
func extractJSON(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
