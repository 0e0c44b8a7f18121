package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UpstreamRequestsTotal   metric.Int64Counter
	UpstreamRequestDuration metric.Float64Histogram
	UpstreamErrorsTotal     metric.Int64Counter
	UpstreamCacheHitsTotal  metric.Int64Counter
	FallbackResponsesTotal  metric.Int64Counter
	PlanDayRequestsTotal    metric.Int64Counter
	ChatMessagesTotal       metric.Int64Counter
	LLMRequestsTotal        metric.Int64Counter
	AuthSignupsTotal        metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
	DbQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("urnav")
		m := &AppMetrics{}

		m.UpstreamRequestsTotal = mustCounter(meter, "places_upstream_requests_total", "Requests sent to the places provider", "{request}")
		m.UpstreamRequestDuration = mustHistogram(meter, "places_upstream_request_duration_seconds", "Latency of places provider requests")
		m.UpstreamErrorsTotal = mustCounter(meter, "places_upstream_errors_total", "Failed places provider requests", "{error}")
		m.UpstreamCacheHitsTotal = mustCounter(meter, "places_upstream_cache_hits_total", "Place searches served from cache", "{hit}")
		m.FallbackResponsesTotal = mustCounter(meter, "fallback_responses_total", "Responses built from demo data after an upstream failure", "{response}")
		m.PlanDayRequestsTotal = mustCounter(meter, "plan_day_requests_total", "Day plans created", "{request}")
		m.ChatMessagesTotal = mustCounter(meter, "chat_messages_total", "Chat messages processed", "{message}")
		m.LLMRequestsTotal = mustCounter(meter, "llm_requests_total", "Generation requests sent to the LLM", "{request}")
		m.AuthSignupsTotal = mustCounter(meter, "auth_signups_total", "Accounts created", "{user}")
		m.DbQueryDurationSeconds = mustHistogram(meter, "db_query_duration_seconds", "Duration of database queries in seconds")
		m.DbQueryErrorsTotal = mustCounter(meter, "db_query_errors_total", "Total number of database query errors", "{error}")

		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func mustCounter(meter metric.Meter, name, desc, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return c
}

func mustHistogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		log.Fatalf("Metrics: Failed to create %s: %v", name, err)
	}
	return h
}
