package assistant

import (
	"context"
	"fmt"
)

// Source identifies which layer of the cascade produced an answer.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Transition reports a connectivity flip detected while serving a request.
type Transition string

const (
	TransitionNone     Transition = ""
	TransitionLost     Transition = "lost"
	TransitionRestored Transition = "restored"
)

// QueryContext carries only coarse activity counters. Task titles or notes
// never reach the pipeline, the cache or the model prompt.
type QueryContext struct {
	MandatoryPending int `json:"mandatoryPending"`
	OptionalPending  int `json:"optionalPending"`
	CompletedToday   int `json:"completedToday"`
	SessionsToday    int `json:"sessionsToday"`
}

// Signature returns a stable serialization of the counters, used as the
// context half of the cache fingerprint.
func (c QueryContext) Signature() string {
	return fmt.Sprintf("m%d-o%d-c%d-s%d", c.MandatoryPending, c.OptionalPending, c.CompletedToday, c.SessionsToday)
}

// TotalPending is the number of tasks still open.
func (c QueryContext) TotalPending() int {
	return c.MandatoryPending + c.OptionalPending
}

type QueryRequest struct {
	Message string       `json:"message"`
	Context QueryContext `json:"context"`
}

// QueryResult is produced fresh per request and immutable once returned.
type QueryResult struct {
	Text             string
	Source           Source
	Cached           bool
	ProcessingTimeMs int64
	Transition       Transition
}

// Prompt is the model-ready rendering of a query. When Direct is set the
// builder already decided the final answer and the model must not be called.
type Prompt struct {
	System string
	User   string
	Direct string
}

// Completion is a successful model response after post-processing.
type Completion struct {
	Text           string
	TokensUsed     int64
	ResponseTimeMs int64
}

// Stats is the operational snapshot served by GET /query/stats.
type Stats struct {
	CacheSize      int     `json:"cache_size"`
	CacheHits      int64   `json:"cache_hits"`
	CacheMisses    int64   `json:"cache_misses"`
	CacheEvictions int64   `json:"cache_evictions"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	Allowed        int64   `json:"requests_allowed"`
	Denied         int64   `json:"requests_denied"`
	Online         bool    `json:"online"`
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Uptime         string  `json:"uptime"`
}

// IPromptBuilder renders a (message, context) pair into a model prompt.
// Consumed opaquely; the pipeline never inspects how prompts are built.
type IPromptBuilder interface {
	Build(message string, ctx QueryContext) Prompt
}

// IModelGateway issues the remote completion. Failures are classified into
// the sentinel errors in errors.go.
type IModelGateway interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}

// IFallbackEngine is total: non-empty text for any input, never an error,
// never blocking I/O.
type IFallbackEngine interface {
	Respond(message string, ctx QueryContext) string
}

type IAssistantUsecase interface {
	Query(ctx context.Context, clientID string, request QueryRequest) (QueryResult, error)
	Stats(ctx context.Context) Stats
	ClearCache(ctx context.Context, clientID string) error
}
