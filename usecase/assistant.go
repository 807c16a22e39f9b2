package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
	"github.com/enfoca-app/assist-api/pkg/connstate"
	pkgError "github.com/enfoca-app/assist-api/pkg/error"
	"github.com/enfoca-app/assist-api/pkg/metrics"
	"github.com/enfoca-app/assist-api/pkg/ratelimit"
	"github.com/enfoca-app/assist-api/pkg/respcache"
	"github.com/enfoca-app/assist-api/validations"
)

const rateLimitMessage = "Has enviado demasiadas consultas. Por favor, espera un momento antes de intentar de nuevo."

// AssistantDeps are the explicitly constructed collaborators of the
// pipeline. Everything is injected; there are no package-level singletons.
type AssistantDeps struct {
	Limiter       *ratelimit.Limiter
	StrictLimiter *ratelimit.Limiter
	Cache         *respcache.Cache
	Tracker       *connstate.Tracker
	Prompts       domainAssistant.IPromptBuilder
	Gateway       domainAssistant.IModelGateway
	Fallback      domainAssistant.IFallbackEngine
	CacheTTL      time.Duration
	MaxMessageLen int
}

type assistantService struct {
	AssistantDeps
	startedAt time.Time
}

// NewAssistantService wires the query pipeline.
func NewAssistantService(deps AssistantDeps) domainAssistant.IAssistantUsecase {
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Hour
	}
	if deps.MaxMessageLen <= 0 {
		deps.MaxMessageLen = 500
	}
	return &assistantService{
		AssistantDeps: deps,
		startedAt:     time.Now(),
	}
}

// Query runs the full cascade for one request. Every path except validation
// and rate-limit denial terminates in a well-formed QueryResult; model
// failures degrade to the fallback engine, never to an error.
func (s *assistantService) Query(ctx context.Context, clientID string, request domainAssistant.QueryRequest) (domainAssistant.QueryResult, error) {
	start := time.Now()

	request.Message = strings.TrimSpace(request.Message)
	if err := validations.ValidateQuery(ctx, request, s.MaxMessageLen); err != nil {
		metrics.QueriesRejected.WithLabelValues("validation").Inc()
		return domainAssistant.QueryResult{}, err
	}

	if decision := s.Limiter.Allow(clientID); !decision.Allowed {
		logrus.Warnf("[ASSISTANT] Rate limit exceeded for client %s", clientID)
		metrics.QueriesRejected.WithLabelValues("rate_limit").Inc()
		return domainAssistant.QueryResult{}, pkgError.RateLimitError{
			Message:           rateLimitMessage,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		}
	}

	key := respcache.Key(respcache.NormalizeMessage(request.Message), request.Context.Signature())

	if text, ok := s.Cache.Get(key); ok {
		// Cache hits never touch the gateway nor the connection tracker.
		metrics.QueriesTotal.WithLabelValues(string(domainAssistant.SourceCache)).Inc()
		return domainAssistant.QueryResult{
			Text:             text,
			Source:           domainAssistant.SourceCache,
			Cached:           true,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	prompt := s.Prompts.Build(request.Message, request.Context)
	if prompt.Direct != "" {
		// The builder already decided the answer (off-topic redirect); the
		// model is not consulted and connectivity is not re-evaluated.
		metrics.QueriesTotal.WithLabelValues(string(domainAssistant.SourceFallback)).Inc()
		return domainAssistant.QueryResult{
			Text:             prompt.Direct,
			Source:           domainAssistant.SourceFallback,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		}, nil
	}

	completion, err := s.Gateway.Complete(ctx, prompt)
	if err != nil {
		return s.degrade(request, err, start), nil
	}

	metrics.ModelLatency.Observe(float64(completion.ResponseTimeMs) / 1000.0)
	s.Cache.Set(key, completion.Text, s.CacheTTL)

	result := domainAssistant.QueryResult{
		Text:             completion.Text,
		Source:           domainAssistant.SourceLLM,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if s.Tracker.RecordSuccess() == connstate.Restored {
		logrus.Info("[ASSISTANT] Model connection restored")
		result.Transition = domainAssistant.TransitionRestored
	}
	metrics.ConnectionOnline.Set(1)
	metrics.QueriesTotal.WithLabelValues(string(domainAssistant.SourceLLM)).Inc()

	return result, nil
}

// degrade absorbs a gateway failure into the fallback path.
func (s *assistantService) degrade(request domainAssistant.QueryRequest, cause error, start time.Time) domainAssistant.QueryResult {
	kind := failureKind(cause)
	metrics.ModelFailures.WithLabelValues(kind).Inc()

	if errors.Is(cause, domainAssistant.ErrAuth) {
		// Operator misconfiguration: loud in the logs, invisible to users.
		logrus.WithError(cause).Error("[ASSISTANT] Model credentials rejected, check MODEL_API_KEY")
	} else {
		logrus.WithError(cause).Warnf("[ASSISTANT] Model unusable (%s), serving fallback", kind)
	}

	result := domainAssistant.QueryResult{
		Text:   s.Fallback.Respond(request.Message, request.Context),
		Source: domainAssistant.SourceFallback,
	}
	if s.Tracker.RecordFailure() == connstate.Lost {
		logrus.Warn("[ASSISTANT] Model connection lost, degrading to offline answers")
		result.Transition = domainAssistant.TransitionLost
	}
	metrics.ConnectionOnline.Set(0)
	metrics.QueriesTotal.WithLabelValues(string(domainAssistant.SourceFallback)).Inc()

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

func (s *assistantService) Stats(ctx context.Context) domainAssistant.Stats {
	cacheStats := s.Cache.Stats()
	limiterStats := s.Limiter.Stats()
	uptime := time.Since(s.startedAt)

	return domainAssistant.Stats{
		CacheSize:      cacheStats.Size,
		CacheHits:      cacheStats.Hits,
		CacheMisses:    cacheStats.Misses,
		CacheEvictions: cacheStats.Evictions,
		CacheHitRate:   cacheStats.HitRate,
		Allowed:        limiterStats.Allowed,
		Denied:         limiterStats.Denied,
		Online:         s.Tracker.State() == connstate.Online,
		UptimeSeconds:  int64(uptime.Seconds()),
		Uptime:         strings.TrimSpace(humanize.RelTime(s.startedAt, time.Now(), "", "")),
	}
}

// ClearCache is the administrative wipe. It is charged against the strict
// limiter tier, which keeps its own window namespace.
func (s *assistantService) ClearCache(ctx context.Context, clientID string) error {
	if decision := s.StrictLimiter.Allow(clientID); !decision.Allowed {
		return pkgError.RateLimitError{
			Message:           rateLimitMessage,
			RetryAfterSeconds: decision.RetryAfterSeconds,
		}
	}
	s.Cache.Clear()
	return nil
}

// failureKind labels a classified gateway error for metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, domainAssistant.ErrAuth):
		return "auth"
	case errors.Is(err, domainAssistant.ErrUpstreamRateLimited):
		return "upstream_rate_limited"
	case errors.Is(err, domainAssistant.ErrColdStart):
		return "cold_start"
	case errors.Is(err, domainAssistant.ErrTimeout):
		return "timeout"
	case errors.Is(err, domainAssistant.ErrEmptyResponse):
		return "empty_response"
	default:
		return "network"
	}
}
