package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
	"github.com/enfoca-app/assist-api/pkg/connstate"
	pkgError "github.com/enfoca-app/assist-api/pkg/error"
	"github.com/enfoca-app/assist-api/pkg/fallback"
	"github.com/enfoca-app/assist-api/pkg/promptbuilder"
	"github.com/enfoca-app/assist-api/pkg/ratelimit"
	"github.com/enfoca-app/assist-api/pkg/respcache"
)

// fakeGateway scripts the upstream model without any network.
type fakeGateway struct {
	err   error
	text  string
	calls int
}

func (f *fakeGateway) Complete(ctx context.Context, prompt domainAssistant.Prompt) (domainAssistant.Completion, error) {
	f.calls++
	if f.err != nil {
		return domainAssistant.Completion{}, f.err
	}
	return domainAssistant.Completion{Text: f.text, TokensUsed: 42, ResponseTimeMs: 5}, nil
}

func newTestService(gw domainAssistant.IModelGateway, limit int) domainAssistant.IAssistantUsecase {
	return NewAssistantService(AssistantDeps{
		Limiter:       ratelimit.NewLimiter(limit, time.Minute),
		StrictLimiter: ratelimit.NewLimiter(2, 5*time.Minute),
		Cache:         respcache.New(),
		Tracker:       connstate.NewTracker(),
		Prompts:       promptbuilder.NewBuilder(),
		Gateway:       gw,
		Fallback:      fallback.NewEngine(),
		CacheTTL:      time.Hour,
		MaxMessageLen: 500,
	})
}

func TestQuery_ValidationFailures(t *testing.T) {
	svc := newTestService(&fakeGateway{text: "ok."}, 100)

	_, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{Message: "   "})
	var verr pkgError.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: strings.Repeat("a", 501),
	})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: "hola",
		Context: domainAssistant.QueryContext{MandatoryPending: -1},
	})
	require.ErrorAs(t, err, &verr)
}

func TestQuery_RateLimitDenialSkipsPipeline(t *testing.T) {
	gw := &fakeGateway{text: "respuesta."}
	svc := newTestService(gw, 1)

	_, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{Message: "primera"})
	require.NoError(t, err)
	require.Equal(t, 1, gw.calls)

	_, err = svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{Message: "segunda"})
	var rlerr pkgError.RateLimitError
	require.ErrorAs(t, err, &rlerr)
	assert.Positive(t, rlerr.RetryAfterSeconds)

	// A denied request never reaches the model.
	assert.Equal(t, 1, gw.calls)
}

func TestQuery_SecondIdenticalCallHitsCache(t *testing.T) {
	gw := &fakeGateway{text: "Empieza con la tarea más pequeña."}
	svc := newTestService(gw, 100)

	qctx := domainAssistant.QueryContext{MandatoryPending: 2}

	first, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: "estoy agobiado con mis pendientes", Context: qctx,
	})
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceLLM, first.Source)
	assert.False(t, first.Cached)

	// Same query modulo case and whitespace: must be a hit with identical text.
	second, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: "  Estoy   AGOBIADO con mis pendientes ", Context: qctx,
	})
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceCache, second.Source)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, gw.calls, "cache hits must not touch the model")
}

func TestQuery_DifferentContextCountersMissCache(t *testing.T) {
	gw := &fakeGateway{text: "respuesta."}
	svc := newTestService(gw, 100)

	msg := "estoy agobiado con mis pendientes"
	_, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: msg, Context: domainAssistant.QueryContext{MandatoryPending: 2},
	})
	require.NoError(t, err)

	res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: msg, Context: domainAssistant.QueryContext{MandatoryPending: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceLLM, res.Source)
	assert.Equal(t, 2, gw.calls)
}

func TestQuery_ModelFailureDegradesToFallback(t *testing.T) {
	gw := &fakeGateway{err: domainAssistant.ErrColdStart}
	svc := newTestService(gw, 100)

	res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: "no sé por dónde empezar",
		Context: domainAssistant.QueryContext{MandatoryPending: 2},
	})
	require.NoError(t, err, "a model failure must never surface as an error")
	assert.Equal(t, domainAssistant.SourceFallback, res.Source)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.Text)
	assert.Contains(t, res.Text, "2 tarea(s) obligatoria(s)")
	assert.Equal(t, domainAssistant.TransitionLost, res.Transition)
}

func TestQuery_SingleTransitionNoticeAcrossFailuresAndRecovery(t *testing.T) {
	gw := &fakeGateway{err: domainAssistant.ErrTimeout}
	svc := newTestService(gw, 100)

	var transitions []domainAssistant.Transition
	for i := 0; i < 3; i++ {
		res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
			Message: "estoy distraído otra vez",
		})
		require.NoError(t, err)
		require.Equal(t, domainAssistant.SourceFallback, res.Source)
		if res.Transition != domainAssistant.TransitionNone {
			transitions = append(transitions, res.Transition)
		}
	}

	gw.err = nil
	gw.text = "De vuelta en línea."
	for i := 0; i < 2; i++ {
		res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
			Message: "una consulta distinta " + strings.Repeat("x", i+1),
		})
		require.NoError(t, err)
		require.Equal(t, domainAssistant.SourceLLM, res.Source)
		if res.Transition != domainAssistant.TransitionNone {
			transitions = append(transitions, res.Transition)
		}
	}

	assert.Equal(t, []domainAssistant.Transition{
		domainAssistant.TransitionLost,
		domainAssistant.TransitionRestored,
	}, transitions)
}

func TestQuery_AuthFailureIndistinguishableFromOthers(t *testing.T) {
	gw := &fakeGateway{err: domainAssistant.ErrAuth}
	svc := newTestService(gw, 100)

	res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{Message: "ayuda con mi día"})
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceFallback, res.Source)
	assert.NotContains(t, strings.ToLower(res.Text), "api")
	assert.NotContains(t, strings.ToLower(res.Text), "key")
}

func TestQuery_OffTopicShortCircuitsWithoutModelCall(t *testing.T) {
	gw := &fakeGateway{text: "no debería llamarse."}
	svc := newTestService(gw, 100)

	res, err := svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{
		Message: "cuál es la capital de Francia",
	})
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceFallback, res.Source)
	assert.Contains(t, res.Text, "TDAH y productividad")
	assert.Zero(t, gw.calls)
}

func TestQuery_CacheHitDoesNotUpdateTracker(t *testing.T) {
	gw := &fakeGateway{text: "respuesta."}
	svc := newTestService(gw, 100)

	req := domainAssistant.QueryRequest{Message: "necesito ayuda para priorizar"}
	_, err := svc.Query(context.Background(), "c1", req)
	require.NoError(t, err)

	// Force the tracker offline, then hit the cache: no RESTORED may appear.
	gw.err = domainAssistant.ErrTransientNetwork
	_, err = svc.Query(context.Background(), "c1", domainAssistant.QueryRequest{Message: "otra consulta nueva"})
	require.NoError(t, err)

	res, err := svc.Query(context.Background(), "c1", req)
	require.NoError(t, err)
	assert.Equal(t, domainAssistant.SourceCache, res.Source)
	assert.Equal(t, domainAssistant.TransitionNone, res.Transition)
}

func TestStats_ReflectsActivity(t *testing.T) {
	gw := &fakeGateway{text: "respuesta."}
	svc := newTestService(gw, 100)

	req := domainAssistant.QueryRequest{Message: "cómo priorizo mis tareas de hoy"}
	_, err := svc.Query(context.Background(), "c1", req)
	require.NoError(t, err)
	_, err = svc.Query(context.Background(), "c1", req)
	require.NoError(t, err)

	stats := svc.Stats(context.Background())
	assert.Equal(t, 1, stats.CacheSize)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(2), stats.Allowed)
	assert.True(t, stats.Online)
	assert.NotEmpty(t, stats.Uptime)
}

func TestClearCache_UsesStrictTier(t *testing.T) {
	gw := &fakeGateway{text: "respuesta."}
	svc := newTestService(gw, 100)

	require.NoError(t, svc.ClearCache(context.Background(), "admin"))
	require.NoError(t, svc.ClearCache(context.Background(), "admin"))

	err := svc.ClearCache(context.Background(), "admin")
	var rlerr pkgError.RateLimitError
	require.ErrorAs(t, err, &rlerr)
}
