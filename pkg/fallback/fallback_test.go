package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
)

func TestEngine_CanonicalTriggers(t *testing.T) {
	e := NewEngine()

	cases := []struct {
		message string
		want    Category
	}{
		{"cómo funciona el pomodoro", CategoryAppFeature},
		{"no sé por dónde empezar", CategoryParalysis},
		{"estoy muy distraído hoy", CategoryFocusLoss},
		{"no sé qué hacer primero", CategoryIndecision},
		{"estoy sin ganas de nada", CategoryMotivation},
		{"llevo toda la semana procrastinando", CategoryProcrastination},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Classify(tc.message))
			text := e.Respond(tc.message, domainAssistant.QueryContext{})
			assert.NotEmpty(t, text)
		})
	}
}

func TestEngine_NoMatchReturnsCapabilityListing(t *testing.T) {
	e := NewEngine()

	for _, msg := range []string{"", "   ", "xyzzy", "hola"} {
		text := e.Respond(msg, domainAssistant.QueryContext{})
		require.NotEmpty(t, text)
		assert.Contains(t, text, "¿Qué necesitas ahora?")
	}
}

func TestEngine_FirstMatchWins(t *testing.T) {
	e := NewEngine()

	// Matches both paralysis ("bloqueado") and focus loss ("distraído");
	// paralysis comes first in CategoryOrder.
	msg := "estoy bloqueado y distraído"
	assert.Equal(t, CategoryParalysis, e.Classify(msg))
}

func TestEngine_AppQuestionWithoutFeatureFallsThrough(t *testing.T) {
	e := NewEngine()

	// Matches the app-question pattern but names no known feature, so the
	// rule yields and the generic capability listing answers.
	assert.Equal(t, CategoryGeneral, e.Classify("cómo funciona esto"))
	assert.NotEmpty(t, e.Respond("cómo funciona esto", domainAssistant.QueryContext{}))
}

func TestEngine_ContextCountersAreInterpolated(t *testing.T) {
	e := NewEngine()

	ctx := domainAssistant.QueryContext{MandatoryPending: 2, OptionalPending: 1}
	text := e.Respond("no sé por dónde empezar", ctx)
	assert.Contains(t, text, "2 tarea(s) obligatoria(s)")

	// Without counters the reply still stands on its own.
	text = e.Respond("no sé por dónde empezar", domainAssistant.QueryContext{})
	assert.NotEmpty(t, text)
	assert.NotContains(t, text, "0 tarea")
}

func TestEngine_MatchingIsCaseInsensitive(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, CategoryParalysis, e.Classify("ME SIENTO ABRUMADO"))
}

func TestCategoryOrder_IsStable(t *testing.T) {
	want := []Category{
		CategoryAppFeature,
		CategoryParalysis,
		CategoryFocusLoss,
		CategoryIndecision,
		CategoryMotivation,
		CategoryProcrastination,
	}
	assert.Equal(t, want, CategoryOrder)

	e := NewEngine()
	require.Len(t, e.rules, len(want))
	for i, r := range e.rules {
		assert.Equal(t, want[i], r.category)
	}
}
