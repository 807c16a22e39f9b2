// Package promptbuilder renders (message, context) pairs into model-ready
// prompts. The pipeline consumes it opaquely through the domain interface.
package promptbuilder

import (
	"fmt"
	"regexp"
	"strings"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
)

const systemInstructions = `Eres un asistente especializado en TDAH adulto. SIEMPRE respondes en ESPAÑOL.

INSTRUCCIONES OBLIGATORIAS:
1. Responde en ESPAÑOL (nunca inglés)
2. Extensión: 120-180 palabras
3. Tono: empático pero profesional
4. Estructura OBLIGATORIA:
   • Validación empática (1 línea)
   • Explicación breve del "por qué" (contexto TDAH)
   • 2-3 estrategias prácticas numeradas
   • Menciona UNA herramienta de la app (Pomodoro, Modo Concentración, o Ambientes Sonoros)
5. Lenguaje de coaching: "podrías probar...", "una estrategia es...", "funciona bien..."
6. NUNCA diagnostiques ni reemplaces terapia profesional`

const tutorialOverview = `La app tiene 5 funcionalidades principales:
1. Gestión de Tareas: crea tareas obligatorias (rojas) y opcionales (azules)
2. Temporizador Pomodoro: trabaja 25 minutos concentrado, luego descansa 5-10 min
3. Modo Concentración: bloquea distracciones, enfoca en una tarea
4. Ambientes Sonoros: ruido rosa y marrón para mejorar concentración
5. Asistente TDAH: ayuda con parálisis ejecutiva, pérdida de foco, priorización

Navegas con 5 botones en la barra inferior: Inicio, Tareas, Pomodoro, Asistente, Más.`

const offTopicReply = `Lo siento, soy un asistente especializado en TDAH y productividad. No puedo ayudarte con esa pregunta.

Sin embargo, puedo ayudarte con:
🎯 Parálisis ejecutiva (no saber por dónde empezar)
🧠 Pérdida de foco y distracciones
📋 Priorización de tareas
💪 Motivación y agotamiento
📱 Cómo usar las herramientas de la app

¿Hay algo relacionado con TDAH o productividad en lo que pueda ayudarte?`

var (
	reAppQuestion = regexp.MustCompile(`cómo (funciona|uso|usar|se usa)|para qué (sirve|es)|dónde (está|encuentro|veo)`)
	reAppNoun     = regexp.MustCompile(`app|aplicación|pantalla|botón|tarea|pomodoro|temporizador|sonido|concentración`)

	reOffTopicGeo   = regexp.MustCompile(`capital de|cuál es la ciudad|geografía`)
	reOffTopicMath  = regexp.MustCompile(`cuánto es|calcula|suma|resta|multiplica|divide`)
	reOffTopicTech  = regexp.MustCompile(`código|programar|javascript|python|bug`)
	reOffTopicMisc  = regexp.MustCompile(`receta de|cocinar|fútbol|deporte|película|música|actor|actriz`)
	reOnTopicEscape = regexp.MustCompile(`tarea|pomodoro|app|aplicación|concentración|tdah`)
)

// Builder is the default prompt renderer.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces the system/user message pair for a query. App-tutorial
// questions get the tutorial context instead of the coaching instructions;
// off-topic questions short-circuit with a fixed redirect (Direct set).
func (b *Builder) Build(message string, ctx domainAssistant.QueryContext) domainAssistant.Prompt {
	msg := strings.ToLower(message)

	if isOffTopic(msg) {
		return domainAssistant.Prompt{Direct: offTopicReply}
	}

	if reAppQuestion.MatchString(msg) && reAppNoun.MatchString(msg) {
		return buildTutorialPrompt(message)
	}

	return domainAssistant.Prompt{
		System: systemInstructions,
		User: fmt.Sprintf(`CONTEXTO: %s

CONSULTA DEL USUARIO: "%s"

Responde en español siguiendo la estructura obligatoria (validación + explicación + estrategias + herramienta app). 120-180 palabras.`, contextSummary(ctx), message),
	}
}

func buildTutorialPrompt(message string) domainAssistant.Prompt {
	return domainAssistant.Prompt{
		System: fmt.Sprintf(`Eres un asistente para una app de TDAH. El usuario pregunta cómo usarla.

CONTEXTO BREVE:
%s

INSTRUCCIONES:
- Responde en español, tono amigable
- Máximo 120 palabras
- Explica paso a paso QUÉ HACER (no código técnico)
- Habla en segunda persona ("tú tocas", "verás")
- Termina con oración completa`, tutorialOverview),
		User: message,
	}
}

// contextSummary renders the coarse counters as a short Spanish sentence.
// It must never embed task titles or notes.
func contextSummary(ctx domainAssistant.QueryContext) string {
	if ctx.TotalPending() == 0 && ctx.CompletedToday == 0 && ctx.SessionsToday == 0 {
		return "Usuario sin tareas pendientes actualmente."
	}

	var parts []string
	if ctx.MandatoryPending > 0 {
		parts = append(parts, fmt.Sprintf("%d obligatoria(s)", ctx.MandatoryPending))
	}
	if ctx.OptionalPending > 0 {
		parts = append(parts, fmt.Sprintf("%d opcional(es)", ctx.OptionalPending))
	}

	summary := "Usuario sin tareas pendientes actualmente."
	if len(parts) > 0 {
		summary = fmt.Sprintf("Tareas pendientes: %s.", strings.Join(parts, ", "))
	}
	if ctx.CompletedToday > 0 {
		summary += fmt.Sprintf(" Completó %d hoy.", ctx.CompletedToday)
	}
	if ctx.SessionsToday > 0 {
		summary += fmt.Sprintf(" %d Pomodoro(s) completados hoy.", ctx.SessionsToday)
	}
	return summary
}

func isOffTopic(msg string) bool {
	if reOffTopicGeo.MatchString(msg) {
		return true
	}
	if reOffTopicMath.MatchString(msg) && !reOnTopicEscape.MatchString(msg) {
		return true
	}
	if reOffTopicTech.MatchString(msg) && !reOnTopicEscape.MatchString(msg) {
		return true
	}
	return reOffTopicMisc.MatchString(msg)
}
