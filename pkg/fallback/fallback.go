// Package fallback is the deterministic, offline responder at the bottom of
// the cascade. It classifies the message against a fixed-order rule table
// and always returns text: no network, no disk, no failure mode.
package fallback

import (
	"fmt"
	"regexp"
	"strings"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
)

// Category labels the pattern that matched a message.
type Category string

const (
	CategoryAppFeature      Category = "app_feature"
	CategoryParalysis       Category = "executive_paralysis"
	CategoryFocusLoss       Category = "focus_loss"
	CategoryIndecision      Category = "indecision"
	CategoryMotivation      Category = "low_motivation"
	CategoryProcrastination Category = "procrastination"
	CategoryGeneral         Category = "general"
)

// CategoryOrder is the tie-break order: rules are checked in this sequence
// and the first match wins, so a message matching two categories always
// resolves to the earlier one.
var CategoryOrder = []Category{
	CategoryAppFeature,
	CategoryParalysis,
	CategoryFocusLoss,
	CategoryIndecision,
	CategoryMotivation,
	CategoryProcrastination,
}

type rule struct {
	category Category
	pattern  *regexp.Regexp
	respond  func(msg string, ctx domainAssistant.QueryContext) string
}

var (
	reAppQuestion = regexp.MustCompile(`cómo (funciona|uso|usar|se usa)|qué (es|hace|significa)|para qué (sirve|es)|dónde (está|encuentro|veo)`)

	reAppTasks         = regexp.MustCompile(`tarea|lista`)
	reAppPomodoro      = regexp.MustCompile(`pomodoro|temporizador`)
	reAppSounds        = regexp.MustCompile(`sonido|ruido`)
	reAppConcentration = regexp.MustCompile(`concentración|modo concentr`)

	reParalysis       = regexp.MustCompile(`no sé (por dónde|qué) empezar|bloqueado|paralizado|abrumado`)
	reFocusLoss       = regexp.MustCompile(`distraído|perdí (el )?foco|no puedo concentrar|disperso`)
	reIndecision      = regexp.MustCompile(`qué (hago|tarea)|cuál (priorizo|primero)|no sé qué hacer`)
	reMotivation      = regexp.MustCompile(`sin ganas|desmotivado|no puedo seguir|cansado|agotado`)
	reProcrastination = regexp.MustCompile(`procrastin|posponiendo|aplazando|después`)
)

// Engine matches messages against the ordered rule table.
type Engine struct {
	rules []rule
}

func NewEngine() *Engine {
	return &Engine{rules: []rule{
		{CategoryAppFeature, reAppQuestion, respondAppFeature},
		{CategoryParalysis, reParalysis, respondParalysis},
		{CategoryFocusLoss, reFocusLoss, respondFocusLoss},
		{CategoryIndecision, reIndecision, respondIndecision},
		{CategoryMotivation, reMotivation, respondMotivation},
		{CategoryProcrastination, reProcrastination, respondProcrastination},
	}}
}

// Respond is total: it returns non-empty text for any input.
func (e *Engine) Respond(message string, ctx domainAssistant.QueryContext) string {
	_, text := e.classify(message, ctx)
	return text
}

// Classify reports which category would answer the message.
func (e *Engine) Classify(message string) Category {
	cat, _ := e.classify(message, domainAssistant.QueryContext{})
	return cat
}

func (e *Engine) classify(message string, ctx domainAssistant.QueryContext) (Category, string) {
	msg := strings.ToLower(strings.TrimSpace(message))

	for _, r := range e.rules {
		if !r.pattern.MatchString(msg) {
			continue
		}
		if text := r.respond(msg, ctx); text != "" {
			return r.category, text
		}
	}

	return CategoryGeneral, respondGeneral()
}

// respondAppFeature answers "how do I use ..." questions about concrete app
// features. Returns "" when the question names no known feature so the later
// rules get their turn.
func respondAppFeature(msg string, _ domainAssistant.QueryContext) string {
	switch {
	case reAppTasks.MatchString(msg):
		return `Para crear una tarea: toca el botón rojo con "+" en la esquina inferior derecha. Elige si es OBLIGATORIA (rojo) u OPCIONAL (azul). Las obligatorias son prioridad. 📌`
	case reAppPomodoro.MatchString(msg):
		return `El Pomodoro son 25 minutos de trabajo concentrado. Selecciona una tarea, toca "Iniciar" y trabaja hasta que suene. Luego tomas un descanso de 5 o 10 minutos. ⏱️`
	case reAppSounds.MatchString(msg):
		return `En Ambientes Sonoros tienes ruido rosa y marrón. Toca la tarjeta del sonido que quieras y luego "Play". Ayudan a concentrarte bloqueando distracciones. 🎧`
	case reAppConcentration.MatchString(msg):
		return `Modo Concentración bloquea la navegación y silencia notificaciones. Seleccionas UNA tarea y te enfocas solo en eso. Para salir, toca el botón rojo. 🎯`
	}
	return ""
}

func respondParalysis(_ string, ctx domainAssistant.QueryContext) string {
	base := `Cuando te sientas bloqueado, empieza con la tarea MÁS PEQUEÑA. ¿Qué tal un Pomodoro de solo 5 minutos? No necesitas terminar, solo empezar. 🎯`
	if ctx.MandatoryPending > 0 {
		return fmt.Sprintf(`Tienes %d tarea(s) obligatoria(s) pendiente(s). %s`, ctx.MandatoryPending, base)
	}
	return base
}

func respondFocusLoss(_ string, _ domainAssistant.QueryContext) string {
	return `Es normal distraerse con TDAH. Prueba: 🎯 Modo Concentración para eliminar distracciones, ⏱️ Pomodoro de 25 min, o 🔊 Ruido rosa para enmascarar sonidos. ¿Cuál prefieres?`
}

func respondIndecision(_ string, ctx domainAssistant.QueryContext) string {
	base := `Regla simple: 1️⃣ Tareas obligatorias primero, 2️⃣ Las más cortas primero, 3️⃣ Una a la vez. Las tareas obligatorias están marcadas en rojo en tu lista. 📌`
	if ctx.TotalPending() > 0 {
		return fmt.Sprintf(`Tienes %d tarea(s) pendiente(s), %d obligatoria(s). %s`, ctx.TotalPending(), ctx.MandatoryPending, base)
	}
	return base
}

func respondMotivation(_ string, ctx domainAssistant.QueryContext) string {
	base := `El agotamiento es real, no es pereza. Prueba: toma un descanso SIN pantallas, 10 min de actividad física, luego un Pomodoro corto. No necesitas energía para empezar, la energía viene DESPUÉS. 💪`
	if ctx.CompletedToday > 0 {
		return fmt.Sprintf(`Ya completaste %d tarea(s) hoy, eso cuenta. %s`, ctx.CompletedToday, base)
	}
	return base
}

func respondProcrastination(_ string, _ domainAssistant.QueryContext) string {
	return `Con TDAH, "después" nunca llega. Regla de 2 minutos: comprométete a solo 2 minutos. Usa el temporizador. Generalmente eso basta para romper la inercia. ⏱️`
}

func respondGeneral() string {
	return "Estoy aquí para ayudarte con TDAH. Puedo orientarte cuando:\n\n• No sabes por dónde empezar\n• Estás distraído\n• No sabes qué hacer primero\n• Estás sin energía\n• Tienes dudas sobre cómo usar la app\n\n¿Qué necesitas ahora?"
}
