package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
	pkgError "github.com/enfoca-app/assist-api/pkg/error"
)

// ValidateQuery rejects empty or oversized messages and malformed context
// counters before any other component runs.
func ValidateQuery(ctx context.Context, request domainAssistant.QueryRequest, maxMessageLen int) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Message,
			validation.Required.Error(`el campo "message" es requerido y debe ser un texto válido`),
			validation.RuneLength(1, maxMessageLen).Error("el mensaje es demasiado largo"),
		),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	err = validation.ValidateStructWithContext(ctx, &request.Context,
		validation.Field(&request.Context.MandatoryPending, validation.Min(0)),
		validation.Field(&request.Context.OptionalPending, validation.Min(0)),
		validation.Field(&request.Context.CompletedToday, validation.Min(0)),
		validation.Field(&request.Context.SessionsToday, validation.Min(0)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
