package rest

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	coreconfig "github.com/enfoca-app/assist-api/core/config"
	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
	pkgError "github.com/enfoca-app/assist-api/pkg/error"
	"github.com/enfoca-app/assist-api/pkg/utils"
)

type Assistant struct {
	Service domainAssistant.IAssistantUsecase
}

func InitRestAssistant(app fiber.Router, service domainAssistant.IAssistantUsecase) Assistant {
	rest := Assistant{Service: service}

	app.Post("/query", rest.Query)
	app.Get("/query/stats", rest.Stats)
	app.Post("/query/cache/clear", rest.ClearCache)

	return rest
}

// queryResponse is the flat body the mobile client consumes. Unlike the
// admin endpoints it is not wrapped in the ResponseData envelope.
type queryResponse struct {
	Response             string `json:"response"`
	Source               string `json:"source"`
	Cached               bool   `json:"cached"`
	ProcessingTime       int64  `json:"processingTime"`
	ConnectionTransition string `json:"connectionTransition,omitempty"`
}

func (h *Assistant) Query(c *fiber.Ctx) error {
	var req domainAssistant.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	result, err := h.Service.Query(c.UserContext(), clientKey(c), req)
	if err != nil {
		var rlErr pkgError.RateLimitError
		if errors.As(err, &rlErr) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rlErr.RetryAfterSeconds))
			return c.Status(rlErr.StatusCode()).JSON(utils.ResponseData{
				Status:  rlErr.StatusCode(),
				Code:    rlErr.ErrCode(),
				Message: rlErr.Error(),
			})
		}
		utils.PanicIfNeeded(err)
	}

	return c.JSON(queryResponse{
		Response:             result.Text,
		Source:               string(result.Source),
		Cached:               result.Cached,
		ProcessingTime:       result.ProcessingTimeMs,
		ConnectionTransition: string(result.Transition),
	})
}

func (h *Assistant) Stats(c *fiber.Ctx) error {
	stats := h.Service.Stats(c.UserContext())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Assistant stats fetched",
		Results: stats,
	})
}

func (h *Assistant) ClearCache(c *fiber.Ctx) error {
	if coreconfig.Global != nil && coreconfig.Global.App.Environment == "production" {
		forbidden := pkgError.ForbiddenError("cache clearing is disabled in production")
		return c.Status(forbidden.StatusCode()).JSON(utils.ResponseData{
			Status:  forbidden.StatusCode(),
			Code:    forbidden.ErrCode(),
			Message: forbidden.Error(),
		})
	}

	if err := h.Service.ClearCache(c.UserContext(), clientKey(c)); err != nil {
		var rlErr pkgError.RateLimitError
		if errors.As(err, &rlErr) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(rlErr.RetryAfterSeconds))
			return c.Status(rlErr.StatusCode()).JSON(utils.ResponseData{
				Status:  rlErr.StatusCode(),
				Code:    rlErr.ErrCode(),
				Message: rlErr.Error(),
			})
		}
		utils.PanicIfNeeded(err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Response cache cleared",
		Results: nil,
	})
}

// clientKey identifies the caller for rate limiting. Behind a proxy Fiber
// resolves the real IP via the trusted-proxies config; an empty IP (seen in
// some test harnesses) gets a throwaway key instead of sharing one bucket.
func clientKey(c *fiber.Ctx) string {
	if ip := c.IP(); ip != "" {
		return ip
	}
	return uuid.NewString()
}
