package rest

import (
	"github.com/gofiber/fiber/v2"

	coreconfig "github.com/enfoca-app/assist-api/core/config"
	domainAssistant "github.com/enfoca-app/assist-api/domains/assistant"
	"github.com/enfoca-app/assist-api/pkg/utils"
)

type Health struct {
	Service domainAssistant.IAssistantUsecase
}

func InitRestHealth(app fiber.Router, service domainAssistant.IAssistantUsecase) Health {
	handler := Health{Service: service}

	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	stats := h.Service.Stats(c.UserContext())

	version := ""
	if coreconfig.Global != nil {
		version = coreconfig.Global.App.Version
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Service healthy",
		Results: fiber.Map{
			"status":  "ok",
			"version": version,
			"online":  stats.Online,
			"uptime":  stats.Uptime,
		},
	})
}
