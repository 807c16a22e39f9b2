package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreconfig "github.com/enfoca-app/assist-api/core/config"
	"github.com/enfoca-app/assist-api/integrations/huggingface"
	"github.com/enfoca-app/assist-api/pkg/connstate"
	"github.com/enfoca-app/assist-api/pkg/fallback"
	"github.com/enfoca-app/assist-api/pkg/promptbuilder"
	"github.com/enfoca-app/assist-api/pkg/ratelimit"
	"github.com/enfoca-app/assist-api/pkg/respcache"
	"github.com/enfoca-app/assist-api/ui/rest"
	"github.com/enfoca-app/assist-api/ui/rest/middleware"
	"github.com/enfoca-app/assist-api/usecase"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the assistant API over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "Enfoca Assist API " + cfg.App.Version,
		ServerHeader:            "Hidden",
	}
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Coarse per-IP guard in front of the whole surface. The assistant's own
	// limiter enforces the real query quota per client.
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := respcache.New()
	cache.StartSweeper(ctx, cfg.Assistant.CacheSweepInterval)

	tracker := connstate.NewTracker()
	go logConnectionNotices(tracker)

	assistantService := usecase.NewAssistantService(usecase.AssistantDeps{
		Limiter:       ratelimit.NewLimiter(cfg.Assistant.RateLimitMax, cfg.Assistant.RateLimitWindow),
		StrictLimiter: ratelimit.NewLimiter(cfg.Assistant.StrictRateLimitMax, cfg.Assistant.StrictRateLimitWindow),
		Cache:         cache,
		Tracker:       tracker,
		Prompts:       promptbuilder.NewBuilder(),
		Gateway:       huggingface.NewGateway(cfg.Model),
		Fallback:      fallback.NewEngine(),
		CacheTTL:      cfg.Assistant.CacheTTL,
		MaxMessageLen: cfg.Assistant.MaxMessageLength,
	})

	apiGroup := app.Group(cfg.App.BasePath)
	rest.InitRestAssistant(apiGroup, assistantService)
	rest.InitRestHealth(apiGroup, assistantService)

	apiGroup.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		cancel()
	}()

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

// logConnectionNotices drains the tracker's transition channel so operators
// see connectivity flips even between requests.
func logConnectionNotices(tracker *connstate.Tracker) {
	for notice := range tracker.Notices() {
		switch notice.Transition {
		case connstate.Lost:
			logrus.Warnf("[CONN] Model connection lost at %s, serving offline answers", notice.At.Format(time.RFC3339))
		case connstate.Restored:
			logrus.Infof("[CONN] Model connection restored at %s", notice.At.Format(time.RFC3339))
		}
	}
}
