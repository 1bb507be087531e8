// Package main provides the blockflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/leadkit/blockflow/pkg/catalog"
	"github.com/leadkit/blockflow/pkg/channels/gochannel"
	"github.com/leadkit/blockflow/pkg/eventbus"
	"github.com/leadkit/blockflow/pkg/otelhelper"
	"github.com/leadkit/blockflow/pkg/persistence/file"
	"github.com/leadkit/blockflow/pkg/services"
	"github.com/leadkit/blockflow/pkg/simulator"
	"github.com/leadkit/blockflow/pkg/web"
)

// Config carries the command-line settings the API server needs.
type Config struct {
	DataDir    string
	BlockDelay time.Duration
	Tracing    bool
}

type API struct {
	logger   *slog.Logger
	manager  *services.Manager
	catalog  *catalog.Catalog
	bus      eventbus.EventBus
	repo     *file.Repository
	validate *validator.Validate
}

func NewAPI(ctx context.Context, logger *slog.Logger, cfg Config) (*API, error) {
	cat := catalog.NewCatalog(logger)
	cat.RegisterDefaultEntries()

	repo := file.NewRepository(cfg.DataDir)

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewWatermillEventBus(pub, sub)

	simOpts := []simulator.Option{simulator.WithDelay(cfg.BlockDelay)}

	if cfg.Tracing {
		tracer, err := otelhelper.NewTracer(ctx, "blockflow-api")
		if err != nil {
			return nil, err
		}

		simOpts = append(simOpts, simulator.WithTracer(tracer))
	}

	manager := services.NewManager(cat, repo, bus, logger, simOpts...)

	return &API{
		logger:   logger,
		manager:  manager,
		catalog:  cat,
		bus:      bus,
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.manager, a.catalog, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("blockflow API")
	})

	app.Get("/catalog", handlers.GetCatalog)

	f := app.Group("/flows")
	f.Post("/", handlers.CreateFlow)
	f.Get("/:id", handlers.GetFlow)
	f.Delete("/:id", handlers.CloseFlow)

	f.Post("/:id/blocks", handlers.AddBlock)
	f.Patch("/:id/blocks/:blockId/position", handlers.MoveBlock)
	f.Post("/:id/blocks/:blockId/configure", handlers.ConfigureBlock)
	f.Delete("/:id/blocks/:blockId", handlers.DeleteBlock)

	f.Post("/:id/connections", handlers.Connect)
	f.Post("/:id/save", handlers.SaveFlow)
	f.Post("/:id/test", handlers.TestFlow)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

func (a *API) Close(ctx context.Context) error {
	if err := a.bus.Close(); err != nil {
		return err
	}

	return a.repo.Close(ctx)
}
