package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/text/language"

	"github.com/jhoicas/pharma-transfers/internal/application/ports"
	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	"github.com/jhoicas/pharma-transfers/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pharma-transfers/internal/infrastructure/pdf"
	"github.com/jhoicas/pharma-transfers/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pharma-transfers/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pharma-transfers/internal/interfaces/http"
	"github.com/jhoicas/pharma-transfers/pkg/config"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

// storage repositorios + runner de transacciones del driver elegido.
type storage struct {
	runner      transfer.TxRunner
	transfers   repository.TransferRepository
	history     repository.TransitionRepository
	stock       repository.StockRepository
	departments repository.DepartmentRepository
	products    repository.ProductRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.App.Storage).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// Idempotency-Key: solo si hay Redis configurado
	var idem ports.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer func() { _ = client.Close() }()
		idem = infraredis.NewIdempotencyStore(client, "")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: Idempotency-Key desactivado")
	}

	transferUC := transfer.NewUseCase(
		st.runner, st.transfers, st.history, st.stock, st.departments, st.products,
		infrapdf.NewSlipGenerator(language.Spanish),
		transfer.Config{
			MaxConflictRetries: cfg.Transfer.MaxConflictRetries,
			StrictAllocation:   cfg.Transfer.StrictAllocation,
		},
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.App.SwaggerFile,
		Path:     "docs",
		Title:    "Pharma Transfers API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		TransferUC:     transferUC,
		JWTSecret:      cfg.JWT.Secret,
		Idempotency:    idem,
		IdempotencyTTL: cfg.Redis.TTL,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage postgres (por defecto) o memory (desarrollo local con catálogo de demo, sin persistencia).
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.Storage == "memory" {
		s := memory.NewStore()
		seedDemo(s, time.Now().UTC())
		return &storage{
			runner:      s,
			transfers:   s.Transfers(),
			history:     s.History(),
			stock:       s.Stocks(),
			departments: s.Departments(),
			products:    s.Products(),
			close:       func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		runner:      postgres.NewTxRunner(pool),
		transfers:   postgres.NewTransferRepository(pool),
		history:     postgres.NewTransitionRepository(pool),
		stock:       postgres.NewStockRepository(pool),
		departments: postgres.NewDepartmentRepository(pool),
		products:    postgres.NewProductRepository(pool),
		close:       pool.Close,
	}, nil
}
