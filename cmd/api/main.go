package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"docshare/docs"
	"docshare/internal/auth"
	"docshare/internal/config"
	"docshare/internal/database"
	"docshare/internal/database/migration"
	"docshare/internal/feed"
	handlers "docshare/internal/http/handler"
	"docshare/internal/http/middleware"
	"docshare/internal/otel"
	"docshare/internal/repository"
	mongorepo "docshare/internal/repository/mongo"
	"docshare/internal/repository/postgres"
	"docshare/internal/service"
	"docshare/internal/storage"
)

// mongoPinger adapts the Mongo client to the health endpoint's probe.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// @title Docshare API
// @version 1.0
// @BasePath /
func main() {
	ctx := context.Background()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Directory backend: one repository contract, two wire formats.
	var docRepo repository.DocumentRepository
	var healthDep handlers.Pinger

	switch cfg.DirectoryBackend {
	case config.BackendMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo.URI, 10*time.Second)
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer client.Disconnect(ctx)

		col := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		docRepo = mongorepo.NewDocumentMongo(col)
		healthDep = mongoPinger{client: client}

	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}

		docRepo = postgres.NewDocumentPostgres(db)
		healthDep = db

	default:
		log.Fatalf("unknown directory backend: %q", cfg.DirectoryBackend)
	}

	// Object store: S3-compatible by default, unsigned HTTP endpoint optional.
	var uploader storage.Uploader
	switch cfg.StorageBackend {
	case config.StorageHTTP:
		uploader, err = storage.NewHTTPUploader(cfg.Upload)
	case config.StorageMinIO:
		uploader, err = storage.NewMinIO(cfg.MinIO)
	default:
		log.Fatalf("unknown storage backend: %q", cfg.StorageBackend)
	}
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	authSvc, err := auth.NewService(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize auth: %v", err)
	}

	broadcaster := feed.NewBroadcaster()
	docSvc := service.NewDocumentService(uploader, docRepo, broadcaster)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, healthDep, authSvc, docSvc, broadcaster)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
