package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"venueadmin/internal/adapter/repo"
	"venueadmin/internal/genimage"
	"venueadmin/internal/http/handlers"
	httpapi "venueadmin/internal/http/httpapi"
	"venueadmin/internal/infra"
	"venueadmin/internal/providers/bfl"
	"venueadmin/internal/providers/fal"
	"venueadmin/internal/providers/imageapi"
	"venueadmin/internal/providers/openaiimg"
	"venueadmin/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := buildStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	providerHTTP := &http.Client{Timeout: cfg.ProviderTimeout}
	clients := buildClients(cfg, providerHTTP, logger)
	if len(clients) == 0 {
		logger.Warn().Msg("no provider credentials configured; every generation will fail")
	}

	sqlDB := infra.NewSQLRunner(dbpool, logger)
	images := repo.NewImageRepository(sqlDB)
	sections := repo.NewSectionRepository(sqlDB)

	pipeline := genimage.NewOrchestrator(genimage.OrchestratorOptions{
		Clients:  clients,
		Store:    store,
		Recorder: images,
		Logger:   logger,
	})

	app := handlers.NewApp(logger, pipeline, images, sections)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		AllowedOrigins:  splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RateLimitPerMin: cfg.RateLimitPerMin,
		AdminToken:      cfg.AdminAPIToken,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// buildClients wires one client per configured credential. A missing key
// leaves the slot empty; requests routed there fail with a configuration
// error instead of a half-configured network call.
func buildClients(cfg *infra.Config, httpClient *http.Client, logger infra.Logger) map[genimage.ClientKind]imageapi.Client {
	clients := make(map[genimage.ClientKind]imageapi.Client)

	if cfg.OpenAIAPIKey != "" {
		c, err := openaiimg.NewClient(openaiimg.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			HTTPClient: httpClient,
			Logger:     &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build openai client")
		}
		clients[genimage.KindSynchronous] = c
	}

	if cfg.BFLAPIKey != "" {
		c, err := bfl.NewClient(bfl.Options{
			APIKey:     cfg.BFLAPIKey,
			BaseURL:    cfg.BFLBaseURL,
			HTTPClient: httpClient,
			Logger:     &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build bfl client")
		}
		clients[genimage.KindSubmitPoll] = c
	}

	if cfg.FalAPIKey != "" {
		c, err := fal.NewClient(fal.Options{
			APIKey:  cfg.FalAPIKey,
			BaseURL: cfg.FalBaseURL,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build fal client")
		}
		clients[genimage.KindSubscribe] = c
	}

	return clients
}

func buildStore(cfg *infra.Config) (storage.Store, error) {
	if cfg.StorageBackend == "fs" {
		return storage.NewFileStore(cfg.StorageBasePath, cfg.StoragePublicBaseURL)
	}
	return storage.NewS3Store(storage.S3Options{
		Endpoint:      cfg.StorageEndpoint,
		Region:        cfg.StorageRegion,
		Bucket:        cfg.StorageBucket,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		PublicBaseURL: cfg.StoragePublicBaseURL,
	})
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
