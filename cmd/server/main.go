package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vero/backend/config"
	httpDelivery "github.com/vero/backend/internal/delivery/http"
	"github.com/vero/backend/internal/domain"
	"github.com/vero/backend/internal/infrastructure/cache"
	"github.com/vero/backend/internal/infrastructure/llm"
	"github.com/vero/backend/internal/infrastructure/metrics"
	"github.com/vero/backend/internal/infrastructure/pinecone"
	"github.com/vero/backend/internal/infrastructure/store"
	"github.com/vero/backend/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Vero Backend",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	ctx := context.Background()

	// Vector index and inference
	pineconeClient := pinecone.NewClient(pinecone.Config{
		APIKey:            cfg.Pinecone.APIKey,
		Environment:       cfg.Pinecone.Environment,
		ControlPlaneURL:   cfg.Pinecone.ControlPlaneURL,
		APIVersion:        cfg.Pinecone.APIVersion,
		EmbedModel:        cfg.Pinecone.EmbedModel,
		RequestsPerSecond: cfg.Pinecone.RequestsPerSecond,
	}, logger.Named("pinecone"))
	if cfg.Server.Environment == "development" {
		pineconeClient.SetDebug(true)
	}
	logger.Info("Pinecone client initialized", zap.String("pinecone_environment", pineconeClient.Environment()))

	indexes, err := resolveIndexes(ctx, pineconeClient, cfg.Pinecone)
	if err != nil {
		logger.Fatal("Failed to resolve vector indexes", zap.Error(err))
	}

	embedder, err := newEmbedder(cfg, pineconeClient, logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to initialize text generator", zap.Error(err))
	}
	defer closeGenerator()

	// Record store
	repository, err := store.New(ctx, store.Config{
		Type:       cfg.Store.Type,
		URI:        cfg.Store.URI,
		Database:   cfg.Store.Database,
		SQLitePath: cfg.Store.SQLitePath,
	}, logger.Named("store"))
	if err != nil {
		logger.Fatal("Failed to initialize record store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repository.Close(closeCtx); err != nil {
			logger.Warn("Failed to close record store", zap.Error(err))
		}
	}()

	// Embedding cache
	var embeddingCache domain.CacheRepository
	if cfg.Cache.Enabled {
		memoryCache := cache.NewMemoryCache(cache.Options{MaxEntries: cfg.Cache.MaxEntries}, logger.Named("cache"))
		defer memoryCache.Close()
		embeddingCache = memoryCache
		logger.Info("Embedding cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Usecase layer
	classifier := usecase.NewClassifier(embedder, indexes, embeddingCache, usecase.ClassifierConfig{
		Threshold:    cfg.Matching.Threshold,
		TopK:         cfg.Matching.TopK,
		ScanMode:     usecase.ScanMode(cfg.Matching.ScanMode),
		EmbeddingTTL: cfg.Cache.TTL,
	}, logger.Named("classifier"))

	explainer := usecase.NewExplanationService(generator, usecase.ExplanationConfig{
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	}, logger.Named("explainer"))

	verificationService := usecase.NewVerificationService(
		classifier,
		usecase.NewPromptBuilder(usecase.PromptConfig{Format: cfg.Generation.Format}),
		explainer,
		repository,
		appMetrics,
		logger.Named("verification"),
	)

	logger.Info("Matching configured",
		zap.Float64("threshold", cfg.Matching.Threshold),
		zap.Int("top_k", cfg.Matching.TopK),
		zap.String("scan_mode", cfg.Matching.ScanMode))

	// HTTP delivery
	handler := httpDelivery.NewHandler(verificationService, logger.Named("http"))
	router := httpDelivery.SetupRouter(cfg, handler, httpDelivery.RouterOptions{
		Logger:         logger.Named("http"),
		Metrics:        appMetrics,
		MetricsHandler: metrics.Handler(registry),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// resolveIndexes looks up the data-plane host of each category index concurrently.
// Configured hosts skip the lookup.
func resolveIndexes(ctx context.Context, client *pinecone.Client, cfg config.PineconeConfig) (map[domain.Category]domain.VectorIndex, error) {
	targets := []struct {
		category domain.Category
		name     string
		host     string
	}{
		{domain.CategoryDrug, cfg.DrugIndex, cfg.DrugHost},
		{domain.CategoryBaby, cfg.BabyIndex, cfg.BabyHost},
	}

	hosts := make([]string, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		if target.host != "" {
			hosts[i] = target.host
			continue
		}
		i, target := i, target
		g.Go(func() error {
			host, err := client.DescribeIndex(gctx, target.name)
			if err != nil {
				return fmt.Errorf("%s index %q: %w", target.category, target.name, err)
			}
			hosts[i] = host
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indexes := make(map[domain.Category]domain.VectorIndex, len(targets))
	for i, target := range targets {
		indexes[target.category] = client.Index(hosts[i], cfg.Namespace)
	}
	return indexes, nil
}

func newEmbedder(cfg *config.Config, pineconeClient *pinecone.Client, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:         cfg.Embedding.APIKey,
			BaseURL:        cfg.Embedding.BaseURL,
			EmbeddingModel: cfg.Embedding.Model,
		}, logger.Named("openai"))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return pineconeClient, nil
	}
}

// newGenerator builds the configured text generator and its cleanup func
func newGenerator(ctx context.Context, cfg config.GenerationConfig, logger *zap.Logger) (domain.TextGenerator, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		}, logger.Named("gemini"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Text generator ready", zap.Any("model_info", client.GetModelInfo()))
		return client, func() { client.Close() }, nil
	default:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = llm.OpenRouterBaseURL
		}
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     baseURL,
			Model:       cfg.Model,
			Attribution: true,
		}, logger.Named("openrouter"))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Text generator ready", zap.Any("model_info", client.GetModelInfo()))
		return client, func() {}, nil
	}
}
