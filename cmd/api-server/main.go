package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenseii/internal/anime"
	"tenseii/internal/auth"
	"tenseii/internal/cache"
	"tenseii/internal/identify"
	"tenseii/internal/llm"
	"tenseii/internal/middleware"
	"tenseii/internal/vision"
	"tenseii/pkg/database"
	"tenseii/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := utils.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.MustOpen(database.DefaultConfig(cfg.DBPath))
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// Redis is an optimization, not a dependency: when it is down the
	// service starts with a null cache and every lookup goes upstream.
	var store cache.Cache
	redisCache, err := cache.NewRedis(context.Background(), cfg.RedisDSN, cfg.RedisConnectTimeout, cfg.RedisOperationTimeout)
	if err != nil {
		log.Printf("redis unavailable, continuing without cache: %v", err)
		store = cache.Null{}
	} else {
		store = redisCache
		defer redisCache.Close()
	}

	animeRepo := anime.NewRepo(db)
	visionClient := vision.NewClient(cfg.VisionBaseURL, cfg.VisionTimeout+2*time.Second)
	llmClient := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.OllamaTemperature, cfg.OllamaTimeout)

	warmVisionIndex(animeRepo, visionClient)

	identifyCfg := identify.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		VisionTopK:          cfg.VisionTopK,
		CandidateCacheTTL:   cfg.ImageDedupeTTL,
		LinksCacheTTL:       cfg.CacheTTL,
		MessageCacheTTL:     cfg.CacheTTL,
		VisionTimeout:       cfg.VisionTimeout,
	}
	if err := identifyCfg.Validate(); err != nil {
		log.Fatalf("invalid pipeline configuration: %v", err)
	}
	identifyService := identify.NewService(identifyCfg, store, animeRepo, visionClient, llmClient, nil)

	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:             cfg.RateLimitEnabled,
		Requests:            cfg.RateLimitRequests,
		Window:              cfg.RateLimitWindow,
		TrustedProxyHeaders: cfg.TrustedProxyHeaders,
	})

	router.Use(
		middleware.RequestID(),
		middleware.Locale(cfg.DefaultLocale, cfg.LocaleHeader),
		middleware.AccessLog(cfg.TrustedProxyHeaders),
		middleware.SecurityHeaders(),
		middleware.Metrics(),
		limiter.Middleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}

	v1 := router.Group("/v1")

	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(v1.Group("/auth"))

	identifyHandler := identify.NewHandler(identifyService, identify.UploadLimits{
		MaxUploadBytes:        cfg.MaxUploadBytes,
		UploadReadChunkSize:   cfg.UploadReadChunkSize,
		AllowedImageMimeTypes: cfg.AllowedImageMimeTypes,
		MaxImagePixels:        cfg.MaxImagePixels,
		MaxImageWidth:         cfg.MaxImageWidth,
		MaxImageHeight:        cfg.MaxImageHeight,
	})
	identified := v1.Group("")
	identified.Use(auth.OptionalAuth(tokenSvc))
	identifyHandler.RegisterRoutes(identified)

	protected := v1.Group("/users")
	protected.Use(auth.RequireAuth(tokenSvc))
	protected.GET("/me", func(c *gin.Context) {
		claims := auth.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"premium":  claims.Premium,
		})
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("server stopped")
}

// warmVisionIndex pushes the catalog titles to the vision sidecar so it can
// build its index before traffic arrives. Failure is logged, not fatal: the
// sidecar may come up later with its own persisted index.
func warmVisionIndex(repo *anime.Repo, client *vision.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	titles, err := repo.ListCanonicalTitles(ctx)
	if err != nil {
		log.Printf("vision index warmup skipped, list titles failed: %v", err)
		return
	}
	if len(titles) == 0 {
		log.Printf("vision index warmup skipped, catalog is empty")
		return
	}
	if err := client.BuildIndex(ctx, titles); err != nil {
		log.Printf("vision index warmup failed: %v", err)
		return
	}
	log.Printf("vision index warmed with %d titles", len(titles))
}
