package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"boxoffice/internal/auth"
	"boxoffice/internal/feed"
	"boxoffice/internal/forecast"
	"boxoffice/internal/history"
	"boxoffice/internal/lexicon"
	"boxoffice/internal/model"
	"boxoffice/internal/predict"
	"boxoffice/pkg/database"
	"boxoffice/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The model and lexicon are loaded once; the server does not start
	// without them.
	logger.Info("loading trained model", zap.String("path", cfg.Model.Path))
	m, err := model.Load(cfg.Model.Path)
	if err != nil {
		logger.Fatal("model load failed", zap.Error(err))
	}

	lexRepo := lexicon.NewRepo(db)
	lex, err := lexicon.Load(ctx, cfg.Lexicon.Path, lexRepo)
	if err != nil {
		logger.Fatal("lexicon load failed", zap.Error(err))
	}
	logger.Info("lexicon loaded", zap.Int("words", lex.Len()))

	evaluator, err := forecast.NewEvaluator(m, lex, forecast.WithLogger(logger.Named("forecast")))
	if err != nil {
		logger.Fatal("evaluator init failed", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	_ = router.SetTrustedProxies(cfg.Server.TrustedProxies)

	hub := feed.NewHub(cfg.Server.FeedBacklog, logger.Named("feed"))
	router.GET("/ws", feed.WSHandler(hub))
	feedSrv := feed.NewServer(cfg.Server.FeedAddr, hub, logger.Named("feed"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Database.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "not_ready",
				"db_error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":         "ready",
			"db":             "ok",
			"model":          cfg.Model.Path,
			"schema_version": forecast.SchemaVersion,
			"lexicon_words":  lex.Len(),
			"tcp_clients":    stats.TCPClients,
			"ws_clients":     stats.WSClients,
			"feed_backlog":   stats.Backlog,
			"feed_published": stats.Published,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter *predict.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = predict.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	// Forecasts (public, rate limited)
	historyRepo := history.NewRepo(db)
	public := router.Group("")
	public.Use(limiter.Middleware())
	predict.NewHandler(evaluator, historyRepo, hub, logger.Named("predict")).RegisterRoutes(public)

	// Auth
	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
	operator := auth.Operator{Username: cfg.Auth.AdminUsername, PasswordHash: cfg.Auth.AdminPasswordHash}
	auth.NewHandler(operator, tokenSvc).RegisterRoutes(router.Group("/auth"))

	// History (protected)
	protected := router.Group("/history")
	protected.Use(auth.AuthMiddleware(tokenSvc))
	history.NewHandler(historyRepo).RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return feedSrv.Run()
	})

	g.Go(func() error {
		logger.Info("HTTP API server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.Prune(time.Hour)
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown error", zap.Error(err))
		}
		if err := feedSrv.Close(); err != nil {
			logger.Warn("feed shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("servers stopped")
}
