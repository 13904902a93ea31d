package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-marketplace/internal/authn"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/lifecycle"
	"auction-marketplace/internal/lock"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/ratelimit"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", os.Getenv("AUCTION_CONFIG"), "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		utils.Fatal("auction server stopped", map[string]any{"error": err.Error()})
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	utils.SetLevel(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				utils.Warn("shutdown: close failed", map[string]any{"error": err.Error()})
			}
		}
	}()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, store)

	svcCfg := server.ServiceConfig{
		MaxRetries: cfg.BidMaxRetries,
		Rules:      lifecycle.Rules{MinWindow: cfg.MinOpenWindowDuration()},
		SeedRating: cfg.SeedAuctioneerRating,
	}
	opts := server.Options{}

	if cfg.RedisAddr != "" {
		locker, err := lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, "", cfg.LockTTLDuration())
		if err != nil {
			return err
		}
		closers = append(closers, locker)
		svcCfg.Locker = locker

		if cfg.BidRateLimitPerMinute > 0 {
			throttle, err := ratelimit.NewBidThrottle(ratelimit.Config{
				Addr:          cfg.RedisAddr,
				Password:      cfg.RedisPassword,
				BidsPerWindow: cfg.BidRateLimitPerMinute,
				Window:        time.Minute,
			})
			if err != nil {
				return err
			}
			closers = append(closers, throttle)
			opts.BidLimiter = throttle
		}
	}

	if cfg.NatsURL != "" {
		publisher, err := events.NewNATSPublisher(cfg.NatsURL, cfg.NatsSubjectPrefix)
		if err != nil {
			return err
		}
		closers = append(closers, publisher)
		svcCfg.Publisher = publisher
	}

	verifier, err := authn.NewVerifier(authn.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		Leeway: cfg.JWTLeewayDuration(),
	})
	if err != nil {
		return err
	}
	opts.Verifier = verifier

	router := server.SetupRouter(server.NewServices(store, svcCfg), opts)
	return serve(cfg, router)
}

// openStore picks the catalog store named by the configuration
func openStore(cfg config.FileConfig) (repository.CatalogStore, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres, config.StoreMySQL:
		repo, err := repository.NewGormRepo(cfg.StoreDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		repo := repository.NewMemoryRepo()
		prepopulateCategories(repo)
		return repo, nil
	}
}

// prepopulateCategories adds sample categories to the in-memory repo
func prepopulateCategories(repo *repository.MemoryRepo) {
	categories := []model.Category{
		{CategoryID: utils.GenerateID(), Name: "Electronics"},
		{CategoryID: utils.GenerateID(), Name: "Books"},
		{CategoryID: utils.GenerateID(), Name: "Home"},
	}

	for _, category := range categories {
		repo.AddCategory(category)
	}
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains in-flight requests
func serve(cfg config.FileConfig, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Info(fmt.Sprintf("Starting auction server on %s...", srv.Addr), map[string]any{"store": cfg.StoreDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
		defer cancel()
		utils.Info("shutting down auction server", nil)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
