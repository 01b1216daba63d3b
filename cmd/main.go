package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/config"
	"github.com/oksasatya/go-portfolio-tracker/internal/container"
	repo "github.com/oksasatya/go-portfolio-tracker/internal/domain/repository"
	"github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/prices"
	"github.com/oksasatya/go-portfolio-tracker/internal/infrastructure/search"
	"github.com/oksasatya/go-portfolio-tracker/internal/router"
	"github.com/oksasatya/go-portfolio-tracker/internal/scheduler"
	"github.com/oksasatya/go-portfolio-tracker/pkg/helpers"
	"github.com/oksasatya/go-portfolio-tracker/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	c := &container.Container{
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL, cfg.AppName),
	}

	// Storage
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		c.Users = memory.NewUserRepository()
		c.Portfolio = memory.NewPortfolioRepository()
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		c.PGPool = pool
		c.Users = pginfra.NewUserRepository(pool)
		c.Portfolio = pginfra.NewPortfolioRepository(pool)
		c.AddCheck("postgres", pool.Ping)
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q (want postgres or memory)", cfg.StorageDriver)
	}

	// Redis: rate limits and last-known quotes. Optional.
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.WithError(err).Warn("redis unreachable; rate limiting and quote cache disabled")
			_ = rdb.Close()
		} else {
			defer func() { _ = rdb.Close() }()
			c.Redis = rdb
			c.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
	}

	// Market data
	priceSource, err := buildPriceSource(cfg, c.Redis, logger)
	if err != nil {
		log.Fatalf("failed to configure prices: %v", err)
	}
	c.Prices = priceSource

	// GCS exports
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		c.GCS = gcsClient
		c.Uploader = &helpers.GCSUploader{Client: gcsClient, Bucket: cfg.GCSBucket}
	}

	// Elasticsearch transaction search
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(helpers.ESOptions{
			Addresses: addrs,
			Username:  cfg.ElasticsearchUser,
			Password:  cfg.ElasticsearchPass,
			Timeout:   cfg.ESTimeout,
		})
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		idx := search.NewTransactionIndex(es, cfg.ESTransactionsIndex, cfg.ESTimeout)
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := idx.EnsureIndex(ensureCtx); err != nil {
			logger.WithError(err).Warn("elasticsearch index setup failed; search disabled")
		} else {
			c.ES = es
			c.Search = idx
		}
		cancel()
	}

	// RabbitMQ email jobs
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unreachable; emails disabled")
		} else {
			defer pub.Close()
			c.RabbitPub = pub
			c.Publisher = pub
		}
	}

	// Background jobs
	sched, err := scheduler.New(logger)
	if err != nil {
		log.Fatalf("failed to init scheduler: %v", err)
	}
	warm := scheduler.WarmPrices(c.Portfolio, c.Prices, cfg.PriceTimeout, logger)
	if ok, err := sched.ScheduleWarmer(warm, cfg.PriceWarmCron, cfg.PriceWarmInterval); err != nil {
		log.Fatalf("failed to schedule price warmer: %v", err)
	} else if ok {
		logger.WithFields(logrus.Fields{"cron": cfg.PriceWarmCron, "interval": cfg.PriceWarmInterval}).Info("price warmer scheduled")
	}
	sched.Start()

	r := router.NewEngine(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	if err := sched.Stop(); err != nil {
		logger.WithError(err).Warn("scheduler shutdown")
	}
	logger.Info("server exited properly")
}

// buildPriceSource picks static prices when PRICE_STATIC is set, otherwise
// routes crypto and stock symbols to their HTTP sources. With Redis the
// result falls back to the last good quote.
func buildPriceSource(cfg *config.Config, rdb *redis.Client, logger *logrus.Logger) (repo.PriceSource, error) {
	if cfg.PriceStatic != "" {
		return prices.ParseStaticPrices(cfg.StaticPrices())
	}

	ids := cfg.CryptoIDs()
	crypto := prices.NewCryptoSource(cfg.PriceCryptoURL, ids, cfg.PriceTimeout)
	var stock repo.PriceSource
	if cfg.PriceStockURL != "" {
		stock = prices.NewStockSource(cfg.PriceStockURL, cfg.PriceStockPath, cfg.PriceStockAPIKey, cfg.PriceTimeout)
	} else {
		logger.Warn("PRICE_STOCK_URL not set; non-crypto symbols are valued at zero")
	}

	var src repo.PriceSource = prices.NewRouter(ids, crypto, stock)
	if rdb != nil {
		src = prices.NewCachedSource(src, prices.NewRedisQuoteStore(rdb, cfg.PriceCacheTTL), logger)
	}
	return src, nil
}
