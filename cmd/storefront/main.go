package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrirakib04/sks-web/internal/admin"
	"github.com/mrirakib04/sks-web/internal/backend"
	"github.com/mrirakib04/sks-web/internal/cart"
	"github.com/mrirakib04/sks-web/internal/checkout"
	"github.com/mrirakib04/sks-web/internal/config"
	"github.com/mrirakib04/sks-web/internal/events"
	h "github.com/mrirakib04/sks-web/internal/http"
	"github.com/mrirakib04/sks-web/internal/notify"
	"github.com/mrirakib04/sks-web/internal/pricing"
	"github.com/mrirakib04/sks-web/internal/session"
	"github.com/mrirakib04/sks-web/internal/slot"
	"github.com/mrirakib04/sks-web/internal/upload"
	"github.com/mrirakib04/sks-web/pkg/circuitbreaker"
	"github.com/mrirakib04/sks-web/pkg/logger"
)

func main() {
	cfg := config.Load()

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	logCfg.FilePath = cfg.Log.File
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	lg := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cartSlot, err := openSlot(ctx, cfg.Slot)
	if err != nil {
		lg.Error("failed to open cart slot", "driver", cfg.Slot.Driver, "error", err)
		os.Exit(1)
	}
	defer cartSlot.Close()

	api, err := backend.New(backend.Options{
		BaseURL:        cfg.APIBaseURL,
		Timeout:        cfg.RequestTimeout,
		ReadRetries:    cfg.ReadRetries,
		ReadRetryDelay: cfg.ReadRetryDelay,
		RateLimit:      cfg.APIRateLimit,
		RateBurst:      cfg.APIRateBurst,
		Breaker:        circuitbreaker.DefaultConfig("backend"),
		Logger:         lg,
	})
	if err != nil {
		lg.Error("invalid backend configuration", "error", err)
		os.Exit(1)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		lg.Info("publishing cart events", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}
	defer publisher.Close()

	var uploader upload.Uploader = upload.Disabled{}
	if cfg.Upload.Enabled() {
		uploader, err = upload.NewS3Uploader(ctx, upload.S3Config{
			Bucket:    cfg.Upload.Bucket,
			Region:    cfg.Upload.Region,
			Endpoint:  cfg.Upload.Endpoint,
			PublicURL: cfg.Upload.PublicURL,
			Prefix:    "images/",
		})
		if err != nil {
			lg.Error("failed to configure image upload", "error", err)
			os.Exit(1)
		}
	}

	feed := notify.NewFeed(notify.NoticeTTL)
	defer feed.Close()

	policy := pricing.Policy{
		HomeRegion: cfg.Pricing.HomeRegion,
		HomeFee:    cfg.Pricing.HomeDeliveryFee,
		OtherFee:   cfg.Pricing.OtherDeliveryFee,
	}

	store := cart.NewStore(ctx, cartSlot, cfg.Slot.Key, feed, publisher, lg)
	sessions := session.New(api, feed, lg)
	checkoutSvc := checkout.NewService(api, store, sessions, policy, feed, publisher, lg)
	console := admin.NewConsole(api, uploader, feed, lg)

	router := h.NewRouter(h.Handlers{
		Cart:     h.NewCartHandler(store, api, policy, feed, cfg.RequestTimeout),
		Products: h.NewProductHandler(api, feed, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(checkoutSvc, sessions, cfg.RequestTimeout, cfg.MaxRequestBodySize),
		Orders:   h.NewOrdersHandler(api, feed, cfg.RequestTimeout),
		Session:  h.NewSessionHandler(sessions, feed, cfg.RequestTimeout, cfg.MaxRequestBodySize),
		Admin:    h.NewAdminHandler(console, cfg.RequestTimeout, 16*cfg.MaxRequestBodySize),
		Users:    sessions,
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("storefront starting", "port", cfg.HTTPPort, "backend", cfg.APIBaseURL, "slot", cfg.Slot.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	lg.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", "error", err)
	}

	lg.Info("server exited")
}

// openSlot builds the durable cart slot for the configured driver.
func openSlot(ctx context.Context, cfg config.SlotConfig) (slot.Slot, error) {
	switch cfg.Driver {
	case "memory":
		return slot.NewMemory(), nil

	case "file":
		return slot.NewFileSlot(cfg.Path)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return slot.NewRedisSlot(client, cfg.Key, cfg.TTL), nil

	case "sqlite":
		db, err := slot.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return migrated(db, slot.DialectSQLite, cfg.Key)

	case "postgres":
		db, err := slot.OpenPostgres(ctx, slot.Credentials{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
		})
		if err != nil {
			return nil, err
		}
		return migrated(db, slot.DialectPostgres, cfg.Key)

	case "mongo":
		db, err := slot.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return slot.NewMongoSlot(db, cfg.Key), nil

	default:
		return nil, fmt.Errorf("unknown slot driver %q", cfg.Driver)
	}
}

func migrated(db *sql.DB, dialect slot.Dialect, key string) (slot.Slot, error) {
	if err := slot.RunMigrations(db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	logger.Get().Info("migrations applied", "dialect", dialect)
	return slot.NewSQLSlot(db, dialect, key), nil
}
