package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Jeda-Ngoding/pos-mvp/internal/cart"
	"github.com/Jeda-Ngoding/pos-mvp/internal/catalog"
	"github.com/Jeda-Ngoding/pos-mvp/internal/checkout"
	"github.com/Jeda-Ngoding/pos-mvp/internal/events"
	h "github.com/Jeda-Ngoding/pos-mvp/internal/http"
	"github.com/Jeda-Ngoding/pos-mvp/internal/metrics"
	"github.com/Jeda-Ngoding/pos-mvp/internal/orderstore"
	"github.com/Jeda-Ngoding/pos-mvp/internal/report"
	"github.com/Jeda-Ngoding/pos-mvp/internal/storage"
)

type Config struct {
	HTTPPort        string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	MigrationsPath  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	KafkaTopic      string
	ImageStorageURL string
	ImagePublicURL  string
	ProductsPerPage int
	ReportPerPage   int
	CartTTL         time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	pgPort, _ := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    pgPort,
		PostgresUser:    getEnv("POSTGRES_USER", "pos"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "pos"),
		PostgresDB:      getEnv("POSTGRES_DB", "posdb"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "pos-sales"),
		ImageStorageURL: getEnv("IMAGE_STORAGE_URL", ""),
		ImagePublicURL:  getEnv("IMAGE_PUBLIC_URL", ""),
		ProductsPerPage: 10,
		ReportPerPage:   5,
		CartTTL:         2 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)

	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Order store (owns the schema migrations)
	creds := &orderstore.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPass,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	orderRepo, err := orderstore.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer orderRepo.Close()

	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	// Catalog store over the same database
	dsn := "postgres://" + cfg.PostgresUser + ":" + cfg.PostgresPass +
		"@" + cfg.PostgresHost + ":" + strconv.Itoa(cfg.PostgresPort) +
		"/" + cfg.PostgresDB + "?sslmode=disable"
	catalogRepo, err := catalog.NewPostgresRepository(ctx, dsn)
	if err != nil {
		log.Fatalf("Failed to create catalog repository: %v", err)
	}
	defer catalogRepo.Close()

	// Product cache is optional; without Redis the catalog reads go straight
	// to the store
	var productCache catalog.ProductCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Redis connection failed: ", err)
		}
		log.Printf("Redis ping succeeded")
		productCache = catalog.NewRedisCache(redisClient)
	}

	// Image storage is optional too
	var imageStore catalog.ImageStore
	if cfg.ImageStorageURL != "" {
		imageStore = storage.NewImageClient(cfg.ImageStorageURL, cfg.ImagePublicURL)
	}

	catalogService := catalog.NewService(catalogRepo, productCache, imageStore)

	// Sale events are fire-and-forget and disabled without brokers
	var publisher checkout.Publisher
	if cfg.KafkaBrokers != "" {
		salePublisher := events.NewSalePublisher(cfg.KafkaTopic, strings.Split(cfg.KafkaBrokers, ",")...)
		defer salePublisher.Close()
		publisher = salePublisher
	}

	carts := cart.NewStore(cfg.CartTTL)
	go carts.Run(ctx, time.Minute)

	submitter := checkout.NewService(orderRepo, publisher)
	reports := report.NewService(orderRepo, cfg.ReportPerPage)

	productHandler := h.NewProductHandler(catalogService, cfg.ProductsPerPage)
	cartHandler := h.NewCartHandler(carts, catalogService)
	checkoutHandler := h.NewCheckoutHandler(carts, submitter)
	reportHandler := h.NewReportHandler(reports)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(metrics.Middleware)
	r.Use(h.SessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Put("/{product_id}", productHandler.Update)
			r.Delete("/{product_id}", productHandler.Delete)
			r.Post("/{product_id}/image", productHandler.UploadImage)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{product_id}/increment", cartHandler.IncrementQuantity)
			r.Post("/items/{product_id}/decrement", cartHandler.DecrementQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.Checkout)
		r.Get("/dashboard/summary", reportHandler.Summary)
		r.Get("/reports/transactions", reportHandler.Transactions)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("POS server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
