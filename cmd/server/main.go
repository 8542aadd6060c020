package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/liamwears/moviefinder/internal/collection"
	"github.com/liamwears/moviefinder/internal/config"
	"github.com/liamwears/moviefinder/internal/database"
	"github.com/liamwears/moviefinder/internal/handlers"
	"github.com/liamwears/moviefinder/internal/middleware"
	"github.com/liamwears/moviefinder/internal/models"
	"github.com/liamwears/moviefinder/internal/services"
	"github.com/liamwears/moviefinder/internal/session"
	"github.com/liamwears/moviefinder/internal/storage"
)

func main() {
	// Check for migrate command
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		runMigrations()
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := newLogger(cfg.Log)
	logger.Printf("Starting MovieFinder server in %s mode", cfg.Server.Env)

	// Base context for background detail fetches, cancelled on shutdown
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	// Initialize Redis connection when storage or rate limiting needs it
	var redisClient *database.RedisClient
	if cfg.NeedsRedis() {
		redisClient, err = database.NewRedisClient(baseCtx, database.RedisConfig{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       0,
			TLS:      cfg.Redis.TLS,
		}, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	}

	// Initialize collection storage
	backend, closeBackend, err := openStorage(baseCtx, cfg, redisClient, logger)
	if err != nil {
		logger.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeBackend()

	favorites := collection.NewStore[models.Item](backend, collection.FavoritesKey, logger)
	favorites.Load(baseCtx)
	watchlist := collection.NewStore[models.Item](backend, collection.WatchlistKey, logger)
	watchlist.Load(baseCtx)
	logger.Printf("Loaded %d favorites and %d watchlist items", favorites.Len(), watchlist.Len())

	// Initialize services
	omdbService := services.NewOMDBService(services.OMDBConfig{
		APIKey:  cfg.OMDB.APIKey,
		BaseURL: cfg.OMDB.BaseURL,
		Timeout: cfg.OMDB.Timeout,
	})

	sess := session.New(baseCtx, omdbService, favorites, watchlist, session.Config{
		BootstrapQuery: cfg.Search.BootstrapQuery,
		Locale:         cfg.Search.Locale,
	}, logger)

	// The landing query failing leaves the session in its failed state for retry
	if err := sess.Bootstrap(baseCtx); err != nil {
		logger.Printf("Bootstrap search %q failed: %v", cfg.Search.BootstrapQuery, err)
	}

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(sess, logger)
	collectionHandler := handlers.NewCollectionHandler(sess, logger)
	selectionHandler := handlers.NewSelectionHandler(sess, logger)
	viewHandler := handlers.NewViewHandler(sess)

	// Rate limiting is optional and needs Redis
	limit := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(redisClient.Client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, logger)
		limit = rateLimiter.Limit
	}

	// Set up HTTP router
	mux := http.NewServeMux()

	// Search routes
	mux.Handle("GET /api/state", limit(http.HandlerFunc(searchHandler.State)))
	mux.Handle("POST /api/search", limit(http.HandlerFunc(searchHandler.Submit)))
	mux.Handle("POST /api/search/more", limit(http.HandlerFunc(searchHandler.LoadMore)))
	mux.Handle("POST /api/search/retry", limit(http.HandlerFunc(searchHandler.Retry)))
	mux.Handle("GET /api/results", limit(http.HandlerFunc(searchHandler.Results)))
	mux.Handle("GET /api/featured", limit(http.HandlerFunc(searchHandler.Featured)))

	// View settings routes
	mux.Handle("GET /api/view", limit(http.HandlerFunc(viewHandler.Get)))
	mux.Handle("PATCH /api/view", limit(http.HandlerFunc(viewHandler.Update)))

	// Collection routes
	mux.Handle("GET /api/collections/{name}", limit(http.HandlerFunc(collectionHandler.Get)))
	mux.Handle("POST /api/collections/{name}/toggle", limit(http.HandlerFunc(collectionHandler.Toggle)))
	mux.Handle("POST /api/collections/{name}/secondary/toggle", limit(http.HandlerFunc(collectionHandler.ToggleSecondary)))
	mux.Handle("DELETE /api/collections/{name}", limit(http.HandlerFunc(collectionHandler.Clear)))

	// Selection routes
	mux.Handle("POST /api/selection", limit(http.HandlerFunc(selectionHandler.Select)))
	mux.Handle("GET /api/selection", limit(http.HandlerFunc(selectionHandler.Get)))
	mux.Handle("DELETE /api/selection", limit(http.HandlerFunc(selectionHandler.Close)))

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		storageStatus := "up"
		redisStatus := "disabled"
		healthy := true

		if err := backend.Health(r.Context()); err != nil {
			storageStatus = "down"
			healthy = false
		}
		if redisClient != nil {
			redisStatus = "up"
			if err := redisClient.Health(r.Context()); err != nil {
				redisStatus = "down"
				healthy = false
			}
		}

		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","storage":"%s","redis":"%s"}`, storageStatus, redisStatus)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","storage":"%s","redis":"%s"}`, storageStatus, redisStatus)
	})

	// Wrap with logging middleware
	handler := middleware.Logger(logger)(mux)

	// Create HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OMDB.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("Server forced to shutdown: %v", err)
	}

	// Stop any in-flight detail fetch before closing storage
	cancelBase()
	sess.Wait()

	logger.Println("Server exited")
}

// newLogger creates the application logger, tee'd to a rotating file when LOG_FILE is set
func newLogger(cfg config.LogConfig) *log.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
		})
	}
	return log.New(out, "[moviefinder] ", log.LstdFlags|log.Lshortfile)
}

// openStorage opens the configured collection backend and returns a func that releases it
func openStorage(ctx context.Context, cfg *config.Config, redisClient *database.RedisClient, logger *log.Logger) (storage.Storage, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewSQLStorage(db), func() { db.Close() }, nil

	case config.DriverRedis:
		return storage.NewRedisStorage(redisClient), func() {}, nil

	case config.DriverPostgres:
		db, err := database.New(ctx, database.Config{URL: cfg.Database.URL}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.NewMigrator(db.Pool, logger).Up(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return storage.NewPostgresStorage(db), db.Close, nil

	default:
		fs, err := storage.NewFileStorage(afero.NewOsFs(), cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	}
}

// runMigrations runs database migrations
func runMigrations() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		log.Fatalf("Migrations only apply to the postgres storage driver, got %q", cfg.Storage.Driver)
	}

	logger := newLogger(cfg.Log)
	ctx := context.Background()

	db, err := database.New(ctx, database.Config{
		URL: cfg.Database.URL,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db.Pool, logger)

	if len(os.Args) > 2 && os.Args[2] == "down" {
		if err := migrator.Down(ctx); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
		log.Println("Migrations rolled back successfully")
		return
	}

	if err := migrator.Up(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")
}
