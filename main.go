package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/extract"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/handlers"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/memory"
	"media-pipeline/internal/middleware"
	"media-pipeline/internal/processor"
	"media-pipeline/internal/queue"
	"media-pipeline/internal/startup"
	"media-pipeline/internal/storage"
	"media-pipeline/internal/worker"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Configure GOMEMLIMIT before anything allocates in earnest
	startup.LogMemoryConfig(memory.ConfigureFromEnv())

	// Label filesystem retry metrics with the configured mounts
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
		"storage":  config.StorageRoot,
		"staging":  config.StagingDir,
		"queue":    config.QueueDir,
		"database": config.DatabaseDir,
	}))

	// Initialize asset store
	dbStart := time.Now()
	store, err := assets.NewStore(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize asset store: %v", err)
	}
	defer store.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize the primary storage repository
	manager := storage.NewManager()
	repo, err := startup.InitPrimaryStorage(manager, config.StorageRoot, config.PrimaryStoragePath, config.Storage)
	if err != nil {
		startup.LogFatal("Failed to initialize storage repository: %v", err)
	}

	staging, err := storage.NewStagingArea(config.StagingDir)
	if err != nil {
		startup.LogFatal("Failed to initialize staging area: %v", err)
	}

	// Initialize the durable task queue and recover pending work
	tq, err := queue.New(config.QueueDir, config.QueueBuffer)
	if err != nil {
		startup.LogFatal("Failed to create task queue: %v", err)
	}
	if err := tq.Initialize(); err != nil {
		startup.LogFatal("Failed to initialize task queue: %v", err)
	}
	defer tq.Close()
	startup.LogQueueInit(config.QueueDir, tq.Depth())

	// Initialize metadata extractor
	startup.LogExtractorInit()
	extractor := extract.NewExtractor(extract.DefaultConfig())
	defer extractor.Close()

	// Memory monitor pauses workers under pressure
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	thumbnailRoot := ""
	if config.ThumbnailsEnabled {
		thumbnailRoot = config.ThumbnailDir
	}

	proc, err := processor.New(processor.Config{
		Assets:        store,
		Manager:       manager,
		Staging:       staging,
		Extractor:     extractor,
		RepositoryID:  repo.ID,
		ThumbnailRoot: thumbnailRoot,
	})
	if err != nil {
		startup.LogFatal("Failed to create asset processor: %v", err)
	}

	pool, err := worker.NewPool(tq, proc, store, staging, monitor, config.Workers)
	if err != nil {
		startup.LogFatal("Failed to create worker pool: %v", err)
	}
	pool.Start()
	startup.LogWorkersStarted(pool.Size())

	// Initialize handlers
	h := handlers.New(handlers.Config{
		Queue:          tq,
		Staging:        staging,
		Assets:         store,
		Manager:        manager,
		RepositoryID:   repo.ID,
		RepositoryPath: repo.Path,
		MaxUploadBytes: config.Storage.Options.MaxFileSize,
	})

	// Setup router
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	handler := http.Handler(router)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Apply compression middleware
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics are served on their own port so the registry is never
	// exposed through the application listener.
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", handlers.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, pool, tq, monitor)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.Version).Methods("GET")

	// Ingestion API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", h.Upload).Methods("POST")
	api.HandleFunc("/scan", h.TriggerScan).Methods("POST")
	api.HandleFunc("/assets", h.ListAssets).Methods("GET")
	api.HandleFunc("/assets/{id}", h.GetAsset).Methods("GET")
	api.HandleFunc("/assets/{id}/thumbnails", h.GetAssetThumbnails).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, pool *worker.Pool, tq *queue.TaskQueue, monitor *memory.Monitor) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the HTTP intake first so no new tasks arrive while workers drain
	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	// The monitor stops before the pool: workers parked behind the
	// memory gate only wake when it resumes or shuts down.
	startup.LogShutdownStep("Stopping memory monitor")
	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	startup.LogShutdownStep("Stopping worker pool")
	pool.Stop()
	startup.LogShutdownStepComplete("Worker pool stopped")

	startup.LogShutdownStep("Closing task queue")
	tq.Close()
	startup.LogShutdownStepComplete("Task queue closed")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
