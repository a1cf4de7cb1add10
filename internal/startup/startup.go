package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"media-pipeline/internal/extract"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/memory"
	"media-pipeline/internal/storage"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	StorageRoot string
	QueueDir    string
	StagingDir  string
	DatabaseDir string
	Port        string
	MetricsPort string

	Workers     int
	QueueBuffer int

	LogHealthChecks bool
	MetricsEnabled  bool

	Storage storage.Config

	// Derived paths
	DatabasePath       string
	ThumbnailDir       string
	PrimaryStoragePath string

	// Feature flags based on directory availability
	ThumbnailsEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	storageConfig := storage.LoadConfigFromEnv()
	// STORAGE_PATH is the canonical storage root; STORAGE_DIR remains as
	// an alias for older deployments.
	if dir := os.Getenv("STORAGE_DIR"); dir != "" && os.Getenv("STORAGE_PATH") == "" {
		storageConfig.BasePath = dir
	}
	storageRoot := storageConfig.BasePath
	queueDir := getEnv("QUEUE_DIR", "/queue")
	stagingDir := getEnv("STAGING_DIR", "/staging")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	cacheDir := getEnv("CACHE_DIR", "/cache")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	workerCount := getEnvInt("WORKERS", 0)
	queueBuffer := getEnvInt("QUEUE_BUFFER", 1000)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  STORAGE_PATH:        %s", storageRoot)
	logging.Info("  STORAGE_STRATEGY:    %s", storageConfig.Strategy)
	logging.Info("  QUEUE_DIR:           %s", queueDir)
	logging.Info("  STAGING_DIR:         %s", stagingDir)
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  CACHE_DIR:           %s", cacheDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  WORKERS:             %s", workerCountString(workerCount))
	logging.Info("  QUEUE_BUFFER:        %d", queueBuffer)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if err := storageConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	storageRoot, primaryPath, err := ResolvePrimaryStoragePaths(storageRoot)
	if err != nil {
		return nil, err
	}
	storageConfig.BasePath = storageRoot
	logging.Info("  Storage root (absolute): %s", storageRoot)
	logging.Info("  Primary repository:      %s", primaryPath)

	queueDir, err = filepath.Abs(queueDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve queue directory path: %w", err)
	}
	stagingDir, err = filepath.Abs(stagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staging directory path: %w", err)
	}
	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory path: %w", err)
	}

	config := &Config{
		StorageRoot:        storageRoot,
		QueueDir:           queueDir,
		StagingDir:         stagingDir,
		DatabaseDir:        databaseDir,
		Port:               port,
		MetricsPort:        metricsPort,
		Workers:            workerCount,
		QueueBuffer:        queueBuffer,
		LogHealthChecks:    logHealthChecks,
		MetricsEnabled:     metricsEnabled,
		Storage:            storageConfig,
		DatabasePath:       filepath.Join(databaseDir, "pipeline.db"),
		ThumbnailDir:       filepath.Join(cacheDir, "thumbnails"),
		PrimaryStoragePath: primaryPath,
	}

	// Required directories: the pipeline cannot run without them.
	for _, dir := range []struct{ path, name string }{
		{storageRoot, "storage"},
		{queueDir, "queue"},
		{stagingDir, "staging"},
		{databaseDir, "database"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory error: %w", dir.name, err)
		}
		if err := testWriteAccess(dir.path); err != nil {
			return nil, fmt.Errorf("%s directory is not writable: %w", dir.name, err)
		}
		logging.Info("  [OK] %s directory is writable", dir.name)
	}

	// Thumbnail directory (optional)
	config.ThumbnailsEnabled = setupOptionalDir(config.ThumbnailDir, "thumbnails")

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:    ENABLED (required)")
	logging.Info("    Thumbnails:  %s", enabledString(config.ThumbnailsEnabled))
	logging.Info("    Metrics:     %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// ResolvePrimaryStoragePaths normalizes the storage root and derives the
// primary repository path under it.
func ResolvePrimaryStoragePaths(storageRoot string) (root, primary string, err error) {
	root = filepath.Clean(strings.TrimSpace(storageRoot))
	if root == "" || root == "." {
		return "", "", fmt.Errorf("storage root cannot be empty")
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve storage root path: %w", err)
	}
	return root, filepath.Join(root, "primary"), nil
}

// InitPrimaryStorage registers the primary repository with the manager,
// creating it on first run. A repository marker directly at the storage
// root means the layout predates the primary/ subdirectory; that needs a
// manual migration, not a silent re-initialization.
func InitPrimaryStorage(manager *storage.Manager, root, primary string, cfg storage.Config) (*storage.Repository, error) {
	if storage.IsRepositoryRoot(root) {
		return nil, fmt.Errorf("storage root %s holds a repository marker: %w", root, storage.ErrLegacyRepository)
	}

	if storage.IsRepositoryRoot(primary) {
		if repo, err := manager.GetRepositoryByPath(primary); err == nil {
			return repo, nil
		}
		repo, err := manager.AddRepository(primary)
		if err != nil {
			return nil, fmt.Errorf("failed to register primary repository: %w", err)
		}
		logging.Info("  [OK] Registered existing primary repository %s", repo.ID)
		return repo, nil
	}

	repoConfig := storage.NewRepositoryConfig("primary",
		storage.WithStorageStrategy(cfg.Strategy),
		storage.WithLocalSettings(cfg.Options.PreserveOriginalFilename, cfg.Options.HandleDuplicateFilenames, cfg.Options.MaxFileSize),
	)
	repo, err := manager.InitializeRepository(primary, repoConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize primary repository: %w", err)
	}
	logging.Info("  [OK] Initialized primary repository %s", repo.ID)
	return repo, nil
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
		// Still return true since write succeeded
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func workerCountString(count int) string {
	if count <= 0 {
		return "auto"
	}
	return strconv.Itoa(count)
}

// LogMemoryConfig logs the GOMEMLIMIT configuration outcome
func LogMemoryConfig(result memory.ConfigResult) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("MEMORY CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	switch result.Source {
	case "GOMEMLIMIT":
		logging.Info("  [OK] GOMEMLIMIT set explicitly: %d bytes", result.GoMemLimit)
	case "MEMORY_LIMIT":
		logging.Info("  [OK] GOMEMLIMIT derived from container limit")
		logging.Info("    Container limit: %d bytes", result.ContainerLimit)
		logging.Info("    Go heap limit:   %d bytes (ratio %.2f)", result.GoMemLimit, result.Ratio)
	default:
		logging.Info("  No memory limit configured (set MEMORY_LIMIT or GOMEMLIMIT)")
	}
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogExtractorInit logs metadata extractor initialization and checks for
// the extraction tool.
func LogExtractorInit() {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTRACTOR INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if err := extract.ValidateExifToolInstallation(); err != nil {
		logging.Warn("  Extraction tool check failed: %v", err)
		logging.Warn("  Assets will be stored without metadata")
		return
	}

	if version, err := extract.ExifToolVersion(); err == nil {
		logging.Info("  [OK] exiftool %s is available", version)
	} else {
		logging.Info("  [OK] exiftool is available")
	}
}

// LogQueueInit logs task queue initialization
func LogQueueInit(queueDir string, recovered int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("QUEUE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Queue directory: %s", queueDir)
	if recovered > 0 {
		logging.Info("  Recovered %d pending tasks from previous run", recovered)
	}
	logging.Info("  [OK] Queue ready")
}

// LogWorkersStarted logs worker pool start
func LogWorkersStarted(count int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("WORKER POOL")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Started %d workers", count)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g., static file server)
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		// Sort group keys
		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		// Print routes by group
		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	// Remove leading slash
	path = strings.TrimPrefix(path, "/")

	// Get first segment
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	// Special handling for API routes
	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Local access:")
	logging.Info("    Application:   http://localhost:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", config.MetricsPort)
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___      ____  _            ___
   /  |/  /__  ____/ (_)__ _/ _  \(_)__  ___   / (_)__  ___
  / /|_/ / _ \/ __  / / __ '/ ___/ / _ \/ _ \ / / / _ \/ _ \
 / /  / /  __/ /_/ / / /_/ / /  / / /_/ /  __/ / / / / /  __/
/_/  /_/\___/\__,_/_/\__,_/_/  /_/ .___/\___/_/_/_/ /_/\___/
                                /_/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
