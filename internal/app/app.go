package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"contrib.go.opencensus.io/integrations/ocsql"

	"github.com/listingdeck/listingdeck/config"
	"github.com/listingdeck/listingdeck/internal/database"
	"github.com/listingdeck/listingdeck/internal/domain"
	httpHandler "github.com/listingdeck/listingdeck/internal/http"
	"github.com/listingdeck/listingdeck/internal/http/middleware"
	"github.com/listingdeck/listingdeck/internal/repository"
	"github.com/listingdeck/listingdeck/internal/service"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/cache"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/rasterpdf"
	"github.com/listingdeck/listingdeck/pkg/storage"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

// AppInterface defines the interface for the App
type AppInterface interface {
	Initialize() error
	Start() error
	Shutdown(ctx context.Context) error

	// Getters for app components accessed in tests
	GetConfig() *config.Config
	GetLogger() logger.Logger
	GetMux() *http.ServeMux
	GetDB() *sql.DB
	GetBrochureService() domain.BrochureService

	// Server status methods
	IsServerCreated() bool
	WaitForServerStart(ctx context.Context) bool

	// Methods for initialization steps
	InitTracing() error
	InitDB() error
	InitRepositories() error
	InitServices() error
	InitHandlers() error

	// Graceful shutdown methods
	SetShutdownTimeout(timeout time.Duration)
	GetActiveRequestCount() int64
	GetShutdownContext() context.Context
}

// App encapsulates the application dependencies and configuration
type App struct {
	config    *config.Config
	logger    logger.Logger
	db        *sql.DB
	exporters *tracing.Exporters
	stopStats func()

	// Repositories
	agencyRepo   domain.AgencyRepository
	propertyRepo domain.PropertyRepository
	agentRepo    domain.AgentRepository

	// Rendering
	urlResolver  domain.ImageURLResolver
	urlCache     cache.Cache[string]
	rasterEngine rasterpdf.Engine

	// Services
	brochureService *service.BrochureService

	// HTTP handlers
	mux    *http.ServeMux
	server *http.Server

	// Server synchronization
	serverMu      sync.RWMutex
	serverStarted chan struct{}

	// Graceful shutdown management
	shutdownCtx     context.Context
	shutdownCancel  context.CancelFunc
	activeRequests  int64          // atomic counter for active HTTP requests
	requestWg       sync.WaitGroup // wait group for active requests
	shutdownTimeout time.Duration
}

// AppOption defines a functional option for configuring the App
type AppOption func(*App)

// WithMockDB configures the app to use a mock database
func WithMockDB(db *sql.DB) AppOption {
	return func(a *App) {
		a.db = db
	}
}

// WithLogger sets a custom logger
func WithLogger(logger logger.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRasterEngine replaces the headless browser used for custom pages
func WithRasterEngine(engine rasterpdf.Engine) AppOption {
	return func(a *App) {
		a.rasterEngine = engine
	}
}

// WithURLResolver replaces the object storage URL resolver
func WithURLResolver(resolver domain.ImageURLResolver) AppOption {
	return func(a *App) {
		a.urlResolver = resolver
	}
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, opts ...AppOption) AppInterface {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	app := &App{
		config:          cfg,
		logger:          logger.NewLoggerWithLevel(cfg.LogLevel),
		mux:             http.NewServeMux(),
		serverStarted:   make(chan struct{}),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
		shutdownTimeout: shutdownTimeout,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// InitTracing initializes OpenCensus tracing and metrics exporters
func (a *App) InitTracing() error {
	exporters, err := tracing.InitTracing(&a.config.Tracing, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.exporters = exporters
	return nil
}

// InitDB connects to the database and creates the tables when missing.
// A database set through WithMockDB is used as is.
func (a *App) InitDB() error {
	if a.db != nil {
		return nil
	}

	cfg := &a.config.Database
	a.logger.WithFields(map[string]interface{}{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"user":    cfg.User,
		"dbname":  cfg.DBName,
		"sslmode": cfg.SSLMode,
	}).Info("Connecting to database")

	if err := database.EnsureDatabaseExists(cfg); err != nil {
		a.logger.WithField("error", err.Error()).Error("Database check failed")
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}

	db, err := database.Open(cfg, a.config.Tracing.Enabled)
	if err != nil {
		return err
	}
	if a.config.Tracing.Enabled {
		a.stopStats = ocsql.RecordStats(db, 5*time.Second)
		a.logger.Info("Database driver wrapped with OpenCensus tracing")
	}

	if err := database.InitializeDatabase(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a.db = db
	return nil
}

// InitRepositories initializes all repositories
func (a *App) InitRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database is not initialized")
	}

	a.agencyRepo = repository.NewAgencyRepository(a.db)
	a.propertyRepo = repository.NewPropertyRepository(a.db)
	a.agentRepo = repository.NewAgentRepository(a.db)
	return nil
}

// InitServices wires the rendering pipeline and the brochure service
func (a *App) InitServices() error {
	renderCfg := a.config.Render

	if a.urlResolver == nil && a.config.HasStorage() {
		resolver, err := storage.NewS3URLResolver(a.config.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage URL resolver: %w", err)
		}
		a.urlResolver = resolver
	}
	if a.urlResolver == nil {
		a.logger.Warn("No object storage configured, only absolute image URLs are rendered")
	}

	a.urlCache = cache.NewInMemoryCache[string](time.Minute)
	images := service.NewImageResolver(a.urlResolver, a.urlCache, service.ImageResolverConfig{
		Concurrency: renderCfg.ImageConcurrency,
		Placeholder: renderCfg.PlaceholderImage,
		CacheTTL:    a.config.Storage.PresignTTL / 2,
	}, a.logger)

	vector := service.NewVectorRenderer(service.NewHTTPImageFetcher(nil), vectorOptions(renderCfg), a.logger)

	if a.rasterEngine == nil {
		opts := rasterpdf.DefaultOptions()
		opts.ChromePath = renderCfg.ChromePath
		if renderCfg.Timeout > 0 {
			opts.Timeout = renderCfg.Timeout
		}
		a.rasterEngine = rasterpdf.NewChromeEngine(opts, a.logger)
	}
	raster := service.NewRasterRenderer(a.rasterEngine, images, blocktree.NewSecureLiquidEngine(), a.logger)

	a.brochureService = service.NewBrochureService(
		a.logger,
		a.agencyRepo,
		a.propertyRepo,
		a.agentRepo,
		service.NewDocumentRenderer(vector, raster, images, a.logger),
		raster,
		renderCfg.Timeout,
	)
	return nil
}

// InitHandlers registers the HTTP routes
func (a *App) InitHandlers() error {
	// Create a new ServeMux to avoid route conflicts on restart
	a.mux = http.NewServeMux()

	var openCensusMetrics http.Handler
	if a.exporters != nil {
		openCensusMetrics = a.exporters.MetricsHandler
	}

	var pinger httpHandler.Pinger
	if a.db != nil {
		pinger = a.db
	}

	httpHandler.NewBrochureHandler(a.brochureService, a.logger).RegisterRoutes(a.mux)
	httpHandler.NewSystemHandler(pinger, a.config.Version, openCensusMetrics, a.logger).RegisterRoutes(a.mux)
	return nil
}

// Handler returns the mux wrapped with the middleware chain
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	// Apply graceful shutdown middleware first (outermost)
	handler = a.gracefulShutdownMiddleware(handler)

	if a.config.Tracing.Enabled {
		handler = middleware.TracingMiddleware(handler)
	}

	return middleware.CORSMiddleware(a.config.Server.CORSOrigins)(handler)
}

// Start starts the HTTP server
func (a *App) Start() error {
	handler := a.Handler()

	addr := fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port)
	a.logger.WithFields(map[string]interface{}{
		"address": addr,
		"tracing": a.config.Tracing.Enabled,
	}).Info("Server starting")

	a.serverMu.Lock()
	if a.serverStarted != nil {
		close(a.serverStarted)
	}
	a.serverStarted = make(chan struct{})

	a.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverStarted := a.serverStarted
	a.serverMu.Unlock()

	// Signal that the server has been created and is about to start
	close(serverStarted)

	if a.config.Server.SSL.Enabled {
		a.logger.WithField("cert_file", a.config.Server.SSL.CertFile).Info("SSL enabled")
		return a.server.ListenAndServeTLS(a.config.Server.SSL.CertFile, a.config.Server.SSL.KeyFile)
	}

	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server. In-flight generations keep
// running until they finish or the shutdown timeout elapses.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Starting graceful shutdown...")

	// Signal shutdown to all components
	a.shutdownCancel()

	a.serverMu.RLock()
	server := a.server
	a.serverMu.RUnlock()

	if server == nil {
		a.logger.Info("No server to shutdown")
		return a.cleanupResources()
	}

	a.logger.WithField("active_requests", a.getActiveRequestCount()).Info("Active requests at shutdown start")

	shutdownTimeout := a.shutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		// Use the provided context deadline if it's sooner than our default timeout
		if remaining := time.Until(deadline); remaining < shutdownTimeout {
			shutdownTimeout = remaining - time.Second
			if shutdownTimeout < 0 {
				shutdownTimeout = 0
			}
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	serverShutdownDone := make(chan error, 1)
	go func() {
		a.logger.WithField("timeout", shutdownTimeout.String()).Info("Starting HTTP server shutdown")
		serverShutdownDone <- server.Shutdown(shutdownCtx)
	}()

	requestsDone := make(chan struct{})
	go func() {
		a.requestWg.Wait()
		close(requestsDone)
	}()

	var shutdownErr error
	select {
	case err := <-serverShutdownDone:
		shutdownErr = err
		a.logger.Info("HTTP server shutdown completed")
	case <-shutdownCtx.Done():
		a.logger.Warn("Shutdown timeout reached")
		shutdownErr = fmt.Errorf("shutdown timeout exceeded")
	}

	if shutdownErr == nil {
		select {
		case <-requestsDone:
		case <-time.After(2 * time.Second):
			if activeCount := a.getActiveRequestCount(); activeCount > 0 {
				a.logger.WithField("active_requests", activeCount).Warn("Some requests still active, proceeding with shutdown")
			}
		}
	}

	if cleanupErr := a.cleanupResources(); cleanupErr != nil {
		a.logger.WithField("error", cleanupErr.Error()).Error("Error during resource cleanup")
		if shutdownErr == nil {
			shutdownErr = cleanupErr
		}
	}

	if shutdownErr != nil {
		a.logger.WithField("error", shutdownErr.Error()).Error("Graceful shutdown completed with errors")
	} else {
		a.logger.Info("Graceful shutdown completed successfully")
	}
	return shutdownErr
}

// cleanupResources closes the database, stops the URL cache and flushes exporters
func (a *App) cleanupResources() error {
	a.logger.Info("Cleaning up resources...")

	if a.urlCache != nil {
		a.urlCache.Stop()
	}
	a.exporters.Flush()

	if a.db != nil {
		if a.stopStats != nil {
			a.stopStats()
		}

		a.logger.Info("Closing database connection")
		if err := a.db.Close(); err != nil {
			a.logger.WithField("error", err.Error()).Error("Error closing database connection")
			return err
		}
	}

	a.logger.Info("Resource cleanup completed")
	return nil
}

// IsServerCreated safely checks if the server has been created
func (a *App) IsServerCreated() bool {
	a.serverMu.RLock()
	defer a.serverMu.RUnlock()
	return a.server != nil
}

// WaitForServerStart waits for the server to be created.
// Returns false if ctx expires first.
func (a *App) WaitForServerStart(ctx context.Context) bool {
	a.serverMu.RLock()
	started := a.serverStarted
	a.serverMu.RUnlock()

	if started == nil {
		a.logger.Error("serverStarted channel is nil - server initialization error")
		<-ctx.Done()
		return false
	}

	select {
	case <-started:
		return a.IsServerCreated()
	case <-ctx.Done():
		return false
	}
}

// Initialize sets up all components of the application
func (a *App) Initialize() error {
	a.logger.WithField("version", a.config.Version).Info("Starting ListingDeck brochure service")

	steps := []func() error{
		a.InitTracing,
		a.InitDB,
		a.InitRepositories,
		a.InitServices,
		a.InitHandlers,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	a.logger.Info("Application successfully initialized")
	return nil
}

// GetConfig returns the app's configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the app's logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the app's HTTP multiplexer
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the app's database connection
func (a *App) GetDB() *sql.DB {
	return a.db
}

// GetBrochureService returns the brochure service once InitServices ran
func (a *App) GetBrochureService() domain.BrochureService {
	if a.brochureService == nil {
		return nil
	}
	return a.brochureService
}

func (a *App) incrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, 1)
	a.requestWg.Add(1)
}

func (a *App) decrementActiveRequests() {
	atomic.AddInt64(&a.activeRequests, -1)
	a.requestWg.Done()
}

func (a *App) getActiveRequestCount() int64 {
	return atomic.LoadInt64(&a.activeRequests)
}

// GetActiveRequestCount returns the current number of active requests
func (a *App) GetActiveRequestCount() int64 {
	return a.getActiveRequestCount()
}

// SetShutdownTimeout sets the timeout for graceful shutdown
func (a *App) SetShutdownTimeout(timeout time.Duration) {
	a.shutdownTimeout = timeout
	a.logger.WithField("shutdown_timeout", timeout.String()).Info("Shutdown timeout configured")
}

// GetShutdownContext returns the shutdown context for components that need to watch for shutdown
func (a *App) GetShutdownContext() context.Context {
	return a.shutdownCtx
}

func (a *App) isShuttingDown() bool {
	select {
	case <-a.shutdownCtx.Done():
		return true
	default:
		return false
	}
}

// gracefulShutdownMiddleware tracks active requests and refuses new ones
// once shutdown started
func (a *App) gracefulShutdownMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isShuttingDown() {
			httpHandler.WriteJSONError(w, "Server is shutting down", http.StatusServiceUnavailable)
			return
		}

		a.incrementActiveRequests()
		defer a.decrementActiveRequests()

		next.ServeHTTP(w, r)
	})
}

// Ensure App implements AppInterface
var _ AppInterface = (*App)(nil)

func vectorOptions(cfg config.RenderConfig) service.VectorOptions {
	return service.VectorOptions{
		Concurrency:  cfg.ImageConcurrency,
		StaticMapURL: cfg.StaticMapURL,
		StaticMapKey: cfg.StaticMapKey,
		Currency:     cfg.Currency,
	}
}
