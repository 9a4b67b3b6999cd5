package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judge/internal/config"
	"github.com/coderunr/judge/internal/executor"
	"github.com/coderunr/judge/internal/handler"
	"github.com/coderunr/judge/internal/middleware"
	"github.com/coderunr/judge/internal/runtime"
	"github.com/coderunr/judge/internal/sandbox"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Set up logging
	logger := logrus.StandardLogger()
	logger.SetLevel(cfg.GetLogLevel())
	logger.SetFormatter(cfg.GetFormatter())

	logger.Info("Starting judge server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtimes := runtime.NewManager(cfg.GetToolchains())
	for _, rt := range runtimes.Probe(ctx) {
		entry := logger.WithFields(logrus.Fields{"language": rt.Language, "version": rt.Version})
		if rt.Available {
			entry.Info("Runtime available")
		} else {
			entry.WithField("reason", rt.Error).Warn("Runtime unavailable")
		}
	}

	workspaces, err := sandbox.NewManager(cfg.WorkspaceRoot)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create workspace root")
	}

	exec, err := newExecutor(cfg, workspaces, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize executor")
	}

	// Sweep workspaces left behind by crashed runs
	reaper := sandbox.NewReaper(workspaces, cfg.CleanupGrace, cfg.ReapInterval)
	go reaper.Run(ctx)

	h := handler.NewHandler(exec, runtimes, logger)

	server := &http.Server{
		Addr:    cfg.GetBindAddress(),
		Handler: newRouter(cfg, h, logger),
		// Security settings
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Judge server starting on %s", cfg.GetBindAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Info("Server exited")
}

// newExecutor wires the sandbox and toolchains into an executor
func newExecutor(cfg *config.Config, workspaces *sandbox.Manager, logger *logrus.Logger) (*executor.Executor, error) {
	registry, err := executor.NewRegistry(runtime.Merge(runtime.Defaults(), cfg.GetToolchains()))
	if err != nil {
		return nil, err
	}

	return executor.New(executor.Options{
		Registry:       registry,
		Workspaces:     workspaces,
		Runner:         sandbox.NewRunner(cfg.OutputMaxSize),
		DefaultTimeout: cfg.DefaultTimeout,
		CompileTimeout: cfg.CompileTimeout,
		Logger:         logger.WithField("component", "executor"),
	}), nil
}

// executeTimeout covers a compile plus the longest run a client may request
func executeTimeout(cfg *config.Config) time.Duration {
	run := handler.MaxTimeout
	if cfg.DefaultTimeout > run {
		run = cfg.DefaultTimeout
	}
	return cfg.CompileTimeout + run + 5*time.Second
}

// newRouter mounts the API on a chi router
func newRouter(cfg *config.Config, h *handler.Handler, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.BodyLimit(cfg.RequestBodyLimit))

	// One token pool shared by HTTP jobs and websocket sessions
	throttle := chiMiddleware.Throttle(cfg.MaxConcurrentJobs)

	r.Route("/api/v2", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.JSON)
			r.Use(throttle)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(executeTimeout(cfg)))
				r.Post("/execute", h.Execute)
			})
			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(10 * time.Minute))
				r.Post("/validate", h.Validate)
			})
		})

		// WebSocket route (no JSON middleware)
		r.With(throttle).HandleFunc("/connect", h.HandleWebSocket)

		r.Get("/runtimes", h.GetRuntimes)
	})

	r.Get("/", h.GetVersion)
	r.Get("/health", h.Health)

	return r
}
