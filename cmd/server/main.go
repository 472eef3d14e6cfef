package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/filepanel/backend/internal/api"
	"github.com/filepanel/backend/internal/config"
	"github.com/filepanel/backend/internal/convert"
	"github.com/filepanel/backend/internal/history"
	"github.com/filepanel/backend/internal/imaging"
	"github.com/filepanel/backend/internal/jobs"
	"github.com/filepanel/backend/internal/storage"
	"github.com/filepanel/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "FilePanel.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize activity log
	activityLog, err := history.NewLog(
		filepath.Join(cfg.GetDataDir(), "activity.duckdb"),
		cfg.Advanced.ActivityRetention,
	)
	if err != nil {
		fmt.Printf("Failed to initialize activity log: %v\n", err)
		os.Exit(1)
	}
	defer activityLog.Close()

	// Load conversion profiles
	profiles, err := convert.LoadProfiles(cfg.Processing.ConversionProfiles)
	if err != nil {
		fmt.Printf("Warning: failed to load conversion profiles: %v\n", err)
		profiles = convert.DefaultProfiles()
	}

	imagingOpts := imaging.Options{
		MaxDimension: cfg.Processing.ImageMaxDimension,
		Quality:      cfg.Processing.JPEGQuality,
	}

	// Initialize batch job manager
	registry := convert.GetGlobalRegistry()
	jobMgr := jobs.NewManager(fileStore, registry, activityLog, jobs.Options{
		MaxWorkers: cfg.Processing.MaxConcurrentJobs,
		Imaging:    imagingOpts,
	})

	// Background cleanup of finished jobs and old activity rows
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			jobMgr.CleanupOldJobs(time.Duration(cfg.Processing.JobMaxAgeMinutes) * time.Minute)
			if err := activityLog.Prune(context.Background()); err != nil {
				fmt.Printf("Warning: activity prune failed: %v\n", err)
			}
		}
	}()

	handlers := api.NewHandlers(&api.Dependencies{
		Store:             fileStore,
		Registry:          registry,
		Profiles:          profiles,
		JobManager:        jobMgr,
		Activity:          activityLog,
		Imaging:           imagingOpts,
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
		Version:           Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/jobs/") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	// Compression middleware
	if cfg.Processing.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Processing.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.Contains(c.Request().URL.Path, "/ws/")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers, cfg.Security.AllowFileDeletion)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	fmt.Printf("File Panel %s (built %s)\n", Version, BuildTime)
	fmt.Printf("Config:   %s\n", configPath)
	fmt.Printf("Data dir: %s\n", cfg.GetDataDir())
	fmt.Printf("Listen:   http://%s\n", cfg.GetServerAddr())

	e.Logger.Fatal(e.StartServer(s))
}
