package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/sheet-omr/internal/config"
	"github.com/ironsheep/sheet-omr/internal/detection"
	"github.com/ironsheep/sheet-omr/internal/logger"
	"github.com/ironsheep/sheet-omr/internal/scanner"
	"github.com/ironsheep/sheet-omr/internal/server"
	"github.com/ironsheep/sheet-omr/internal/templates"
	"github.com/ironsheep/sheet-omr/internal/transport"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("sheet-omr - recognise notes on single-stave sheet music")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sheet-omr scan <image>        Print the recognised notes as JSON and annotate the image")
	fmt.Println("  sheet-omr preprocess <image>  Binarize the image in place and print its path")
	fmt.Println("  sheet-omr mcp                 Serve MCP tools over stdin/stdout")
	fmt.Println("  sheet-omr http                Serve the HTTP API")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables (also read from .env):")
	fmt.Println("  SHEET_OMR_LOG_LEVEL=debug            Enable debug logging")
	fmt.Println("  SHEET_OMR_MATCH_THRESHOLD=0.55       Minimum match score")
	fmt.Println("  SHEET_OMR_PITCH_CORRECTION=0.3       Row correction in pixels")
	fmt.Println("  SHEET_OMR_NOTE_ORDER=row             row or column")
	fmt.Println("  SHEET_OMR_ANNOTATE=true              Write the annotated page back")
	fmt.Println("  SHEET_OMR_TEMPLATE_SOURCE=embedded   embedded, dir or azure")
	fmt.Println("  SHEET_OMR_PORT=8080                  HTTP port")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("sheet-omr %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  Backend:    %s\n", detection.InitBackend().Name)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	config.LoadDotEnv()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	lib, err := templates.NewLibraryFromConfig(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up template library")
	}
	sc := scanner.New(lib, scanner.OptionsFromConfig(cfg))

	logger.WithFields(logrus.Fields{
		"version":         Version,
		"command":         os.Args[1],
		"template_source": cfg.TemplateSource,
		"templates":       len(lib.Catalog()),
	}).Debug("Starting sheet-omr")

	switch os.Args[1] {
	case "scan":
		runScan(sc, cfg, pathArg())
	case "preprocess":
		out, err := sc.Preprocess(pathArg())
		if err != nil {
			logger.WithError(err).Fatal("Preprocessing failed")
		}
		fmt.Println(out)
	case "mcp":
		server.Version = Version
		if err := server.New(sc).Run(); err != nil {
			logger.WithError(err).Fatal("Server error")
		}
	case "http":
		transport.Version = Version
		runHTTP(sc, cfg)
	default:
		usage()
		os.Exit(2)
	}
}

func pathArg() string {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "%s requires an image path\n", os.Args[1])
		os.Exit(2)
	}
	return os.Args[2]
}

func runScan(sc *scanner.Scanner, cfg *config.Config, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	res, err := sc.Scan(ctx, path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Fatal("Scan failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.WithError(err).Fatal("Failed to write result")
	}
}

func runHTTP(sc *scanner.Scanner, cfg *config.Config) {
	srv := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      transport.NewHandler(sc, cfg),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"address": cfg.ServerAddress(),
			"timeout": cfg.RequestTimeout,
		}).Info("Starting HTTP server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
