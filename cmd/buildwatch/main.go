package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"buildwatch/internal/api"
	"buildwatch/internal/config"
	"buildwatch/internal/engine/jenkins"
	"buildwatch/internal/logger"
	"buildwatch/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerLevel := config.GetLogLevel()
	logger.Init(loggerLevel)
	logger.Info("Starting buildwatch service", "log_level", loggerLevel)

	if err := storage.Init(cfg.Database.Path); err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	jenkinsClient := jenkins.NewClient(cfg.Jenkins)
	ciEngine := jenkins.NewEngine(jenkinsClient)

	router := api.NewRouter(*cfg, ciEngine)

	port := cfg.Server.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil && p > 0 {
			port = p
		}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, port),
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// 30 seconds gives in-flight aggregation calls time to finish
	shutdownTimeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err, "timeout", shutdownTimeout.String())
	} else {
		logger.Info("Server shutdown gracefully")
	}

	if err := storage.Close(); err != nil {
		logger.Error("Failed to close database connection", "error", err)
	}

	logger.Info("Server stopped")
}
