package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AppLauncher/backend/internal/infrastructure/server"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	port := flag.String("port", "", "Server port")
	host := flag.String("host", "", "Server host")
	dbPath := flag.String("db", "", "SQLite database path")
	seedDir := flag.String("seed", "", "Directory of apps installed on startup")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *seedDir != "" {
		cfg.Storage.SeedDir = *seedDir
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if cfg.Storage.SeedDir != "" {
		if _, err := srv.Seed(context.Background(), cfg.Storage.SeedDir); err != nil {
			log.Printf("Failed to seed apps: %v", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// loadConfig reads the environment, or the file at path when given
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
