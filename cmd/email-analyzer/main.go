package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mailrisk/analyzer/internal/di"
	"github.com/mailrisk/analyzer/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	gateways []ports.EmailGateway,
) error {
	defer logger.Sync()

	// Start every configured gateway
	for _, gw := range gateways {
		if err := gw.Start(); err != nil {
			logger.Fatal("Failed to start gateway", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	for _, gw := range gateways {
		if err := gw.Stop(); err != nil {
			logger.Error("Failed to stop gateway", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
