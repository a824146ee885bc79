package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	httpClient := http.DefaultClient
	detector := services.NewDetectService(config.Service, nil, logger)
	notifier := services.NewNotifyService(config.Notification, httpClient, logger)
	auth := services.NewAuthService(config.Service.BaseURL, httpClient)

	runner := NewRunner(RunnerConfig{
		Config:     config,
		Detector:   detector,
		Notifier:   notifier,
		Auth:       auth,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "ppectl",
		Usage:    "Submit workplace media for PPE detection",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
