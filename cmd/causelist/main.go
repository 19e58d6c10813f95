package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/courtdesk/causelist/internal/cli"
	"github.com/courtdesk/causelist/internal/client"
	"github.com/courtdesk/causelist/internal/config"
	"github.com/courtdesk/causelist/internal/controller"
)

func main() {
	cfg := *config.GetConfig()
	logger := config.GetLogger()

	api := flag.String("api", cfg.APIBaseURL, "base URL of the cause-list API")
	saveDir := flag.String("out", ".", "folder downloaded PDFs are saved to")
	flag.Parse()

	cfg.APIBaseURL = *api
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:5000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(&cfg)
	app := cli.NewApp(controller.New(c), c, cli.NewSurveyPrompter(), os.Stdout, *saveDir)

	logger.Debug().Str("api", cfg.APIBaseURL).Msg("Starting interactive session")
	if err := app.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Session failed")
	}
}
