package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dipanalytics/contentbot/core/app"
	"github.com/dipanalytics/contentbot/core/buildinfo"
	coreconfig "github.com/dipanalytics/contentbot/core/config"
	"github.com/dipanalytics/contentbot/core/logger"
	coretelegram "github.com/dipanalytics/contentbot/core/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("contentbot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("contentbot %s (%s) loading config: %s", buildinfo.Version, buildinfo.Commit, cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer application.Close()
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runBot := func(ctx context.Context) error {
		return coretelegram.RunTelegram(ctx, application.TelegramRunOptions())
	}
	var runAdmin func(ctx context.Context) error
	if application.Admin != nil {
		runAdmin = application.Admin.Run
	}

	return runServices(ctx, cancel, runBot, runAdmin)
}

// runServices runs the bot and, when configured, the admin server until either
// fails or ctx is done. A failing admin server cancels the bot rather than
// leaving the process up without its admin surface.
func runServices(ctx context.Context, cancel context.CancelFunc, runBot, runAdmin func(context.Context) error) error {
	adminErr := make(chan error, 1)
	if runAdmin != nil {
		go func() {
			err := runAdmin(ctx)
			if err != nil {
				cancel()
			}
			adminErr <- err
		}()
	}

	botErr := runBot(ctx)

	var aErr error
	if runAdmin != nil {
		cancel()
		aErr = <-adminErr
	}

	if botErr != nil {
		return botErr
	}
	if aErr != nil {
		return fmt.Errorf("admin server: %w", aErr)
	}
	return nil
}
