package app

import (
	"context"
	"fmt"
	"log/slog"

	"updatescout/internal/config"
	"updatescout/internal/domain"
	"updatescout/internal/extract"
	"updatescout/internal/infrastructure/catalog"
	"updatescout/internal/infrastructure/scheduler"
	"updatescout/internal/infrastructure/support"
	"updatescout/internal/infrastructure/telegram"
	"updatescout/internal/logging"
	"updatescout/internal/ports"
	"updatescout/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	profile  domain.VersionProfile
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. The configured query is
// validated here, before any network call.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	profile, err := cfg.Query.ResolveProfile()
	if err != nil {
		return nil, fmt.Errorf("resolve version profile: %w", err)
	}

	locator := support.NewLocator(nil, baseLogger.With("component", "support"))
	catalogClient := catalog.NewClient(cfg.Catalog, nil, baseLogger.With("component", "catalog"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Locator:   locator,
		Catalog:   catalogClient,
		Extractor: extract.ForEnvironment(cfg.Catalog.UseOuterMarkup),
		Notifier:  notifier,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, profile: profile, pipeline: pipeline}, nil
}

// Run executes one resolution, or keeps resolving on the configured cron
// schedule until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.CronExpression == "" {
		result, err := a.pipeline.LatestUpdate(ctx, a.profile)
		if err != nil {
			return err
		}
		for _, d := range result.Downloads {
			fmt.Printf("%s\t%s\t%s\n", d.KB, d.Note, d.URL)
		}
		return nil
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.pipeline, a.profile)
	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}
