// Package api wires configuration, storage, GitHub access and the finder services into one
// value the CLI commands share.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/achievement"
	"github.com/thep200/oss-finder/internal/analytics"
	"github.com/thep200/oss-finder/internal/catalog"
	"github.com/thep200/oss-finder/internal/crawler"
	githubapi "github.com/thep200/oss-finder/internal/github_api"
	"github.com/thep200/oss-finder/internal/preference"
	"github.com/thep200/oss-finder/internal/search"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/internal/submission"
	"github.com/thep200/oss-finder/internal/ui"
	"github.com/thep200/oss-finder/pkg/kafka"
	"github.com/thep200/oss-finder/pkg/log"
)

// Options select how FinderAPI loads its configuration.
type Options struct {
	ConfigPath string
	// Mock uses the built-in defaults instead of reading a file.
	Mock bool
	// Watch reloads the config file when it changes; long-running commands set it.
	Watch bool
	// LogLevel overrides log.level when not empty.
	LogLevel string
}

// FinderAPI is the composition root.
type FinderAPI struct {
	Config *cfg.Config
	Logger log.Logger
	logger *log.CslLogger

	Store        store.Store
	Github       *githubapi.Caller
	Catalog      *catalog.Catalog
	Preferences  *preference.Service
	Achievements *achievement.Service
	History      *search.History
	Submissions  *submission.Service
	Analytics    *analytics.Engine
	Events       analytics.Sink
}

func NewFinderAPI() *FinderAPI {
	return &FinderAPI{}
}

// Initialize builds every component. On error, whatever was opened is closed again.
func (a *FinderAPI) Initialize(ctx context.Context, opts Options) (err error) {
	config, loader, err := loadConfig(opts)
	if err != nil {
		return err
	}
	a.Config = config

	level := config.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := log.NewCslLogger(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	a.Logger = logger
	if loader != nil {
		loader.RegisterConfigChangeCallback(func(next *cfg.Config) {
			logger.Notice(context.Background(), "[FINDER] Config file changed (storage=%s, kafka=%t); restart to apply", next.Storage.Driver, next.Kafka.Enabled)
		})
	}

	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Store, err = store.FactoryStore(ctx, config, logger.With("store"))
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	a.Github = githubapi.NewCaller(logger.With("github"), config)
	primary, err := crawler.FactoryCrawler(crawler.SourceGithub, logger.With("crawler"), config, a.Github)
	if err != nil {
		return err
	}
	fallback, err := crawler.FactoryCrawler(crawler.SourceFallback, logger.With("crawler"), config, nil)
	if err != nil {
		return err
	}

	a.Catalog = catalog.New(logger.With("catalog"), config, primary, fallback, a.Github, a.Store)
	if err := a.Catalog.Load(ctx); err != nil {
		logger.Warn(ctx, "[FINDER] No usable catalog snapshot, the first request will crawl: %v", err)
	}

	a.Preferences = preference.NewService(logger.With("preference"), a.Store)
	a.Achievements = achievement.NewService(logger.With("achievement"), a.Store)
	a.History = search.NewHistory(logger.With("search"), a.Store, config.Search.HistorySize)
	a.Submissions = submission.NewService(logger.With("submission"), a.Catalog, a.Store)
	a.Analytics = analytics.NewEngine(logger.With("analytics"), a.Store, a.Preferences, a.Achievements)

	a.Events, err = a.newSink(ctx)
	if err != nil {
		return err
	}
	return nil
}

// loadConfig returns the viper loader only when it watches the file.
func loadConfig(opts Options) (*cfg.Config, *cfg.ViperLoader, error) {
	if opts.Mock {
		loader, _ := cfg.NewMockLoader()
		config, err := loader.Load()
		return config, nil, err
	}

	loader, err := cfg.NewViperLoader(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if !opts.Watch {
		loader.DisableWatch()
	}
	config, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if !opts.Watch {
		return config, nil, nil
	}
	return config, loader, nil
}

// newSink publishes analytics events to Kafka when enabled, otherwise applies them in-process.
func (a *FinderAPI) newSink(ctx context.Context) (analytics.Sink, error) {
	if !a.Config.Kafka.Enabled {
		return analytics.NewDirectSink(a.Analytics), nil
	}
	producer, err := kafka.NewProducer(a.Config, a.logger.With("kafka"), a.Config.Kafka.Producer.TopicEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics producer: %w", err)
	}
	a.Logger.Info(ctx, "[FINDER] Publishing analytics events to %s", a.Config.Kafka.Producer.TopicEvents)
	return analytics.NewKafkaSink(a.Logger, producer), nil
}

// NewConsumer subscribes to the analytics topic; the consume command drives it.
func (a *FinderAPI) NewConsumer() (*kafka.Consumer, error) {
	if len(a.Config.Kafka.Brokers) == 0 {
		return nil, kafka.ErrNoBrokers
	}
	return kafka.NewConsumer(a.Config, a.Logger, a.Config.Kafka.Producer.TopicEvents, a.Config.Kafka.GroupID)
}

// Server builds the HTTP server over the wired services.
func (a *FinderAPI) Server() *ui.Server {
	handler := ui.NewHandler(a.Logger, a.Config, ui.Services{
		Catalog:      a.Catalog,
		Preferences:  a.Preferences,
		Achievements: a.Achievements,
		History:      a.History,
		Submissions:  a.Submissions,
		Analytics:    a.Analytics,
		Events:       a.Events,
	})
	return ui.NewServer(a.Logger, a.Config, handler)
}

// Close releases the event sink and the store.
func (a *FinderAPI) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
		a.Events = nil
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
		a.Store = nil
	}
	return errors.Join(errs...)
}
