package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/config"
	"github.com/asteroid-belt/idapm/internal/db"
	"github.com/asteroid-belt/idapm/internal/detect"
	"github.com/asteroid-belt/idapm/internal/installer"
	"github.com/asteroid-belt/idapm/internal/locator"
	"github.com/asteroid-belt/idapm/internal/log"
	"github.com/asteroid-belt/idapm/internal/remote"
	"github.com/asteroid-belt/idapm/pkg/version"
)

// app is everything a command needs, wired from configuration.
type app struct {
	cfg      *config.Config
	store    *db.DB
	gateway  catalog.Gateway
	svc      *catalog.Service
	locator  *locator.Locator
	detector *detect.Detector
	ida      *detect.Installation // nil when IDA was not found
	logger   *zerolog.Logger
	closers  []func() error
}

// appFactory builds the app for a command. Tests replace it.
var appFactory = openApp

func openApp(_ context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	paths := config.GetPaths(cfg)

	if err := log.Init(paths.Logs, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	logger := log.L()
	logger.Debug().Str("build", version.Info()).Str("base_dir", cfg.BaseDir).Msg("starting")
	a := &app{cfg: cfg, logger: logger, closers: []func() error{log.Close}}

	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a.store = database
	a.closers = append([]func() error{database.Close}, a.closers...)

	gh, err := remote.NewGitHubClient(remote.Options{
		Token:             cfg.GitHub.Token,
		RateLimit:         cfg.GitHub.RateLimit,
		CacheTTL:          cfg.GitHub.CacheTTL,
		IncludePrerelease: cfg.GitHub.IncludePrerelease,
		Logger:            logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initialize github client: %w", err)
	}
	a.gateway = gh

	exec := installer.NewExecutor(remote.NewGit(cfg.GitHub.Token), gh, installer.Options{
		BackupDir: paths.Backups,
		TempDir:   paths.Downloads,
		Logger:    logger,
	})

	a.locator = locator.New()
	a.detector = detect.NewDetector()
	idaPath := a.detectIDA()

	a.svc = catalog.NewService(database, gh, exec, a.locator, catalog.Options{
		IDAPath:         idaPath,
		PreferUserDir:   cfg.IDA.PreferUserDir,
		BackupOnUpdate:  cfg.Install.BackupOnUninstall,
		PreferredAssets: cfg.Install.PreferredAssets,
		Logger:          logger,
	})
	return a, nil
}

// detectIDA finds the IDA installation. A configured path that does not
// validate is still used so its plugins directory is honoured.
func (a *app) detectIDA() string {
	inst, err := a.detector.Detect(a.cfg.IDA.InstallPath)
	if err != nil {
		if !errors.Is(err, detect.ErrNotFound) {
			a.logger.Warn().Err(err).Msg("IDA detection failed")
		}
		return a.cfg.IDA.InstallPath
	}
	a.ida = inst
	a.logger.Debug().Str("path", inst.Path).Str("source", inst.Source).Msg("IDA installation detected")
	return inst.Path
}

// Close releases everything opened by openApp.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func withApp(cmd interface{ Context() context.Context }, fn func(a *app) error) error {
	a, err := appFactory(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
