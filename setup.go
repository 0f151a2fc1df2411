package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/auth"
	"endurance-planner/internal/classifier"
	"endurance-planner/internal/config"
	"endurance-planner/internal/logger"
	"endurance-planner/internal/metrics"
	"endurance-planner/internal/service"
	"endurance-planner/internal/store"
	"endurance-planner/internal/strava"
)

// errConfigCreated stops a command after an example config was written.
var errConfigCreated = errors.New("edit the example config and run again")

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	db        *store.DB
	athleteID string

	strava   *strava.Client
	profiles *service.ProfileService
	plans    *service.PlanService
	syncs    *service.SyncService

	stopMetrics context.CancelFunc
}

// setup loads config, opens the store, authenticates with Strava and builds
// the services. Flags given on the command line override the config file.
func setup(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return nil, fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Strava API credentials.")
		fmt.Println("Get them from: https://www.strava.com/settings/api")
		return nil, errConfigCreated
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		return nil, fmt.Errorf("config validation failed: %w (edit %s/config.json)", err, configDir)
	}

	log, err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	db, err := store.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}
	if err := a.connect(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := a.build(); err != nil {
		db.Close()
		return nil, err
	}

	if override, _ := cmd.Flags().GetString("athlete"); override != "" {
		a.athleteID = override
	}

	a.serveMetrics(ctx)
	return a, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}
}

// connect loads stored tokens, running the browser flow when there are none
// or they can no longer be refreshed.
func (a *app) connect(ctx context.Context) error {
	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     a.cfg.Strava.ClientID,
		ClientSecret: a.cfg.Strava.ClientSecret,
		CallbackPort: a.cfg.Strava.CallbackPort,
	})

	stored, err := a.db.GetAuth(ctx)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if stored, err = a.authenticate(ctx, oauthCfg); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	ts := auth.NewTokenSource(oauthCfg, &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}, a.db, a.log)

	if _, err := ts.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if stored, err = a.authenticate(ctx, oauthCfg); err != nil {
			return fmt.Errorf("re-authentication: %w", err)
		}
		ts = auth.NewTokenSource(oauthCfg, &oauth2.Token{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			Expiry:       stored.ExpiresAt,
		}, a.db, a.log)
	}

	a.athleteID = strconv.FormatInt(stored.AthleteID, 10)
	a.strava = strava.NewClient(ctx, ts)
	return nil
}

func (a *app) authenticate(ctx context.Context, oauthCfg *oauth2.Config) (*store.Auth, error) {
	addr := ""
	if a.cfg.Strava.CallbackPort != 0 {
		addr = fmt.Sprintf(":%d", a.cfg.Strava.CallbackPort)
	}
	result, err := auth.Authenticate(ctx, oauthCfg, addr, os.Stdout)
	if err != nil {
		return nil, err
	}

	stored := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := a.db.SaveAuth(ctx, stored); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}

	fmt.Printf("\nSuccessfully authenticated as athlete %d!\n", result.AthleteID)
	return stored, nil
}

// build wires the classifier chain and the services.
func (a *app) build() error {
	var providers []classifier.Provider
	if url := a.cfg.Classifier.URL; url != "" {
		providers = append(providers, classifier.NewRemote(url, &http.Client{}))
	}
	if a.cfg.Classifier.CohortEnabled {
		providers = append(providers, classifier.NewCohort(a.db))
	}
	chain := classifier.NewChain(a.log, a.cfg.Classifier.Timeout(), a.cfg.Classifier.LookbackDays, providers...)

	profiles, err := service.NewProfileService(a.db, a.db, a.db, chain, service.ProfileOptions{
		LookbackDays: a.cfg.Engine.LookbackDays,
		CacheSize:    a.cfg.Engine.ProfileCacheSize,
		CacheTTL:     a.cfg.Engine.CacheTTL(),
		Overrides: analysis.Biometrics{
			BirthDate: a.cfg.Athlete.ParsedBirthDate(),
			Gender:    a.cfg.Athlete.Gender,
			WeightKg:  a.cfg.Athlete.WeightKg,
			FTPWatts:  a.cfg.Athlete.FTPWatts,
		},
	}, a.log)
	if err != nil {
		return fmt.Errorf("creating profile service: %w", err)
	}

	a.profiles = profiles
	a.plans = service.NewPlanService(a.db, a.log, a.cfg.Engine.CommitConcurrency)
	a.syncs = service.NewSyncService(a.strava, a.db, a.log)
	// fresh activities make any cached profile stale
	a.syncs.OnSynced = profiles.Invalidate
	return nil
}

func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		a.stopMetrics = func() {}
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	a.stopMetrics = cancel
	go func() {
		if err := metrics.Serve(ctx, addr); err != nil {
			a.log.Error("metrics listener stopped", "addr", addr, "err", err)
		}
	}()
	a.log.Info("serving metrics", "addr", addr)
}

func (a *app) Close() {
	a.stopMetrics()
	if err := a.db.Close(); err != nil {
		a.log.Warn("closing database", "err", err)
	}
}
