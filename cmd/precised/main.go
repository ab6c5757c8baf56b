// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// precised runs the Precise marketplace daemon: the document store, the
// simulation drivers and both HTTP listeners.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/precisexyz/precise/pkg/analytics"
	"github.com/precisexyz/precise/pkg/api"
	"github.com/precisexyz/precise/pkg/driver"
	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/mailer"
	"github.com/precisexyz/precise/pkg/metric"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

const version = "0.1.0"

var (
	apiAddr   = flag.String("api", ":8080", "Public API listen address")
	adminAddr = flag.String("admin", ":9090", "Admin/metrics listen address")
	dbType    = flag.String("db", "memory", "Database backend (memory|badger)")
	dbPath    = flag.String("db-path", "./data", "Database path for badger")
	origins   = flag.String("origins", "http://localhost:3000", "Comma-separated CORS origins")
	env       = flag.String("env", "development", "Environment (development|production)")
	logLevel  = flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	seedDemo  = flag.Bool("seed", false, "Seed the demo data set on startup")
	simulate  = flag.Bool("simulate", true, "Start the simulation drivers on startup")

	smtpHost = flag.String("smtp-host", "", "SMTP relay host (empty disables contact emails)")
	smtpPort = flag.Int("smtp-port", 587, "SMTP relay port")
	smtpUser = flag.String("smtp-user", "", "SMTP username")
	smtpPass = flag.String("smtp-pass", "", "SMTP password")
	mailFrom = flag.String("mail-from", "", "Contact notification sender")
	mailTo   = flag.String("mail-to", "", "Comma-separated contact notification recipients")
)

func main() {
	flag.Parse()
	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("precised failed: " + err.Error())
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	started := time.Now()

	metrics, err := metric.NewMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	st, err := store.New(*dbType, *dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	st.SetMetrics(metrics)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	users := engine.NewUserManager(st, logger)
	assets := engine.NewAssetManager(st, rng, logger)
	campaigns := engine.NewCampaignManager(st, rng, logger)
	earnings := engine.NewEarningManager(st, assets, rng, logger)
	usage := engine.NewUsageManager(st, users, rng, logger)
	health := engine.NewHealthManager(st, rng, logger)
	attrs := engine.NewAttributionManager(st, rng, logger)
	recs := engine.NewRecommendationManager(st, logger)
	contacts := engine.NewContactManager(st, logger)
	analyticsSvc := analytics.NewService(usage, campaigns, users, assets, attrs, logger)
	analyticsSvc.SetMetrics(metrics)

	if *seedDemo {
		if err := seed(users, assets, campaigns, logger); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	sim := driver.StandardSet(driver.Managers{
		Users:        users,
		Assets:       assets,
		Campaigns:    campaigns,
		Earnings:     earnings,
		Usage:        usage,
		Health:       health,
		Attributions: attrs,
		Analytics:    analyticsSvc,
	}, logger, metrics)
	defer sim.Stop()
	if *simulate {
		sim.Start(context.Background())
	}

	mail := mailer.New(mailer.Config{
		Host:     *smtpHost,
		Port:     *smtpPort,
		Username: *smtpUser,
		Password: *smtpPass,
		From:     *mailFrom,
		To:       splitList(*mailTo),
	}, logger)

	server := api.NewServer(api.Config{
		Addr:           *apiAddr,
		AllowedOrigins: splitList(*origins),
		Production:     *env == "production",
	}, api.Deps{
		Users:     users,
		Assets:    assets,
		Campaigns: campaigns,
		Earnings:  earnings,
		Usage:     usage,
		Health:    health,
		Recs:      recs,
		Contacts:  contacts,
		Attrs:     attrs,
		Analytics: analyticsSvc,
		Sim:       sim,
		Notifier:  st.Notifier(),
		Mailer:    mail,
		Metrics:   metrics,
		Log:       logger,
	})

	apiSrv := &http.Server{Addr: *apiAddr, Handler: server.Router()}
	adminSrv := &http.Server{Addr: *adminAddr, Handler: server.AdminRouter(version, started)}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("public API listening on " + *apiAddr)
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("admin API listening on " + *adminAddr)
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("received " + sig.String() + ", shutting down")
	}

	sim.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(ctx); err != nil {
		logger.Warn("api shutdown: " + err.Error())
	}
	if err := adminSrv.Shutdown(ctx); err != nil {
		logger.Warn("admin shutdown: " + err.Error())
	}

	logger.Info("precised exiting")
	return nil
}

// seed provisions the demo accounts, the default data assets and the
// Nike campaign with its backdated history.
func seed(users *engine.UserManager, assets *engine.AssetManager, campaigns *engine.CampaignManager, logger log.Logger) error {
	now := time.Now()

	ownerID, err := users.SignIn("owner@demo.precise.xyz", "Demo Data Owner", model.RoleDataOwner, "Acme Fitness Data", now)
	if err != nil {
		return err
	}
	buyerID, err := users.SignIn("buyer@demo.precise.xyz", "Demo Media Buyer", model.RoleMediaBuyer, "Nike", now)
	if err != nil {
		return err
	}

	assetIDs, err := assets.SeedDefaultAssets(ownerID, now)
	if err != nil {
		return err
	}
	campaignID, err := campaigns.SeedDefaultCampaign(buyerID, now)
	if err != nil {
		return err
	}

	logger.Info(fmt.Sprintf("seeded demo data: %d assets, campaign %s", len(assetIDs), campaignID))
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
