// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/analytics"
	"github.com/precisexyz/precise/pkg/driver"
	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/mailer"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

type apiFixture struct {
	router    *gin.Engine
	users     *engine.UserManager
	assets    *engine.AssetManager
	campaigns *engine.CampaignManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.NewMemory()
	rng := rand.New(rand.NewSource(1))
	logger := log.NoOp()

	users := engine.NewUserManager(s, logger)
	assets := engine.NewAssetManager(s, rng, logger)
	campaigns := engine.NewCampaignManager(s, rng, logger)
	earnings := engine.NewEarningManager(s, assets, rng, logger)
	usage := engine.NewUsageManager(s, users, rng, logger)
	health := engine.NewHealthManager(s, rng, logger)
	attrs := engine.NewAttributionManager(s, rng, logger)
	recs := engine.NewRecommendationManager(s, logger)
	contacts := engine.NewContactManager(s, logger)
	svc := analytics.NewService(usage, campaigns, users, assets, attrs, logger)

	sim := driver.StandardSet(driver.Managers{
		Users:        users,
		Assets:       assets,
		Campaigns:    campaigns,
		Earnings:     earnings,
		Usage:        usage,
		Health:       health,
		Attributions: attrs,
		Analytics:    svc,
	}, logger, nil)
	t.Cleanup(sim.Stop)

	server := NewServer(Config{}, Deps{
		Users:     users,
		Assets:    assets,
		Campaigns: campaigns,
		Earnings:  earnings,
		Usage:     usage,
		Health:    health,
		Recs:      recs,
		Contacts:  contacts,
		Attrs:     attrs,
		Analytics: svc,
		Sim:       sim,
		Notifier:  s.Notifier(),
		Mailer:    mailer.New(mailer.Config{}, logger),
		Log:       logger,
	})

	return &apiFixture{
		router:    server.Router(),
		users:     users,
		assets:    assets,
		campaigns: campaigns,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestContactAlwaysSucceedsWithoutMailer(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	// No SMTP configured: the submission still succeeds.
	w := f.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "Interested in the marketplace",
	})
	require.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(true, resp["success"])
}

func TestContactSucceedsWhenStoreFails(t *testing.T) {
	require := require.New(t)
	gin.SetMode(gin.TestMode)

	s := store.NewMemory()
	logger := log.NoOp()
	server := NewServer(Config{}, Deps{
		Contacts: engine.NewContactManager(s, logger),
		Sim:      driver.NewRegistry(logger),
		Notifier: s.Notifier(),
		Mailer:   mailer.New(mailer.Config{}, logger),
		Log:      logger,
	})
	router := server.Router()
	require.NoError(s.Close())

	// The store write fails but the submission still succeeds.
	body, err := json.Marshal(map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "Interested in the marketplace",
	})
	require.NoError(err)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(true, resp["success"])
}

func TestContactValidation(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/contact", map[string]string{
		"email":   "jane@example.com",
		"message": "hi",
	})
	require.Equal(http.StatusBadRequest, w.Code)

	// Message is required alongside name and email.
	w = f.do(t, http.MethodPost, "/api/contact", map[string]string{
		"name":  "Jane Doe",
		"email": "jane@example.com",
	})
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestSignInAndGetUser(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/auth/signin", map[string]string{
		"email":   "owner@example.com",
		"name":    "Owner",
		"role":    "DATA_OWNER",
		"company": "Acme",
	})
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		ID ids.ID `json:"id"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(resp.ID.IsZero())

	w = f.do(t, http.MethodGet, "/api/users/"+resp.ID.String(), nil)
	require.Equal(http.StatusOK, w.Code)

	var got struct {
		User model.User `json:"user"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal("owner@example.com", got.User.Email)
}

func TestGetUserBadID(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/users/not-an-id", nil)
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestGetUserNotFound(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/users/"+ids.GenerateTestID().String(), nil)
	require.Equal(http.StatusNotFound, w.Code)
}

func TestRecordUsageUnknownAsset(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/usage", map[string]any{
		"assetId":      ids.GenerateTestID().String(),
		"userId":       ids.GenerateTestID().String(),
		"queryType":    "Audience Segment",
		"responseTime": 120,
	})
	require.Equal(http.StatusNotFound, w.Code)
}

func TestAssetLifecycle(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)
	ownerID := ids.GenerateTestID()

	w := f.do(t, http.MethodPost, "/api/assets", map[string]any{
		"ownerId":         ownerID.String(),
		"name":            "Fitness Events",
		"type":            "behavioral",
		"recordCount":     500000,
		"updateFrequency": 24,
	})
	require.Equal(http.StatusCreated, w.Code)

	var created struct {
		ID ids.ID `json:"id"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = f.do(t, http.MethodGet, "/api/assets?owner="+ownerID.String(), nil)
	require.Equal(http.StatusOK, w.Code)

	w = f.do(t, http.MethodPatch, "/api/assets/"+created.ID.String(), map[string]any{
		"status": "paused",
	})
	require.Equal(http.StatusOK, w.Code)

	var patched struct {
		Asset model.DataAsset `json:"asset"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &patched))
	require.Equal(model.AssetPaused, patched.Asset.Status)
}

func TestSimulateEarningRoute(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)
	ownerID := ids.GenerateTestID()

	// No assets yet: the simulator has nothing to draw from.
	w := f.do(t, http.MethodPost, "/api/earnings/simulate?owner="+ownerID.String(), nil)
	require.Equal(http.StatusBadRequest, w.Code)

	_, err := f.assets.Create(ownerID, "Fitness Events", "behavioral", 500000, 24, time.Now())
	require.NoError(err)

	w = f.do(t, http.MethodPost, "/api/earnings/simulate?owner="+ownerID.String(), nil)
	require.Equal(http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/earnings?owner="+ownerID.String(), nil)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), "Fitness Events")
}

func TestCampaignDetailRoute(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)
	now := time.Now()

	campaignID, err := f.campaigns.Create(ids.GenerateTestID(), "Summer Push", 28.00, 131.04, []string{"madhive"}, now)
	require.NoError(err)
	require.NoError(f.campaigns.SimulateTick(campaignID, now.Add(time.Second)))

	w := f.do(t, http.MethodGet, "/api/campaigns/"+campaignID.String(), nil)
	require.Equal(http.StatusOK, w.Code)

	var view struct {
		Campaign     model.Campaign   `json:"campaign"`
		History      []map[string]any `json:"history"`
		DSPBreakdown []map[string]any `json:"dspBreakdown"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal("Summer Push", view.Campaign.Name)
	require.Len(view.History, 1)
	require.Len(view.DSPBreakdown, 1)
	require.Equal("MadHive", view.DSPBreakdown[0]["name"])
}

func TestEnhanceRoute(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	campaignID, err := f.campaigns.Create(ids.GenerateTestID(), "Summer Push", 28.00, 131.04, nil, time.Now())
	require.NoError(err)

	w := f.do(t, http.MethodPost, fmt.Sprintf("/api/campaigns/%s/enhance", campaignID), nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Campaign model.Campaign `json:"campaign"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(resp.Campaign.EnhancementLaunch)
}

func TestDSPWebhook(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	campaignID, err := f.campaigns.Create(ids.GenerateTestID(), "Summer Push", 28.00, 131.04, []string{"madhive"}, time.Now())
	require.NoError(err)

	w := f.do(t, http.MethodPost, "/api/webhooks/dsp", map[string]any{
		"event":      "win.batch",
		"campaignId": campaignID.String(),
		"dsp":        "madhive",
		"response": map[string]any{
			"id": "resp-1",
			"seatbid": []map[string]any{{
				"bid": []map[string]any{
					{"id": "b1", "impid": "i1", "price": 44.0},
					{"id": "b2", "impid": "i2", "price": 46.0},
				},
			}},
		},
	})
	require.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(true, resp["accepted"])
	require.Equal(float64(2), resp["wins"])

	rows, err := f.campaigns.DSPRows(campaignID, 0)
	require.NoError(err)
	require.NotEmpty(rows)
	require.InDelta(45.0, rows[0].Doc.CurrentECPM, 1e-9)
}

func TestDSPWebhookIgnoresOtherEvents(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/webhooks/dsp", map[string]any{
		"event":      "impression",
		"campaignId": ids.GenerateTestID().String(),
		"dsp":        "madhive",
	})
	require.Equal(http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(false, resp["accepted"])
}

func TestSimulationControl(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/simulation/status", nil)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), `"running":false`)

	w = f.do(t, http.MethodPost, "/api/simulation/start", nil)
	require.Equal(http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/simulation/status", nil)
	require.Contains(w.Body.String(), `"running":true`)

	w = f.do(t, http.MethodPost, "/api/simulation/stop", nil)
	require.Equal(http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/simulation/status", nil)
	require.Contains(w.Body.String(), `"running":false`)
}

func TestSimulationPerDriverControl(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/simulations", nil)
	require.Equal(http.StatusOK, w.Code)

	var listing struct {
		Drivers []string `json:"drivers"`
		Active  []string `json:"active"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	require.Contains(listing.Drivers, "campaigns")
	require.Empty(listing.Active)

	w = f.do(t, http.MethodPost, "/api/simulations/campaigns/start", nil)
	require.Equal(http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/simulations", nil)
	require.NoError(json.Unmarshal(w.Body.Bytes(), &listing))
	require.Equal([]string{"campaigns"}, listing.Active)

	w = f.do(t, http.MethodPost, "/api/simulations/nonsense/start", nil)
	require.Equal(http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/simulations/campaigns/stop", nil)
	require.Equal(http.StatusOK, w.Code)

	// Stopping a driver that is not running is reported, not silent.
	w = f.do(t, http.MethodPost, "/api/simulations/campaigns/stop", nil)
	require.Equal(http.StatusNotFound, w.Code)
}

func TestWebhookCampaignLifecycleEvents(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	campaignID, err := f.campaigns.Create(ids.GenerateTestID(), "Summer Push", 28.00, 131.04, nil, time.Now())
	require.NoError(err)

	w := f.do(t, http.MethodPost, "/api/webhooks/dsp", map[string]any{
		"event":      "campaign.paused",
		"campaignId": campaignID.String(),
	})
	require.Equal(http.StatusOK, w.Code)

	campaign, err := f.campaigns.Get(campaignID)
	require.NoError(err)
	require.Equal(model.CampaignPaused, campaign.Status)

	w = f.do(t, http.MethodPost, "/api/webhooks/dsp", map[string]any{
		"event":      "campaign.resumed",
		"campaignId": campaignID.String(),
	})
	require.Equal(http.StatusOK, w.Code)

	campaign, err = f.campaigns.Get(campaignID)
	require.NoError(err)
	require.Equal(model.CampaignActive, campaign.Status)
}

func TestWebhookPerformanceReport(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	campaignID, err := f.campaigns.Create(ids.GenerateTestID(), "Summer Push", 28.00, 131.04, nil, time.Now())
	require.NoError(err)

	w := f.do(t, http.MethodPost, "/api/webhooks/dsp", map[string]any{
		"event":      "campaign.performance",
		"campaignId": campaignID.String(),
		"performance": map[string]any{
			"spend":       500.0,
			"conversions": 12,
			"revenue":     1572.48,
		},
	})
	require.Equal(http.StatusOK, w.Code)

	campaign, err := f.campaigns.Get(campaignID)
	require.NoError(err)
	require.InDelta(500.0, campaign.Spend, 1e-9)
	require.InDelta(1572.48, campaign.Revenue, 1e-9)
}

func TestRequestIDHeader(t *testing.T) {
	require := require.New(t)
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(http.StatusOK, w.Code)
	require.NotEmpty(w.Header().Get("X-Request-ID"))
}

func TestAdminEndpoints(t *testing.T) {
	require := require.New(t)

	s := store.NewMemory()
	logger := log.NoOp()
	sim := driver.NewRegistry(logger)
	server := NewServer(Config{}, Deps{
		Sim:      sim,
		Notifier: s.Notifier(),
		Mailer:   mailer.New(mailer.Config{}, logger),
		Log:      logger,
	})

	admin := server.AdminRouter("test", time.Now())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), "healthy")

	req = httptest.NewRequest(http.MethodGet, "/info", nil)
	w = httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), "precised")
}
