// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the marketplace over HTTP: a gin router for the
// public REST surface plus a websocket live feed, and a separate mux
// listener for operational endpoints (health, Prometheus metrics).
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/precisexyz/precise/pkg/analytics"
	"github.com/precisexyz/precise/pkg/driver"
	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/mailer"
	"github.com/precisexyz/precise/pkg/metric"
	"github.com/precisexyz/precise/pkg/store"
)

// Config controls the public API server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Production     bool
}

// Server is the public HTTP surface of the marketplace.
type Server struct {
	cfg       Config
	users     *engine.UserManager
	assets    *engine.AssetManager
	campaigns *engine.CampaignManager
	earnings  *engine.EarningManager
	usage     *engine.UsageManager
	health    *engine.HealthManager
	recs      *engine.RecommendationManager
	contacts  *engine.ContactManager
	attrs     *engine.AttributionManager
	analytics *analytics.Service
	sim       *driver.Registry
	notifier  *store.Notifier
	mailer    *mailer.Mailer
	metrics   *metric.Metrics
	log       log.Logger
}

// Deps bundles everything the server serves.
type Deps struct {
	Users     *engine.UserManager
	Assets    *engine.AssetManager
	Campaigns *engine.CampaignManager
	Earnings  *engine.EarningManager
	Usage     *engine.UsageManager
	Health    *engine.HealthManager
	Recs      *engine.RecommendationManager
	Contacts  *engine.ContactManager
	Attrs     *engine.AttributionManager
	Analytics *analytics.Service
	Sim       *driver.Registry
	Notifier  *store.Notifier
	Mailer    *mailer.Mailer
	Metrics   *metric.Metrics
	Log       log.Logger
}

// NewServer creates the API server.
func NewServer(cfg Config, deps Deps) *Server {
	return &Server{
		cfg:       cfg,
		users:     deps.Users,
		assets:    deps.Assets,
		campaigns: deps.Campaigns,
		earnings:  deps.Earnings,
		usage:     deps.Usage,
		health:    deps.Health,
		recs:      deps.Recs,
		contacts:  deps.Contacts,
		attrs:     deps.Attrs,
		analytics: deps.Analytics,
		sim:       deps.Sim,
		notifier:  deps.Notifier,
		mailer:    deps.Mailer,
		metrics:   deps.Metrics,
		log:       deps.Log,
	}
}

// Router builds the gin router with CORS, request IDs and all routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(s.accessLog())
	router.Use(s.countRequests())

	config := cors.DefaultConfig()
	config.AllowOrigins = s.cfg.AllowedOrigins
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	router.Use(cors.New(config))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})

	api := router.Group("/api")
	{
		api.POST("/contact", s.handleContact)
		api.POST("/webhooks/dsp", s.handleDSPWebhook)

		api.POST("/auth/signin", s.handleSignIn)
		api.GET("/users/:id", s.handleGetUser)
		api.POST("/users/:id/onboarding", s.handleCompleteOnboarding)

		api.POST("/assets", s.handleCreateAsset)
		api.GET("/assets", s.handleListAssets)
		api.GET("/assets/:id", s.handleGetAsset)
		api.PATCH("/assets/:id", s.handleUpdateAsset)
		api.GET("/assets/:id/health", s.handleAssetHealth)
		api.GET("/assets/:id/attributions", s.handleAssetAttributions)

		api.GET("/earnings", s.handleListEarnings)
		api.GET("/earnings/stats", s.handleEarningStats)
		api.POST("/earnings/simulate", s.handleSimulateEarning)

		api.POST("/campaigns", s.handleCreateCampaign)
		api.GET("/campaigns", s.handleListCampaigns)
		api.GET("/campaigns/:id", s.handleGetCampaign)
		api.GET("/campaigns/:id/history", s.handleCampaignHistory)
		api.GET("/campaigns/:id/dsp", s.handleCampaignDSP)
		api.GET("/campaigns/:id/attributions", s.handleCampaignAttributions)
		api.POST("/campaigns/:id/enhance", s.handleActivateEnhancement)
		api.POST("/campaigns/:id/status", s.handleCampaignStatus)

		api.POST("/usage", s.handleRecordUsage)
		api.GET("/usage/patterns", s.handleUsagePatterns)
		api.GET("/usage/logs", s.handleQueryLogs)
		api.GET("/usage/campaigns", s.handleCampaignUsage)

		api.GET("/health-scores", s.handleHealthScores)

		api.GET("/recommendations", s.handleListRecommendations)
		api.POST("/recommendations/generate", s.handleGenerateRecommendations)
		api.POST("/recommendations/:id/status", s.handleRecommendationStatus)

		api.POST("/simulation/start", s.handleSimulationStart)
		api.POST("/simulation/stop", s.handleSimulationStop)
		api.GET("/simulation/status", s.handleSimulationStatus)

		api.GET("/simulations", s.handleListSimulations)
		api.POST("/simulations/:name/start", s.handleSimulationStartOne)
		api.POST("/simulations/:name/stop", s.handleSimulationStopOne)

		api.GET("/feed", s.handleFeed)
	}

	return router
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug(c.Request.Method + " " + c.Request.URL.Path +
			" " + strconv.Itoa(c.Writer.Status()) +
			" " + time.Since(start).String())
	}
}

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if s.metrics != nil {
			s.metrics.RequestsProcessed.WithLabelValues(
				c.Request.Method,
				strconv.Itoa(c.Writer.Status()),
			).Inc()
		}
	}
}
