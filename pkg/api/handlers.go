// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/model"
)

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (ids.ID, bool) {
	id, err := ids.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return ids.Empty, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (ids.ID, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + name})
		return ids.Empty, false
	}
	id, err := ids.FromString(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return ids.Empty, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("limit"))
	return n
}

// handleContact accepts a contact-form submission. Missing fields are
// the only hard failure; the store write and email delivery are both
// best effort and never block the success response.
func (s *Server) handleContact(c *gin.Context) {
	var contact model.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.contacts.Create(contact, time.Now())
	if errors.Is(err, engine.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Warn("contact store failed: " + err.Error())
	}
	if s.metrics != nil {
		s.metrics.ContactsReceived.Inc()
	}

	_ = s.mailer.Notify(contact)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
		"message": "Thanks for reaching out. We'll be in touch shortly.",
	})
}

type signInRequest struct {
	Email   string     `json:"email" binding:"required"`
	Name    string     `json:"name"`
	Role    model.Role `json:"role"`
	Company string     `json:"company"`
}

func (s *Server) handleSignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Role == "" {
		req.Role = model.RoleDataOwner
	}

	id, err := s.users.SignIn(req.Email, req.Name, req.Role, req.Company, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}

	user, err := s.users.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "user": user})
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := s.users.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "user": user})
}

func (s *Server) handleCompleteOnboarding(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.users.CompleteOnboarding(id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type createAssetRequest struct {
	OwnerID         ids.ID `json:"ownerId" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	RecordCount     int64  `json:"recordCount"`
	UpdateFrequency int    `json:"updateFrequency"`
}

func (s *Server) handleCreateAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.assets.Create(req.OwnerID, req.Name, req.Type, req.RecordCount, req.UpdateFrequency, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}

	asset, err := s.assets.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "asset": asset})
}

func (s *Server) handleListAssets(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	assets, err := s.assets.ListByOwner(ownerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

func (s *Server) handleGetAsset(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	asset, err := s.assets.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "asset": asset})
}

type updateAssetRequest struct {
	UpdateFrequency *int               `json:"updateFrequency"`
	Status          *model.AssetStatus `json:"status"`
}

func (s *Server) handleUpdateAsset(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.assets.Update(id, req.UpdateFrequency, req.Status, time.Now()); err != nil {
		s.fail(c, err)
		return
	}
	asset, err := s.assets.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "asset": asset})
}

func (s *Server) handleAssetHealth(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	score, err := s.health.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"health": score})
}

func (s *Server) handleAssetAttributions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	attrs, err := s.attrs.ListByAsset(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributions": attrs})
}

func (s *Server) handleListEarnings(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	earnings, err := s.earnings.List(ownerID, queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"earnings": earnings})
}

func (s *Server) handleEarningStats(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	stats, err := s.earnings.StatsFor(ownerID, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleSimulateEarning(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	id, err := s.earnings.Simulate(ownerID, time.Now())
	if errors.Is(err, engine.ErrNoAssets) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.EarningsCreated.Inc()
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type createCampaignRequest struct {
	BuyerID   ids.ID   `json:"buyerId" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	TargetCAC float64  `json:"targetCAC" binding:"required"`
	LTV       float64  `json:"ltv"`
	DSPs      []string `json:"dsps"`
}

func (s *Server) handleCreateCampaign(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := s.campaigns.Create(req.BuyerID, req.Name, req.TargetCAC, req.LTV, req.DSPs, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	campaign, err := s.campaigns.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "campaign": campaign})
}

func (s *Server) handleListCampaigns(c *gin.Context) {
	buyerID, ok := queryID(c, "buyer")
	if !ok {
		return
	}
	campaigns, err := s.campaigns.ListByBuyer(buyerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

// handleGetCampaign returns the enriched detail view: campaign, recent
// history, DSP breakdown and top contributing data sources.
func (s *Server) handleGetCampaign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := s.analytics.CampaignDetail(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleCampaignHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	history, err := s.campaigns.History(id, queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (s *Server) handleCampaignDSP(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if dsp := c.Query("dsp"); dsp != "" {
		days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
		rows, err := s.campaigns.DSPHistory(id, dsp, days, time.Now())
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": rows})
		return
	}
	rows, err := s.campaigns.DSPRows(id, queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (s *Server) handleCampaignAttributions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	attrs, err := s.attrs.ListByCampaign(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attributions": attrs})
}

func (s *Server) handleActivateEnhancement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.campaigns.ActivateEnhancement(id, time.Now()); err != nil {
		s.fail(c, err)
		return
	}
	campaign, err := s.campaigns.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "campaign": campaign})
}

type campaignStatusRequest struct {
	Status model.CampaignStatus `json:"status" binding:"required"`
}

func (s *Server) handleCampaignStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req campaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.campaigns.SetStatus(id, req.Status, time.Now()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type recordUsageRequest struct {
	AssetID      ids.ID  `json:"assetId" binding:"required"`
	UserID       ids.ID  `json:"userId" binding:"required"`
	QueryType    string  `json:"queryType" binding:"required"`
	ResponseTime float64 `json:"responseTime"`
}

func (s *Server) handleRecordUsage(c *gin.Context) {
	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.usage.Record(req.AssetID, req.UserID, req.QueryType, req.ResponseTime, time.Now()); err != nil {
		s.fail(c, err)
		return
	}
	if s.metrics != nil {
		s.metrics.UsageRecorded.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleUsagePatterns(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	patterns, err := s.analytics.UsagePatterns(ownerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, patterns)
}

func (s *Server) handleQueryLogs(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	assetID := ids.Empty
	if raw := c.Query("asset"); raw != "" {
		parsed, err := ids.FromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid asset"})
			return
		}
		assetID = parsed
	}
	logs, err := s.analytics.QueryLogs(ownerID, assetID, queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) handleCampaignUsage(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	usage, err := s.analytics.CampaignUsageFor(ownerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": usage})
}

func (s *Server) handleHealthScores(c *gin.Context) {
	ownerID, ok := queryID(c, "owner")
	if !ok {
		return
	}
	scores, err := s.health.ListByOwner(ownerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

func (s *Server) handleListRecommendations(c *gin.Context) {
	userID, ok := queryID(c, "user")
	if !ok {
		return
	}
	recs, err := s.recs.List(userID, model.RecStatus(c.Query("status")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (s *Server) handleGenerateRecommendations(c *gin.Context) {
	userID, ok := queryID(c, "user")
	if !ok {
		return
	}
	n, err := s.recs.GenerateForOwner(userID, time.Now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated": n})
}

type recStatusRequest struct {
	Status model.RecStatus `json:"status" binding:"required"`
}

func (s *Server) handleRecommendationStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req recStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.recs.SetStatus(id, req.Status); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleSimulationStart detaches the drivers from the request context
// so they outlive the call.
func (s *Server) handleSimulationStart(c *gin.Context) {
	s.sim.Start(context.Background())
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (s *Server) handleSimulationStop(c *gin.Context) {
	s.sim.Stop()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) handleSimulationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": s.sim.Running()})
}

func (s *Server) handleListSimulations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"drivers": s.sim.Names(),
		"active":  s.sim.Active(),
	})
}

func (s *Server) handleSimulationStartOne(c *gin.Context) {
	name := c.Param("name")
	if !s.sim.StartOne(context.Background(), name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown driver: " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": name, "running": true})
}

func (s *Server) handleSimulationStopOne(c *gin.Context) {
	name := c.Param("name")
	if !s.sim.StopOne(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "driver not running: " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": name, "running": false})
}
