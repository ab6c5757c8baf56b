// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/model"
)

// dspWebhookRequest is a DSP callback. win.batch carries won bids in
// OpenRTB 2.x form; campaign.performance carries an explicit spend/
// conversions/revenue report; campaign.paused and campaign.resumed flip
// campaign status.
type dspWebhookRequest struct {
	Event      string               `json:"event" binding:"required"`
	CampaignID ids.ID               `json:"campaignId" binding:"required"`
	DSP        string               `json:"dsp"`
	Response   openrtb2.BidResponse `json:"response"`

	Performance struct {
		Spend       float64 `json:"spend"`
		Conversions int64   `json:"conversions"`
		Revenue     float64 `json:"revenue"`
	} `json:"performance"`
}

// handleDSPWebhook dispatches on the event type. Unknown events are
// acknowledged with accepted=false so senders never retry.
func (s *Server) handleDSPWebhook(c *gin.Context) {
	var req dspWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(req.Event).Inc()
	}
	now := time.Now()

	switch req.Event {
	case "win.batch":
		s.handleWinBatch(c, req, now)
	case "campaign.performance":
		p := req.Performance
		if err := s.campaigns.UpdatePerformance(req.CampaignID, p.Spend, p.Conversions, p.Revenue, now); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": true})
	case "campaign.paused":
		if err := s.campaigns.SetStatus(req.CampaignID, model.CampaignPaused, now); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": true})
	case "campaign.resumed":
		if err := s.campaigns.SetStatus(req.CampaignID, model.CampaignActive, now); err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": true})
	default:
		c.JSON(http.StatusOK, gin.H{"accepted": false})
	}
}

// handleWinBatch folds a batch of won bids into one spend/eCPM sample
// for the campaign's DSP row. Bid prices are CPMs.
func (s *Server) handleWinBatch(c *gin.Context, req dspWebhookRequest, now time.Time) {
	if req.DSP == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing dsp"})
		return
	}

	var (
		totalCPM float64
		wins     int
	)
	for _, seat := range req.Response.SeatBid {
		for _, bid := range seat.Bid {
			totalCPM += bid.Price
			wins++
		}
	}
	if wins == 0 {
		c.JSON(http.StatusOK, gin.H{"accepted": false})
		return
	}

	ecpm := totalCPM / float64(wins)
	spend := totalCPM / 1000
	if err := s.campaigns.RecordDSPReport(req.CampaignID, req.DSP, spend, ecpm, now); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true, "wins": wins})
}
