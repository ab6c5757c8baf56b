// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package model

import (
	"time"

	"github.com/precisexyz/precise/pkg/ids"
)

// Role identifies which side of the marketplace a user is on.
type Role string

const (
	RoleDataOwner  Role = "DATA_OWNER"
	RoleMediaBuyer Role = "MEDIA_BUYER"
)

// User is a marketplace account.
type User struct {
	Email               string    `json:"email"`
	Name                string    `json:"name"`
	Role                Role      `json:"role"`
	Company             string    `json:"company"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

// AssetStatus is the lifecycle state of a data asset.
type AssetStatus string

const (
	AssetActive  AssetStatus = "active"
	AssetPaused  AssetStatus = "paused"
	AssetPending AssetStatus = "pending"
)

// DataAsset is a sellable data set owned by a DATA_OWNER.
type DataAsset struct {
	OwnerID         ids.ID      `json:"ownerId"`
	Name            string      `json:"name"`
	Type            string      `json:"type"`
	QualityScore    float64     `json:"qualityScore"` // 0-100
	RecordCount     int64       `json:"recordCount"`
	UpdateFrequency int         `json:"updateFrequency"` // hours
	RevenuePerK     float64     `json:"revenuePerK"`     // revenue per 1000 records
	IndustryAvgPerK float64     `json:"industryAvgPerK"`
	UsageRate       float64     `json:"usageRate"` // percentage 0-100
	MonthlyRevenue  float64     `json:"monthlyRevenue"`
	Status          AssetStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// EarningStatus tracks whether an earning has been paid out.
type EarningStatus string

const (
	EarningPending     EarningStatus = "pending"
	EarningDistributed EarningStatus = "distributed"
)

// Earning is one payout event for an asset owner. Append-only.
type Earning struct {
	OwnerID     ids.ID        `json:"ownerId"`
	AssetID     ids.ID        `json:"assetId"`
	Amount      float64       `json:"amount"`
	Campaign    string        `json:"campaign"`
	Impressions int64         `json:"impressions"`
	Timestamp   time.Time     `json:"timestamp"`
	Status      EarningStatus `json:"status"`
}

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

// Campaign is a media buyer's ad campaign.
type Campaign struct {
	BuyerID     ids.ID         `json:"buyerId"`
	Name        string         `json:"name"`
	Status      CampaignStatus `json:"status"`
	CurrentCAC  float64        `json:"currentCAC"`
	PreviousCAC float64        `json:"previousCAC"`
	TargetCAC   float64        `json:"targetCAC"`
	LTV         float64        `json:"ltv"`
	// EnhancementLaunch is set once enhanced audience data is activated
	// on the campaign; the CAC improvement curve runs from this instant.
	EnhancementLaunch *time.Time `json:"enhancementLaunch,omitempty"`
	Spend             float64    `json:"spend"`
	Revenue           float64    `json:"revenue"`
	ROAS              float64    `json:"roas"`
	DSPs              []string   `json:"dsps"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CampaignEvent is one row of campaign performance history.
// Never mutated after insert.
type CampaignEvent struct {
	CampaignID  ids.ID    `json:"campaignId"`
	Date        time.Time `json:"date"`
	CAC         float64   `json:"cac"`
	Spend       float64   `json:"spend"`
	Conversions int64     `json:"conversions"`
	Revenue     float64   `json:"revenue"`
}

// DSPStatus classifies a DSP's inventory curve for a campaign.
type DSPStatus string

const (
	DSPScaling    DSPStatus = "scaling"
	DSPOptimizing DSPStatus = "optimizing"
	DSPSaturated  DSPStatus = "saturated"
)

// DSPPerformance is the per-(campaign, DSP) yield row.
type DSPPerformance struct {
	CampaignID  ids.ID    `json:"campaignId"`
	DSP         string    `json:"dsp"`
	Spend       float64   `json:"spend"`
	CurrentECPM float64   `json:"currentECPM"`
	ECPMTrend   float64   `json:"ecpmTrend"` // percentage change
	ROAS        float64   `json:"roas"`
	Status      DSPStatus `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// Attribution credits part of a campaign's CAC reduction to one data asset.
type Attribution struct {
	CampaignID   ids.ID    `json:"campaignId"`
	DataSourceID ids.ID    `json:"dataSourceId"`
	CACReduction float64   `json:"cacReduction"`
	Percentage   float64   `json:"percentage"` // contribution percentage
	Value        float64   `json:"value"`      // monetary value
	Timestamp    time.Time `json:"timestamp"`
}

// QueryRecord is one buyer query against an asset, embedded in the
// asset's daily usage record.
type QueryRecord struct {
	UserID       ids.ID    `json:"userId"`
	Timestamp    time.Time `json:"timestamp"`
	QueryType    string    `json:"queryType"`
	ResponseTime float64   `json:"responseTime"` // milliseconds
}

// MaxQueriesPerDay bounds the embedded query log of a daily usage
// record. Counters keep accumulating past the cap; only the per-query
// detail is shed.
const MaxQueriesPerDay = 500

// UsageRecord is the daily usage bucket for one asset.
type UsageRecord struct {
	AssetID     ids.ID        `json:"assetId"`
	OwnerID     ids.ID        `json:"ownerId"`
	Date        string        `json:"date"` // YYYY-MM-DD
	AccessCount int64         `json:"accessCount"`
	UniqueUsers int           `json:"uniqueUsers"`
	Queries     []QueryRecord `json:"queries"`
	Revenue     float64       `json:"revenue"`
	TopUseCase  string        `json:"topUseCase"`
}

// RecStatus is the user-driven lifecycle of a recommendation.
type RecStatus string

const (
	RecNew       RecStatus = "new"
	RecViewed    RecStatus = "viewed"
	RecApplied   RecStatus = "applied"
	RecDismissed RecStatus = "dismissed"
)

// RecPriority orders recommendations on the dashboard.
type RecPriority string

const (
	PriorityHigh   RecPriority = "high"
	PriorityMedium RecPriority = "medium"
	PriorityLow    RecPriority = "low"
)

// Impact is the estimated effect of applying a recommendation.
type Impact struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Recommendation is a suggested optimization, mutated only by explicit
// user action.
type Recommendation struct {
	UserID      ids.ID      `json:"userId"`
	Type        string      `json:"type"` // data_optimization | campaign_optimization
	Priority    RecPriority `json:"priority"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      Impact      `json:"estimatedImpact"`
	Status      RecStatus   `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ScorePoint is a dated overall-score sample in a health history.
type ScorePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Score float64 `json:"score"`
}

// HealthScore is the quality breakdown for one asset. History keeps the
// last 30 daily samples.
type HealthScore struct {
	AssetID         ids.ID       `json:"assetId"`
	OwnerID         ids.ID       `json:"ownerId"`
	OverallScore    float64      `json:"overallScore"`
	Completeness    float64      `json:"completeness"`
	Accuracy        float64      `json:"accuracy"`
	Freshness       float64      `json:"freshness"`
	Consistency     float64      `json:"consistency"`
	Uniqueness      float64      `json:"uniqueness"`
	Recommendations []string     `json:"recommendations"`
	ScoreHistory    []ScorePoint `json:"scoreHistory"`
	LastUpdated     time.Time    `json:"lastUpdated"`
}

// ContactStatus is the follow-up state of a lead.
type ContactStatus string

const (
	ContactNew       ContactStatus = "new"
	ContactContacted ContactStatus = "contacted"
	ContactQualified ContactStatus = "qualified"
	ContactConverted ContactStatus = "converted"
)

// Contact is a form submission or onboarding lead.
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role,omitempty"`
	Message  string `json:"message,omitempty"`
	Source   string `json:"source"`
	FormType string `json:"formType"`

	// Onboarding extras
	Industry  string          `json:"industry,omitempty"`
	Objective string          `json:"objective,omitempty"`
	DataTypes map[string]bool `json:"dataTypes,omitempty"`
	Platforms map[string]bool `json:"platforms,omitempty"`
	SpendTier string          `json:"spend,omitempty"`

	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// Normalize resolves optional fields to their defaults. Called at the
// decode boundary instead of scattering fallbacks through read sites.
func (c *Contact) Normalize() {
	if c.Source == "" {
		c.Source = "contact-form"
	}
	if c.FormType == "" {
		c.FormType = "contact"
	}
	if c.Status == "" {
		c.Status = ContactNew
	}
}

// Normalize resolves optional fields to their defaults.
func (r *Recommendation) Normalize() {
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Status == "" {
		r.Status = RecNew
	}
}

// Normalize resolves optional fields to their defaults.
func (d *DSPPerformance) Normalize() {
	if d.Status == "" {
		d.Status = DSPOptimizing
	}
}

// PriorityRank maps priorities to sort order, high first.
func PriorityRank(p RecPriority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}
