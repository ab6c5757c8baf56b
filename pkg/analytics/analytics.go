// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics computes dashboard rollups from raw per-tick rows.
// Everything here is read-only and recomputed per invocation; at demo
// scale correctness wins over incremental maintenance.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/metric"
	"github.com/precisexyz/precise/pkg/model"
)

// Service joins the entity managers into dashboard-ready reads.
type Service struct {
	usage        *engine.UsageManager
	campaigns    *engine.CampaignManager
	users        *engine.UserManager
	assets       *engine.AssetManager
	attributions *engine.AttributionManager
	metrics      *metric.Metrics
	log          log.Logger
}

// SetMetrics attaches a query-duration histogram. Optional.
func (s *Service) SetMetrics(m *metric.Metrics) {
	s.metrics = m
}

func (s *Service) observe(start time.Time) {
	if s.metrics != nil {
		s.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}
}

// NewService creates an analytics service.
func NewService(
	usage *engine.UsageManager,
	campaigns *engine.CampaignManager,
	users *engine.UserManager,
	assets *engine.AssetManager,
	attributions *engine.AttributionManager,
	logger log.Logger,
) *Service {
	return &Service{
		usage:        usage,
		campaigns:    campaigns,
		users:        users,
		assets:       assets,
		attributions: attributions,
		log:          logger,
	}
}

// QueryPattern is one query type's share of total volume.
type QueryPattern struct {
	Type       string `json:"type"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// AssetPerformance is the per-asset usage rollup.
type AssetPerformance struct {
	AssetID         ids.ID          `json:"assetId"`
	AssetName       string          `json:"assetName"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalQueries    int             `json:"totalQueries"`
	AvgResponseTime float64         `json:"avgResponseTime"`
	RevenuePerQuery decimal.Decimal `json:"revenuePerQuery"`
}

// Patterns is the usage-pattern report for one owner.
type Patterns struct {
	QueryPatterns      []QueryPattern     `json:"queryPatterns"`
	HourlyDistribution [24]int            `json:"hourlyDistribution"`
	AssetPerformance   []AssetPerformance `json:"assetPerformance"`
	TotalQueries       int                `json:"totalQueries"`
}

// UsagePatterns scans all of an owner's usage buckets into a query-type
// distribution, an hourly histogram and per-asset performance.
func (s *Service) UsagePatterns(ownerID ids.ID) (*Patterns, error) {
	defer s.observe(time.Now())
	records, err := s.usage.ListByOwner(ownerID, 0)
	if err != nil {
		return nil, err
	}

	patterns := &Patterns{}
	typeCounts := make(map[string]int)
	for _, record := range records {
		for _, q := range record.Doc.Queries {
			typeCounts[q.QueryType]++
			patterns.TotalQueries++
			patterns.HourlyDistribution[q.Timestamp.Hour()]++
		}
	}

	for queryType, count := range typeCounts {
		pct := 0
		if patterns.TotalQueries > 0 {
			pct = int(math.Round(float64(count) / float64(patterns.TotalQueries) * 100))
		}
		patterns.QueryPatterns = append(patterns.QueryPatterns, QueryPattern{
			Type:       queryType,
			Count:      count,
			Percentage: pct,
		})
	}
	sort.Slice(patterns.QueryPatterns, func(i, j int) bool {
		return patterns.QueryPatterns[i].Count > patterns.QueryPatterns[j].Count
	})

	patterns.AssetPerformance, err = s.assetPerformance(records)
	if err != nil {
		return nil, err
	}
	return patterns, nil
}

func (s *Service) assetPerformance(records []engine.Stored[model.UsageRecord]) ([]AssetPerformance, error) {
	type accum struct {
		revenue   decimal.Decimal
		queries   int
		respTime  float64
		respCount int
	}
	byAsset := make(map[ids.ID]*accum)
	for _, record := range records {
		acc, ok := byAsset[record.Doc.AssetID]
		if !ok {
			acc = &accum{}
			byAsset[record.Doc.AssetID] = acc
		}
		acc.revenue = acc.revenue.Add(decimal.NewFromFloat(record.Doc.Revenue))
		acc.queries += len(record.Doc.Queries)
		for _, q := range record.Doc.Queries {
			acc.respTime += q.ResponseTime
			acc.respCount++
		}
	}

	out := make([]AssetPerformance, 0, len(byAsset))
	for assetID, acc := range byAsset {
		perf := AssetPerformance{
			AssetID:      assetID,
			AssetName:    "Unknown Asset",
			TotalRevenue: acc.revenue,
			TotalQueries: acc.queries,
		}
		if asset, err := s.assets.Get(assetID); err == nil {
			perf.AssetName = asset.Name
		}
		if acc.respCount > 0 {
			perf.AvgResponseTime = acc.respTime / float64(acc.respCount)
		}
		if acc.queries > 0 {
			perf.RevenuePerQuery = acc.revenue.Div(decimal.NewFromInt(int64(acc.queries)))
		}
		out = append(out, perf)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	return out, nil
}

// QueryLog is one flattened query entry with user and asset labels.
type QueryLog struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AssetID      ids.ID    `json:"assetId"`
	AssetName    string    `json:"assetName"`
	QueryType    string    `json:"queryType"`
	ResponseTime float64   `json:"responseTime"`
	UserName     string    `json:"userName"`
	UserCompany  string    `json:"userCompany"`
	Revenue      float64   `json:"revenue"`
}

// QueryLogs flattens an owner's usage buckets into per-query rows,
// newest first. Revenue is the bucket's revenue split evenly across its
// queries. A zero assetID means all assets.
func (s *Service) QueryLogs(ownerID, assetID ids.ID, n int) ([]QueryLog, error) {
	if n <= 0 {
		n = 50
	}
	records, err := s.usage.ListByOwner(ownerID, 0)
	if err != nil {
		return nil, err
	}

	var logs []QueryLog
	for _, record := range records {
		if !assetID.IsZero() && record.Doc.AssetID != assetID {
			continue
		}
		assetName := "Unknown Asset"
		if asset, err := s.assets.Get(record.Doc.AssetID); err == nil {
			assetName = asset.Name
		}
		perQuery := 0.0
		if len(record.Doc.Queries) > 0 {
			perQuery = record.Doc.Revenue / float64(len(record.Doc.Queries))
		}
		for _, q := range record.Doc.Queries {
			entry := QueryLog{
				ID:           fmt.Sprintf("%s-%d", record.ID, q.Timestamp.UnixMilli()),
				Timestamp:    q.Timestamp,
				AssetID:      record.Doc.AssetID,
				AssetName:    assetName,
				QueryType:    q.QueryType,
				ResponseTime: q.ResponseTime,
				UserName:     "Unknown User",
				UserCompany:  "Unknown Company",
				Revenue:      perQuery,
			}
			if user, err := s.users.Get(q.UserID); err == nil {
				entry.UserName = user.Name
				entry.UserCompany = user.Company
			}
			logs = append(logs, entry)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	if len(logs) > n {
		logs = logs[:n]
	}
	return logs, nil
}

// CampaignUsage is one campaign's consumption of an owner's data.
type CampaignUsage struct {
	CampaignID  ids.ID          `json:"id"`
	Name        string          `json:"name"`
	Advertiser  string          `json:"advertiser"`
	Queries     int             `json:"queries"`
	Revenue     decimal.Decimal `json:"revenue"`
	Performance float64         `json:"performance"`
	Trend       string          `json:"trend"`
}

// CampaignUsageFor cross-references query-log user IDs to the campaigns
// owned by those buyers, accumulating per-campaign query counts and a
// proportional revenue share. Sorted by revenue, highest first.
func (s *Service) CampaignUsageFor(ownerID ids.ID) ([]CampaignUsage, error) {
	defer s.observe(time.Now())
	records, err := s.usage.ListByOwner(ownerID, 0)
	if err != nil {
		return nil, err
	}

	buyerIDs := make(map[ids.ID]struct{})
	for _, record := range records {
		for _, q := range record.Doc.Queries {
			buyerIDs[q.UserID] = struct{}{}
		}
	}

	usageByCampaign := make(map[ids.ID]*CampaignUsage)
	for buyerID := range buyerIDs {
		user, err := s.users.Get(buyerID)
		if err != nil {
			continue
		}
		campaigns, err := s.campaigns.ListByBuyer(buyerID)
		if err != nil {
			return nil, err
		}

		for _, campaign := range campaigns {
			row, ok := usageByCampaign[campaign.ID]
			if !ok {
				advertiser := user.Company
				if advertiser == "" {
					advertiser = "Unknown"
				}
				trend := "up"
				if campaign.Doc.CurrentCAC > campaign.Doc.PreviousCAC {
					trend = "down"
				}
				row = &CampaignUsage{
					CampaignID:  campaign.ID,
					Name:        campaign.Doc.Name,
					Advertiser:  advertiser,
					Performance: campaign.Doc.ROAS,
					Trend:       trend,
				}
				usageByCampaign[campaign.ID] = row
			}

			for _, record := range records {
				buyerQueries := 0
				for _, q := range record.Doc.Queries {
					if q.UserID == buyerID {
						buyerQueries++
					}
				}
				if buyerQueries == 0 || len(record.Doc.Queries) == 0 {
					continue
				}
				row.Queries += buyerQueries
				share := decimal.NewFromFloat(record.Doc.Revenue).
					Div(decimal.NewFromInt(int64(len(record.Doc.Queries)))).
					Mul(decimal.NewFromInt(int64(buyerQueries)))
				row.Revenue = row.Revenue.Add(share)
			}
		}
	}

	out := make([]CampaignUsage, 0, len(usageByCampaign))
	for _, row := range usageByCampaign {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Revenue.GreaterThan(out[j].Revenue)
	})
	return out, nil
}
