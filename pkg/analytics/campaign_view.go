// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package analytics

import (
	"sort"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/model"
)

// dspDisplayNames maps internal DSP keys to their public labels.
var dspDisplayNames = map[string]string{
	"madhive": "MadHive",
	"ttd":     "The Trade Desk",
	"amazon":  "Amazon DSP",
	"dv360":   "Google DV360",
	"meta":    "Meta",
}

// DSPBreakdown is one DSP row of the campaign detail view.
type DSPBreakdown struct {
	Name   string  `json:"name"`
	Spend  float64 `json:"spend"`
	ECPM   float64 `json:"ecpm"`
	ROAS   float64 `json:"roas"`
	Status string  `json:"status"`
}

// DataSourceCredit is one contributing data asset with its share of the
// campaign's CAC improvement.
type DataSourceCredit struct {
	AssetID      ids.ID  `json:"assetId"`
	AssetName    string  `json:"assetName"`
	Contribution float64 `json:"contribution"`
	Value        float64 `json:"value"`
}

// CampaignView is the enriched campaign detail: the campaign itself plus
// its recent CAC history, per-DSP breakdown and top data sources.
type CampaignView struct {
	ID             ids.ID               `json:"id"`
	Campaign       model.Campaign       `json:"campaign"`
	History        []model.CampaignEvent `json:"history"`
	DSPBreakdown   []DSPBreakdown       `json:"dspBreakdown"`
	TopDataSources []DataSourceCredit   `json:"topDataSources"`
}

// CampaignDetail assembles the full view for one campaign: the last 30
// history points oldest first, every DSP row labeled for display, and
// the three highest-credit attributions.
func (s *Service) CampaignDetail(campaignID ids.ID) (*CampaignView, error) {
	campaign, err := s.campaigns.Get(campaignID)
	if err != nil {
		return nil, err
	}

	history, err := s.campaigns.History(campaignID, 30)
	if err != nil {
		return nil, err
	}
	events := make([]model.CampaignEvent, len(history))
	for i, h := range history {
		events[i] = h.Doc
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	rows, err := s.campaigns.DSPRows(campaignID, 0)
	if err != nil {
		return nil, err
	}
	breakdown := make([]DSPBreakdown, 0, len(rows))
	for _, row := range rows {
		name := dspDisplayNames[row.Doc.DSP]
		if name == "" {
			name = row.Doc.DSP
		}
		breakdown = append(breakdown, DSPBreakdown{
			Name:   name,
			Spend:  row.Doc.Spend,
			ECPM:   row.Doc.CurrentECPM,
			ROAS:   row.Doc.ROAS,
			Status: string(row.Doc.Status),
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Spend > breakdown[j].Spend
	})

	sources, err := s.topDataSources(campaignID, 3)
	if err != nil {
		return nil, err
	}

	return &CampaignView{
		ID:             campaignID,
		Campaign:       *campaign,
		History:        events,
		DSPBreakdown:   breakdown,
		TopDataSources: sources,
	}, nil
}

func (s *Service) topDataSources(campaignID ids.ID, n int) ([]DataSourceCredit, error) {
	attributions, err := s.attributions.ListByCampaign(campaignID)
	if err != nil {
		return nil, err
	}

	byAsset := make(map[ids.ID]*DataSourceCredit)
	for _, attr := range attributions {
		credit, ok := byAsset[attr.Doc.DataSourceID]
		if !ok {
			credit = &DataSourceCredit{AssetID: attr.Doc.DataSourceID, AssetName: "Unknown Asset"}
			if asset, err := s.assets.Get(attr.Doc.DataSourceID); err == nil {
				credit.AssetName = asset.Name
			}
			byAsset[attr.Doc.DataSourceID] = credit
		}
		credit.Contribution += attr.Doc.Percentage
		credit.Value += attr.Doc.Value
	}

	out := make([]DataSourceCredit, 0, len(byAsset))
	for _, credit := range byAsset {
		out = append(out, *credit)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
