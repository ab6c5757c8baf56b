// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package model

// Collection names.
const (
	Users          = "users"
	DataAssets     = "dataAssets"
	Earnings       = "earnings"
	Campaigns      = "campaigns"
	CampaignEvents = "campaignHistory"
	Attributions   = "attributions"
	DSPRows        = "dspPerformance"
	UsageRecords   = "usageAnalytics"
	Recs           = "recommendations"
	HealthScores   = "assetHealthScores"
	Contacts       = "contacts"
)

// Index names. Indexed fields are immutable references; mutable fields
// (status, timestamps) are filtered scan-side.
const (
	ByOwner      = "by_owner"
	ByBuyer      = "by_buyer"
	ByCampaign   = "by_campaign"
	ByAsset      = "by_asset"
	ByDataSource = "by_data_source"
	ByEmail      = "by_email"
	ByRole       = "by_role"
)
