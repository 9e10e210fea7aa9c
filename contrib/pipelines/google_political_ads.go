package pipelines

import (
	"go.nownabe.dev/csvetl"
)

const politicalAdsBundle = "google-political-ads-transparency-bundle/"

// PoliticalAdsAdvertiserGeoSpend builds a pipeline for google_political_ads.advertiser_geo_spend
// from the transparency report bundle.
func PoliticalAdsAdvertiserGeoSpend(n csvetl.Notifier) *csvetl.Pipeline {
	schema := Schema("google_political_ads.advertiser_geo_spend")

	return &csvetl.Pipeline{
		Name:          "google_political_ads.advertiser_geo_spend",
		Description:   "Election ad spend of advertisers by region",
		Schedule:      "@daily",
		Compression:   csvetl.CompressionZip,
		ArchiveMember: politicalAdsBundle + "google-political-ads-advertiser-geo-spend.csv",
		Rename: map[string]string{
			"Advertiser_ID":               "advertiser_id",
			"Advertiser_Name":             "advertiser_name",
			"Country":                     "country",
			"Country_Subdivision_Primary": "country_subdivision_primary",
			"Spend_USD":                   "spend_usd",
			"Spend_EUR":                   "spend_eur",
			"Spend_INR":                   "spend_inr",
			"Spend_BGN":                   "spend_bgn",
			"Spend_HRK":                   "spend_hrk",
			"Spend_CZK":                   "spend_czk",
			"Spend_DKK":                   "spend_dkk",
			"Spend_HUF":                   "spend_huf",
			"Spend_PLN":                   "spend_pln",
			"Spend_RON":                   "spend_ron",
			"Spend_SEK":                   "spend_sek",
			"Spend_GBP":                   "spend_gbp",
			"Spend_NZD":                   "spend_nzd",
		},
		Schema:   schema,
		Notifier: n,
	}
}

// PoliticalAdsCreativeStats builds a pipeline for google_political_ads.creative_stats
// from the transparency report bundle.
func PoliticalAdsCreativeStats(n csvetl.Notifier) *csvetl.Pipeline {
	schema := Schema("google_political_ads.creative_stats")

	return &csvetl.Pipeline{
		Name:          "google_political_ads.creative_stats",
		Description:   "Election ad creatives and their statistics",
		Schedule:      "@daily",
		Compression:   csvetl.CompressionZip,
		ArchiveMember: politicalAdsBundle + "google-political-ads-creative-stats.csv",
		Rename: map[string]string{
			"Ad_ID":                  "ad_id",
			"Ad_URL":                 "ad_url",
			"Ad_Type":                "ad_type",
			"Regions":                "regions",
			"Advertiser_ID":          "advertiser_id",
			"Advertiser_Name":        "advertiser_name",
			"Ad_Campaigns_List":      "ad_campaigns_list",
			"Date_Range_Start":       "date_range_start",
			"Date_Range_End":         "date_range_end",
			"Num_of_Days":            "num_of_days",
			"Impressions":            "impressions",
			"Spend_USD":              "spend_usd",
			"Spend_Range_Min_USD":    "spend_range_min_usd",
			"Spend_Range_Max_USD":    "spend_range_max_usd",
			"Spend_Range_Min_EUR":    "spend_range_min_eur",
			"Spend_Range_Max_EUR":    "spend_range_max_eur",
			"Spend_Range_Min_INR":    "spend_range_min_inr",
			"Spend_Range_Max_INR":    "spend_range_max_inr",
			"Spend_Range_Min_BGN":    "spend_range_min_bgn",
			"Spend_Range_Max_BGN":    "spend_range_max_bgn",
			"Spend_Range_Min_HRK":    "spend_range_min_hrk",
			"Spend_Range_Max_HRK":    "spend_range_max_hrk",
			"Spend_Range_Min_CZK":    "spend_range_min_czk",
			"Spend_Range_Max_CZK":    "spend_range_max_czk",
			"Spend_Range_Min_DKK":    "spend_range_min_dkk",
			"Spend_Range_Max_DKK":    "spend_range_max_dkk",
			"Spend_Range_Min_HUF":    "spend_range_min_huf",
			"Spend_Range_Max_HUF":    "spend_range_max_huf",
			"Spend_Range_Min_PLN":    "spend_range_min_pln",
			"Spend_Range_Max_PLN":    "spend_range_max_pln",
			"Spend_Range_Min_RON":    "spend_range_min_ron",
			"Spend_Range_Max_RON":    "spend_range_max_ron",
			"Spend_Range_Min_SEK":    "spend_range_min_sek",
			"Spend_Range_Max_SEK":    "spend_range_max_sek",
			"Spend_Range_Min_GBP":    "spend_range_min_gbp",
			"Spend_Range_Max_GBP":    "spend_range_max_gbp",
			"Spend_Range_Min_NZD":    "spend_range_min_nzd",
			"Spend_Range_Max_NZD":    "spend_range_max_nzd",
			"Age_Targeting":          "age_targeting",
			"Gender_Targeting":       "gender_targeting",
			"Geo_Targeting_Included": "geo_targeting_included",
			"Geo_Targeting_Excluded": "geo_targeting_excluded",
			"First_Served_Timestamp": "first_served_timestamp",
			"Last_Served_Timestamp":  "last_served_timestamp",
		},
		Schema:   schema,
		Notifier: n,
	}
}
