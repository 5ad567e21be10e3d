package vocab

// archiveFields is the closed set of field names the ads_archive endpoint
// can return. Anything outside this set is rejected before any network
// call is made.
var archiveFields = map[string]struct{}{
	"ad_creation_time":                   {},
	"ad_creative_bodies":                 {},
	"ad_creative_link_captions":          {},
	"ad_creative_link_descriptions":      {},
	"ad_creative_link_titles":            {},
	"ad_delivery_start_time":             {},
	"ad_delivery_stop_time":              {},
	"ad_snapshot_url":                    {},
	"age_country_gender_reach_breakdown": {},
	"beneficiary_payers":                 {},
	"br_total_reach":                     {},
	"bylines":                            {},
	"currency":                           {},
	"delivery_by_region":                 {},
	"demographic_distribution":           {},
	"estimated_audience_size":            {},
	"eu_total_reach":                     {},
	"id":                                 {},
	"impressions":                        {},
	"languages":                          {},
	"page_id":                            {},
	"page_name":                          {},
	"publisher_platforms":                {},
	"spend":                              {},
	"target_ages":                        {},
	"target_gender":                      {},
	"target_locations":                   {},
}

// ValidField reports whether name is in the closed archive field set.
func ValidField(name string) bool {
	_, ok := archiveFields[name]
	return ok
}
