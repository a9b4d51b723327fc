package domain

// SavedRecord is a saved campaign name / URL pair.
//
// ID is the list length at save time. It is never recomputed after a removal,
// so it is a display artifact and not a key: two records may share an ID.
type SavedRecord struct {
	ID           string `json:"id"`
	CampaignName string `json:"campaignName"`
	URL          string `json:"url"`
}
