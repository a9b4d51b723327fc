package domain

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// Selection holds the in-progress naming inputs of a session.
type Selection struct {
	FiscalYear string `json:"fiscal_year,omitempty"`
	Quarter    string `json:"quarter,omitempty"`
	Geo        string `json:"geo,omitempty"`
	Group      string `json:"group,omitempty"`
	Category   string `json:"category,omitempty"`
	Source     string `json:"source,omitempty"`
	Label      string `json:"label,omitempty"`
}

// SessionState is the state of one user session.
//
// A session starts empty, is mutated by every user action and is discarded
// when the session ends. Nothing outlives it.
type SessionState struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID string `json:"id"`

	// ─────────────────────────────
	// Form inputs
	// ─────────────────────────────

	Selection       Selection `json:"selection"`
	DestinationLink string    `json:"destination_link,omitempty"`
	UTM             UTMParams `json:"utm,omitempty"`

	// ─────────────────────────────
	// Latest results
	// ─────────────────────────────

	CampaignName string `json:"campaign_name,omitempty"`
	GeneratedURL string `json:"generated_url,omitempty"`

	// SavedRecords keeps insertion order.
	SavedRecords []SavedRecord `json:"saved_records"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionState returns an empty session.
func NewSessionState(id string, now time.Time) *SessionState {
	return &SessionState{
		ID:           id,
		SavedRecords: []SavedRecord{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanSave reports whether both a campaign name and a generated URL are available.
func (s *SessionState) CanSave() bool {
	return s.CampaignName != "" && s.GeneratedURL != ""
}

// SaveRecord appends a record whose ID is the current list length.
func (s *SessionState) SaveRecord(campaignName, url string) SavedRecord {
	rec := SavedRecord{
		ID:           strconv.Itoa(len(s.SavedRecords)),
		CampaignName: campaignName,
		URL:          url,
	}
	s.SavedRecords = append(s.SavedRecords, rec)
	return rec
}

// Records returns a copy of the saved records in insertion order.
func (s *SessionState) Records() []SavedRecord {
	out := make([]SavedRecord, len(s.SavedRecords))
	copy(out, s.SavedRecords)
	return out
}

// RemoveRecord deletes the record at index. Later records shift down and keep their IDs.
func (s *SessionState) RemoveRecord(index int) error {
	if index < 0 || index >= len(s.SavedRecords) {
		return fmt.Errorf("%w: %d (have %d records)", ErrIndexOutOfRange, index, len(s.SavedRecords))
	}
	s.SavedRecords = slices.Delete(s.SavedRecords, index, index+1)
	return nil
}

// Clone returns a deep copy.
func (s *SessionState) Clone() *SessionState {
	cp := *s
	cp.UTM = maps.Clone(s.UTM)
	cp.SavedRecords = s.Records()
	return &cp
}
