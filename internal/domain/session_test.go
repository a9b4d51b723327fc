package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestSession(t *testing.T, n int) *SessionState {
	t.Helper()
	s := NewSessionState("sid", time.Unix(0, 0))
	for i := 0; i < n; i++ {
		s.SaveRecord(string(rune('a'+i)), "https://example.com/"+string(rune('a'+i)))
	}
	return s
}

func TestSaveRecordRoundTrip(t *testing.T) {
	s := NewSessionState("sid", time.Now())

	rec := s.SaveRecord("FY25_Q2_US_Marketing_Events_Webinar_X", "https://keboola.com?utm_campaign=X")
	if rec.ID != "0" {
		t.Errorf("first record ID = %q, want %q", rec.ID, "0")
	}

	list := s.Records()
	if len(list) != 1 {
		t.Fatalf("Records() length = %d, want 1", len(list))
	}
	if list[0].CampaignName != rec.CampaignName || list[0].URL != rec.URL {
		t.Errorf("Records()[0] = %+v, want %+v", list[0], rec)
	}
}

func TestRemoveRecord(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		index   int
		wantIDs []string
	}{
		{name: "first", size: 3, index: 0, wantIDs: []string{"1", "2"}},
		{name: "middle", size: 3, index: 1, wantIDs: []string{"0", "2"}},
		{name: "last", size: 3, index: 2, wantIDs: []string{"0", "1"}},
		{name: "only", size: 1, index: 0, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.size)

			if err := s.RemoveRecord(tt.index); err != nil {
				t.Fatalf("RemoveRecord(%d) error = %v", tt.index, err)
			}

			got := make([]string, 0)
			for _, r := range s.Records() {
				got = append(got, r.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, got); diff != "" {
				t.Errorf("remaining IDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveRecordOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 2, 10} {
		s := newTestSession(t, 2)
		before := s.Records()

		err := s.RemoveRecord(idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RemoveRecord(%d) error = %v, want ErrIndexOutOfRange", idx, err)
		}
		if diff := cmp.Diff(before, s.Records()); diff != "" {
			t.Errorf("RemoveRecord(%d) changed the list (-before +after):\n%s", idx, diff)
		}
	}
}

// IDs are assigned from the list length and never renumbered, so they can collide.
func TestRecordIDsAfterRemoval(t *testing.T) {
	s := newTestSession(t, 2)
	if err := s.RemoveRecord(0); err != nil {
		t.Fatal(err)
	}

	rec := s.SaveRecord("c", "https://example.com/c")
	if rec.ID != "1" {
		t.Errorf("ID after removal = %q, want %q", rec.ID, "1")
	}

	list := s.Records()
	if list[0].ID != "1" || list[1].ID != "1" {
		t.Errorf("IDs = [%s %s], want [1 1]", list[0].ID, list[1].ID)
	}
}

func TestRecordsIsIdempotent(t *testing.T) {
	s := newTestSession(t, 3)

	first := s.Records()
	second := s.Records()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Records() not idempotent (-first +second):\n%s", diff)
	}

	first[0].URL = "mutated"
	if s.Records()[0].URL == "mutated" {
		t.Error("Records() should return a copy")
	}
}

func TestCanSave(t *testing.T) {
	tests := []struct {
		name string
		cn   string
		url  string
		want bool
	}{
		{"both", "n", "u", true},
		{"name only", "n", "", false},
		{"url only", "", "u", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessionState("sid", time.Now())
			s.CampaignName = tt.cn
			s.GeneratedURL = tt.url
			if got := s.CanSave(); got != tt.want {
				t.Errorf("CanSave() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionClone(t *testing.T) {
	s := newTestSession(t, 2)
	s.UTM = UTMParams{UTMSource: "google"}

	cp := s.Clone()
	cp.UTM[UTMSource] = "bing"
	cp.SavedRecords[0].URL = "changed"
	cp.SaveRecord("x", "y")

	if s.UTM[UTMSource] != "google" {
		t.Error("Clone() should deep copy UTM params")
	}
	if s.SavedRecords[0].URL == "changed" || len(s.SavedRecords) != 2 {
		t.Error("Clone() should deep copy saved records")
	}
}
