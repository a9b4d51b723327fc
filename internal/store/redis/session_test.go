package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
)

func TestSessionKeys(t *testing.T) {
	key := SessionKey("3f1c")
	if key != "utmgen:session:3f1c" {
		t.Errorf("SessionKey() = %q", key)
	}

	id, err := ExtractSessionID(key)
	if err != nil {
		t.Fatalf("ExtractSessionID() error = %v", err)
	}
	if id != "3f1c" {
		t.Errorf("ExtractSessionID() = %q, want %q", id, "3f1c")
	}
}

func TestExtractSessionIDInvalid(t *testing.T) {
	for _, key := range []string{"", "utmgen:session:", "other:session:abc"} {
		if _, err := ExtractSessionID(key); err == nil {
			t.Errorf("ExtractSessionID(%q) should fail", key)
		}
	}
}

func TestNewSessionStoreDefaultTTL(t *testing.T) {
	s := NewSessionStore(nil, 0)
	if s.ttl != DefaultSessionTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultSessionTTL)
	}
	if s.Name() != "redis" {
		t.Errorf("Name() = %q", s.Name())
	}
}

// The stored blob must keep the record field names used by the saved list.
func TestDecodeSession(t *testing.T) {
	state := domain.NewSessionState("sid", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	state.SaveRecord("FY25_Q1_US_Product_Education_Academy_Intro", "https://keboola.com?utm_campaign=x")

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatal(err)
	}

	var raw struct {
		SavedRecords []map[string]string `json:"saved_records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	want := []map[string]string{{
		"id":           "0",
		"campaignName": "FY25_Q1_US_Product_Education_Academy_Intro",
		"url":          "https://keboola.com?utm_campaign=x",
	}}
	if diff := cmp.Diff(want, raw.SavedRecords); diff != "" {
		t.Errorf("record layout mismatch (-want +got):\n%s", diff)
	}

	got, err := decodeSession(data)
	if err != nil {
		t.Fatalf("decodeSession() error = %v", err)
	}
	if diff := cmp.Diff(state, got); diff != "" {
		t.Errorf("decodeSession() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSessionNilRecords(t *testing.T) {
	got, err := decodeSession([]byte(`{"id":"sid"}`))
	if err != nil {
		t.Fatalf("decodeSession() error = %v", err)
	}
	if got.SavedRecords == nil {
		t.Error("decodeSession() should normalize records to an empty list")
	}

	if _, err := decodeSession([]byte(`{`)); err == nil {
		t.Error("decodeSession() should reject invalid json")
	}
}
