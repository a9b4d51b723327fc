package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/utmgen/internal/campaign"
	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/httpserver/deps"
	"github.com/MrSnakeDoc/utmgen/internal/index"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/session"
	"github.com/MrSnakeDoc/utmgen/internal/store/memory"
)

func testDeps(t *testing.T) deps.Deps {
	t.Helper()
	log := logger.Nop()
	st := memory.NewStore()
	idx := index.NewCatalogIndex()

	return deps.Deps{
		Logger:           log,
		StartTime:        time.Now(),
		Version:          "test",
		TimeNow:          time.Now,
		Catalog:          idx,
		Store:            st,
		Sessions:         session.NewManager(session.Options{HashKey: []byte("0123456789abcdef0123456789abcdef")}, log),
		Campaigns:        campaign.NewService(st, idx, log),
		RateBurst:        100,
		RateRefillPerMin: 100,
	}
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, d deps.Deps) *client {
	t.Helper()
	srv := httptest.NewServer(NewRouter(d))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// do sends body as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		c.t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type records struct {
	Records []domain.SavedRecord `json:"records"`
}

func TestCampaignFlow(t *testing.T) {
	c := newClient(t, testDeps(t))

	var name struct {
		CampaignName string `json:"campaign_name"`
	}
	status := c.do(http.MethodPost, "/api/name", map[string]string{
		"fiscal_year": "FY25",
		"quarter":     "Q2",
		"geo":         "US",
		"group":       "Marketing",
		"category":    "Events",
		"source":      "Webinar",
		"label":       "My Campaign",
	}, &name)
	if status != http.StatusOK {
		t.Fatalf("POST /api/name status = %d", status)
	}
	if name.CampaignName != "FY25_Q2_US_Marketing_Events_Webinar_My_Campaign" {
		t.Errorf("campaign_name = %q", name.CampaignName)
	}

	var u struct {
		URL string `json:"url"`
	}
	status = c.do(http.MethodPost, "/api/url", map[string]string{
		"destination_link": "https://keboola.com/page?x=1",
		"utm_source":       "google",
	}, &u)
	if status != http.StatusOK {
		t.Fatalf("POST /api/url status = %d", status)
	}
	wantURL := "https://keboola.com/page?x=1&utm_campaign=FY25_Q2_US_Marketing_Events_Webinar_My_Campaign&utm_source=google"
	if u.URL != wantURL {
		t.Errorf("url = %q, want %q", u.URL, wantURL)
	}

	var state struct {
		CampaignName string `json:"campaign_name"`
		GeneratedURL string `json:"generated_url"`
		CanSave      bool   `json:"can_save"`
	}
	if status := c.do(http.MethodGet, "/api/session", nil, &state); status != http.StatusOK {
		t.Fatalf("GET /api/session status = %d", status)
	}
	if !state.CanSave || state.GeneratedURL != wantURL {
		t.Errorf("session = %+v", state)
	}

	var saved domain.SavedRecord
	if status := c.do(http.MethodPost, "/api/records", nil, &saved); status != http.StatusCreated {
		t.Fatalf("POST /api/records status = %d", status)
	}

	var list records
	if status := c.do(http.MethodGet, "/api/records", nil, &list); status != http.StatusOK {
		t.Fatalf("GET /api/records status = %d", status)
	}
	want := []domain.SavedRecord{{ID: "0", CampaignName: name.CampaignName, URL: wantURL}}
	if diff := cmp.Diff(want, list.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	if status := c.do(http.MethodDelete, "/api/records/3", nil, nil); status != http.StatusNotFound {
		t.Errorf("DELETE /api/records/3 status = %d, want 404", status)
	}
	if status := c.do(http.MethodDelete, "/api/records/abc", nil, nil); status != http.StatusBadRequest {
		t.Errorf("DELETE /api/records/abc status = %d, want 400", status)
	}

	var remaining records
	if status := c.do(http.MethodDelete, "/api/records/0", nil, &remaining); status != http.StatusOK {
		t.Fatalf("DELETE /api/records/0 status = %d", status)
	}
	if len(remaining.Records) != 0 {
		t.Errorf("records after delete = %v", remaining.Records)
	}

	if status := c.do(http.MethodDelete, "/api/session", nil, nil); status != http.StatusNoContent {
		t.Fatalf("DELETE /api/session status = %d", status)
	}
	if status := c.do(http.MethodGet, "/api/session", nil, &state); status != http.StatusOK {
		t.Fatalf("GET /api/session status = %d", status)
	}
	if state.CanSave || state.CampaignName != "" {
		t.Errorf("session after end = %+v, want empty", state)
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing name fields", http.MethodPost, "/api/name", map[string]string{"geo": "US"}, http.StatusBadRequest},
		{"invalid selection", http.MethodPost, "/api/name", map[string]string{
			"fiscal_year": "FY99", "quarter": "Q1", "geo": "US", "group": "Marketing",
			"category": "Events", "source": "Webinar", "label": "x",
		}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/name", map[string]string{"colour": "red"}, http.StatusBadRequest},
		{"blank existing name", http.MethodPost, "/api/name/existing", map[string]string{"campaign_name": ""}, http.StatusBadRequest},
		{"missing destination", http.MethodPost, "/api/url", map[string]string{"utm_source": "x"}, http.StatusBadRequest},
		{"malformed destination", http.MethodPost, "/api/url", map[string]string{"destination_link": "http://[::1"}, http.StatusBadRequest},
		{"nothing to save", http.MethodPost, "/api/records", nil, http.StatusConflict},
		{"remove from empty list", http.MethodDelete, "/api/records/0", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, testDeps(t))

			var body struct {
				Error string `json:"error"`
			}
			if status := c.do(tt.method, tt.path, tt.body, &body); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
			if body.Error == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestTaxonomyEndpoints(t *testing.T) {
	c := newClient(t, testDeps(t))

	var opts campaign.Options
	if status := c.do(http.MethodGet, "/api/options", nil, &opts); status != http.StatusOK {
		t.Fatalf("GET /api/options status = %d", status)
	}
	if diff := cmp.Diff([]string{"Marketing", "Partners", "Product", "Sales"}, opts.Groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	var cats struct {
		Categories []string `json:"categories"`
	}
	c.do(http.MethodGet, "/api/taxonomy/categories?group=Sales", nil, &cats)
	if diff := cmp.Diff([]string{"AE Outbound", "BDR Outbound"}, cats.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	var srcs struct {
		Sources []string `json:"sources"`
	}
	c.do(http.MethodGet, "/api/taxonomy/sources?group=Partners&category=Marketplace", nil, &srcs)
	if diff := cmp.Diff([]string{"Azure Marketplace", "Google Marketplace"}, srcs.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	d := testDeps(t)
	alice := newClient(t, d)
	bob := newClient(t, d)

	alice.do(http.MethodPost, "/api/name/existing", map[string]string{"campaign_name": "alice"}, nil)

	var state struct {
		CampaignName string `json:"campaign_name"`
	}
	bob.do(http.MethodGet, "/api/session", nil, &state)
	if state.CampaignName != "" {
		t.Errorf("bob sees campaign %q from another session", state.CampaignName)
	}
}

func TestOpsEndpoints(t *testing.T) {
	d := testDeps(t)
	c := newClient(t, d)

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if status := c.do(http.MethodGet, "/healthz", nil, &health); status != http.StatusOK || health.Status != "ok" {
		t.Errorf("GET /healthz = %d %+v", status, health)
	}

	var ready struct {
		Ready bool   `json:"ready"`
		Store string `json:"store"`
	}
	if status := c.do(http.MethodGet, "/readyz", nil, &ready); status != http.StatusOK || !ready.Ready {
		t.Errorf("GET /readyz = %d %+v", status, ready)
	}

	var infra struct {
		Mode string `json:"mode"`
	}
	if status := c.do(http.MethodGet, "/infra", nil, &infra); status != http.StatusOK || infra.Mode != "operational" {
		t.Errorf("GET /infra = %d %+v", status, infra)
	}

	if status := c.do(http.MethodPost, "/reload", nil, nil); status != http.StatusConflict {
		t.Errorf("POST /reload without catalog file = %d, want 409", status)
	}
}

func TestReloadTrigger(t *testing.T) {
	d := testDeps(t)
	d.ReloadTrigger = make(chan struct{}, 1)
	c := newClient(t, d)

	if status := c.do(http.MethodPost, "/reload", nil, nil); status != http.StatusAccepted {
		t.Errorf("first POST /reload = %d, want 202", status)
	}
	if status := c.do(http.MethodPost, "/reload", nil, nil); status != http.StatusTooManyRequests {
		t.Errorf("second POST /reload = %d, want 429", status)
	}
}

func TestInfraRejectsForeignIP(t *testing.T) {
	d := testDeps(t)
	d.AllowedCIDRS = []string{"203.0.113.0/24"}
	d.TrustProxy = false
	c := newClient(t, d)

	if status := c.do(http.MethodGet, "/infra", nil, nil); status != http.StatusForbidden {
		t.Errorf("GET /infra from loopback = %d, want 403", status)
	}
}
