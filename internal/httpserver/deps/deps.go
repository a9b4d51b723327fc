package deps

import (
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/campaign"
	"github.com/MrSnakeDoc/utmgen/internal/index"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/session"
	"github.com/MrSnakeDoc/utmgen/internal/store"
)

type Deps struct {
	Logger           logger.Logger
	StartTime        time.Time
	Version          string
	Commit           string
	BuildDate        string
	GoVersion        string
	TimeNow          func() time.Time    // for testing, defaults to time.Now
	AllowedHosts     []string            // Host headers allowed to trigger a reload
	AllowedCIDRS     []string            // IPs allowed to access ops endpoints
	TrustProxy       bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CatalogFile      string              // Path to the catalog file, empty when the built-in catalog is used
	Catalog          *index.CatalogIndex // Catalog currently offered
	Store            store.SessionStore  // Session backend
	Sessions         *session.Manager    // Session cookie handling
	Campaigns        *campaign.Service   // Form actions
	RateBurst        int                 // per-IP burst on /api routes
	RateRefillPerMin int                 // per-IP refill on /api routes
	ReloadTrigger    chan struct{}       // Channel to trigger manual catalog reload (nil without catalog file)
}
