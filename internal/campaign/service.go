// Package campaign implements the form actions: pick options, generate a
// campaign name and a tracking URL, then keep or drop the pairs worth saving.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/store"
)

// CatalogProvider returns the catalog currently offered to users.
type CatalogProvider interface {
	Current() *domain.Catalog
}

// Service runs every user action against the caller's session.
type Service struct {
	store   store.SessionStore
	catalog CatalogProvider
	logger  logger.Logger
	now     func() time.Time
}

// NewService creates a campaign service
func NewService(st store.SessionStore, catalog CatalogProvider, log logger.Logger) *Service {
	return &Service{
		store:   st,
		catalog: catalog,
		logger:  log,
		now:     time.Now,
	}
}

// Options lists the top-level choices of the form.
type Options struct {
	FiscalYears []string `json:"fiscal_years"`
	Quarters    []string `json:"quarters"`
	Geos        []string `json:"geos"`
	Groups      []string `json:"groups"`
}

// Options returns the enumerations and lead-source groups.
func (s *Service) Options() Options {
	c := s.catalog.Current()
	return Options{
		FiscalYears: c.FiscalYears,
		Quarters:    c.Quarters,
		Geos:        c.Geos,
		Groups:      c.Taxonomy.Groups(),
	}
}

// Categories returns the categories offered for group.
func (s *Service) Categories(group string) []string {
	return s.catalog.Current().Taxonomy.Categories(group)
}

// Sources returns the sources offered for (group, category).
func (s *Service) Sources(group, category string) []string {
	return s.catalog.Current().Taxonomy.Sources(group, category)
}

// NameRequest carries the naming selections.
type NameRequest struct {
	FiscalYear string `json:"fiscal_year"`
	Quarter    string `json:"quarter"`
	Geo        string `json:"geo"`
	Group      string `json:"group"`
	Category   string `json:"category"`
	Source     string `json:"source"`
	Label      string `json:"label"`
}

func (r NameRequest) missing() []string {
	fields := []struct{ name, value string }{
		{"fiscal_year", r.FiscalYear},
		{"quarter", r.Quarter},
		{"geo", r.Geo},
		{"group", r.Group},
		{"category", r.Category},
		{"source", r.Source},
		{"label", r.Label},
	}
	var out []string
	for _, f := range fields {
		if f.value == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// GenerateName builds the campaign name and makes it the session's current name.
func (s *Service) GenerateName(ctx context.Context, sessionID string, req NameRequest) (string, error) {
	if missing := req.missing(); len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingRequiredField, strings.Join(missing, ", "))
	}

	if !s.catalog.Current().ValidSelection(req.FiscalYear, req.Quarter, req.Geo, req.Group, req.Category, req.Source) {
		return "", fmt.Errorf("%w: %s/%s/%s/%s/%s/%s is not an offered combination",
			domain.ErrInvalidSelection, req.FiscalYear, req.Quarter, req.Geo, req.Group, req.Category, req.Source)
	}

	name := domain.BuildCampaignName(req.FiscalYear, req.Quarter, req.Geo, req.Group, req.Category, req.Source, req.Label)

	_, err := s.store.Update(ctx, sessionID, func(st *domain.SessionState) error {
		st.Selection = domain.Selection(req)
		st.CampaignName = name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store campaign name: %w", err)
	}

	s.logger.Info("campaign name generated",
		logger.String("session_id", sessionID),
		logger.String("campaign_name", name))
	return name, nil
}

// UseExistingName makes a pre-existing campaign name the session's current name, verbatim.
func (s *Service) UseExistingName(ctx context.Context, sessionID, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: campaign_name", domain.ErrMissingRequiredField)
	}

	_, err := s.store.Update(ctx, sessionID, func(st *domain.SessionState) error {
		st.CampaignName = name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store campaign name: %w", err)
	}

	s.logger.Debug("existing campaign name selected",
		logger.String("session_id", sessionID),
		logger.String("campaign_name", name))
	return name, nil
}

// URLRequest carries the destination link and UTM inputs.
//
// A nil Campaign falls back to the session's current campaign name; an
// explicit empty string leaves utm_campaign out.
type URLRequest struct {
	DestinationLink string  `json:"destination_link"`
	Campaign        *string `json:"utm_campaign"`
	Source          string  `json:"utm_source"`
	Medium          string  `json:"utm_medium"`
	Term            string  `json:"utm_term"`
	Content         string  `json:"utm_content"`
}

// GenerateURL builds the tracking URL. On failure the session is left as it was.
func (s *Service) GenerateURL(ctx context.Context, sessionID string, req URLRequest) (string, error) {
	var generated string

	_, err := s.store.Update(ctx, sessionID, func(st *domain.SessionState) error {
		campaign := st.CampaignName
		if req.Campaign != nil {
			campaign = *req.Campaign
		}

		params := domain.UTMParams{
			domain.UTMCampaign: campaign,
			domain.UTMSource:   req.Source,
			domain.UTMMedium:   req.Medium,
			domain.UTMTerm:     req.Term,
			domain.UTMContent:  req.Content,
		}

		u, err := domain.BuildUTMURL(req.DestinationLink, params)
		if err != nil {
			return err
		}

		st.DestinationLink = req.DestinationLink
		st.UTM = params
		st.GeneratedURL = u
		generated = u
		return nil
	})
	if err != nil {
		if isUserError(err) {
			s.logger.Debug("url generation rejected",
				logger.String("session_id", sessionID),
				logger.Error(err))
			return "", err
		}
		return "", fmt.Errorf("failed to store generated url: %w", err)
	}

	s.logger.Info("tracking url generated",
		logger.String("session_id", sessionID),
		logger.String("url", generated))
	return generated, nil
}

// Save appends the current name/URL pair to the session's saved list.
func (s *Service) Save(ctx context.Context, sessionID string) (domain.SavedRecord, error) {
	var rec domain.SavedRecord

	_, err := s.store.Update(ctx, sessionID, func(st *domain.SessionState) error {
		if !st.CanSave() {
			return fmt.Errorf("%w: generate a campaign name and a url first", domain.ErrNothingToSave)
		}
		rec = st.SaveRecord(st.CampaignName, st.GeneratedURL)
		return nil
	})
	if err != nil {
		if isUserError(err) {
			return domain.SavedRecord{}, err
		}
		return domain.SavedRecord{}, fmt.Errorf("failed to save record: %w", err)
	}

	s.logger.Info("record saved",
		logger.String("session_id", sessionID),
		logger.String("record_id", rec.ID))
	return rec, nil
}

// List returns the saved records in insertion order.
func (s *Service) List(ctx context.Context, sessionID string) ([]domain.SavedRecord, error) {
	st, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.Records(), nil
}

// Remove deletes the record at index and returns the remaining list.
func (s *Service) Remove(ctx context.Context, sessionID string, index int) ([]domain.SavedRecord, error) {
	st, err := s.store.Update(ctx, sessionID, func(st *domain.SessionState) error {
		return st.RemoveRecord(index)
	})
	if err != nil {
		if isUserError(err) {
			// Remove controls are only offered for existing rows.
			s.logger.Warn("remove requested for a missing record",
				logger.String("session_id", sessionID),
				logger.Int("index", index))
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove record: %w", err)
	}

	s.logger.Info("record removed",
		logger.String("session_id", sessionID),
		logger.Int("index", index))
	return st.Records(), nil
}

// State returns the session, or an empty one when the session has no state yet.
func (s *Service) State(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	st, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return domain.NewSessionState(sessionID, s.now()), nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return st, nil
}

// End discards the session.
func (s *Service) End(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	s.logger.Info("session ended", logger.String("session_id", sessionID))
	return nil
}

// isUserError reports whether err comes from user input rather than the backend.
func isUserError(err error) bool {
	return errors.Is(err, domain.ErrMalformedURL) ||
		errors.Is(err, domain.ErrMissingRequiredField) ||
		errors.Is(err, domain.ErrInvalidSelection) ||
		errors.Is(err, domain.ErrIndexOutOfRange) ||
		errors.Is(err, domain.ErrNothingToSave)
}
