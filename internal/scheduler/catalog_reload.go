package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/index"
	"github.com/MrSnakeDoc/utmgen/internal/logger"
	"github.com/MrSnakeDoc/utmgen/internal/sources/catalog"
)

// CatalogReloader handles periodic reloading of the catalog file
type CatalogReloader struct {
	loader        *catalog.Loader
	mapper        *catalog.Mapper
	index         *index.CatalogIndex
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	catalogFile string,
	idx *index.CatalogIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        catalog.NewLoader(catalogFile),
		mapper:        catalog.NewMapper(),
		index:         idx,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once, then reloads it on every tick or manual trigger
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog, keeping previous one",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog, keeping previous one",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload reads the catalog file and swaps it into the index.
// On any error the index keeps serving the previous catalog.
func (cr *CatalogReloader) Reload(_ context.Context) error {
	cr.logger.Info("reloading catalog", logger.String("file", cr.loader.Path()))

	file, err := cr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	c, err := cr.mapper.MapCatalog(file)
	if err != nil {
		return fmt.Errorf("failed to map catalog: %w", err)
	}

	cr.index.Update(c, cr.loader.Path())

	cr.logger.Info("catalog loaded",
		logger.Int("fiscal_years", len(c.FiscalYears)),
		logger.Int("quarters", len(c.Quarters)),
		logger.Int("geos", len(c.Geos)),
		logger.Int("lead_sources", c.Taxonomy.Len()))

	return nil
}
