package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
)

// CatalogIndex holds the catalog currently offered to users.
// Reloads swap the whole catalog; readers always see a complete one.
type CatalogIndex struct {
	mu         sync.RWMutex
	catalog    *domain.Catalog
	source     string    // "builtin" or the file path it was loaded from
	lastReload time.Time // Timestamp of last successful reload
}

// NewCatalogIndex creates an index seeded with the built-in catalog
func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{
		catalog: domain.DefaultCatalog(),
		source:  "builtin",
	}
}

// Update replaces the catalog
func (idx *CatalogIndex) Update(c *domain.Catalog, source string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.catalog = c
	idx.source = source
	idx.lastReload = time.Now()
}

// Current returns the catalog in use. Catalogs are never mutated after Update.
func (idx *CatalogIndex) Current() *domain.Catalog {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.catalog
}

// Source returns where the current catalog came from
func (idx *CatalogIndex) Source() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.source
}

// Count returns the number of taxonomy rows
func (idx *CatalogIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.catalog.Taxonomy.Len()
}

// GetLastReload returns the timestamp of the last reload, zero if never reloaded
func (idx *CatalogIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
