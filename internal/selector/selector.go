// Package selector maps a distress level to the support resources offered
// for it.
package selector

import (
	"mindscape-go/internal/catalog"
	"mindscape-go/internal/distress"
	"mindscape-go/internal/types"
)

// categoryFor is the fixed level to catalog category table. None has no entry.
var categoryFor = map[distress.Level]catalog.Category{
	distress.Crisis:   catalog.CrisisHotlines,
	distress.Moderate: catalog.OnlineCounseling,
	distress.Mild:     catalog.YouthCommunities,
}

type Selector struct {
	catalog *catalog.Catalog
}

func New(c *catalog.Catalog) *Selector {
	return &Selector{catalog: c}
}

// CategoryFor reports the catalog category for level, if any.
func CategoryFor(level distress.Level) (catalog.Category, bool) {
	cat, ok := categoryFor[level]
	return cat, ok
}

// Select returns the resources for level in catalog order, or nil for
// distress.None, unknown levels, or an empty catalog.
func (s *Selector) Select(level distress.Level) []types.Resource {
	cat, ok := CategoryFor(level)
	if !ok || s == nil {
		return nil
	}
	return s.catalog.Get(cat)
}
