// Package catalog holds the static support-resource catalog. It is loaded once
// at startup and only read afterwards, so it is safe for concurrent use.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"mindscape-go/internal/types"
)

type Category string

const (
	CrisisHotlines   Category = "crisis_hotlines"
	OnlineCounseling Category = "online_counseling"
	YouthCommunities Category = "youth_communities"
)

// Categories is the full set of catalog keys, in severity order.
var Categories = []Category{CrisisHotlines, OnlineCounseling, YouthCommunities}

func (c Category) valid() bool {
	return slices.Contains(Categories, c)
}

type Catalog struct {
	entries map[Category][]types.Resource
}

// Empty returns a catalog with no resources.
func Empty() *Catalog {
	return &Catalog{entries: map[Category][]types.Resource{}}
}

// New builds a catalog from already parsed entries. Unknown categories and
// resources without a way to reach them are dropped.
func New(entries map[Category][]types.Resource, log *logrus.Entry) *Catalog {
	c := Empty()
	for cat, list := range entries {
		if !cat.valid() {
			log.WithField("category", cat).Debug("ignoring unknown catalog category")
			continue
		}
		kept := make([]types.Resource, 0, len(list))
		for i, r := range list {
			if r.Contact == "" && r.Website == "" {
				log.WithFields(logrus.Fields{"category": cat, "index": i, "name": r.Name}).
					Warn("skipping resource without contact or website")
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) > 0 {
			c.entries[cat] = kept
		}
	}
	return c
}

// Load reads the catalog at path. The format follows the extension: .yaml/.yml,
// .xlsx, anything else is JSON. A missing or malformed file yields an empty
// catalog and a warning.
func Load(path string, log *logrus.Entry) *Catalog {
	log = log.WithField("path", path)
	entries, err := read(path)
	if err != nil {
		log.WithField("error", err.Error()).Warn("resource catalog unavailable, no resources will be suggested")
		return Empty()
	}
	c := New(entries, log)
	log.WithField("resources", c.Len()).Info("resource catalog loaded")
	return c
}

func read(path string) (map[Category][]types.Resource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return readXLSX(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if ext == ".yaml" || ext == ".yml" {
		return parseYAML(raw)
	}
	return parseJSON(raw)
}

func parseJSON(raw []byte) (map[Category][]types.Resource, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}
	out := map[Category][]types.Resource{}
	for _, cat := range Categories {
		msg, ok := doc[string(cat)]
		if !ok {
			continue
		}
		var list []types.Resource
		if err := json.Unmarshal(msg, &list); err != nil {
			return nil, fmt.Errorf("json decode %s: %w", cat, err)
		}
		out[cat] = list
	}
	return out, nil
}

func parseYAML(raw []byte) (map[Category][]types.Resource, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("yaml decode: %w", err)
	}
	out := map[Category][]types.Resource{}
	for _, cat := range Categories {
		node, ok := doc[string(cat)]
		if !ok {
			continue
		}
		var list []types.Resource
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("yaml decode %s: %w", cat, err)
		}
		out[cat] = list
	}
	return out, nil
}

// Get returns the resources of a category in file order. Unknown or absent
// categories give an empty slice. The slice is a copy.
func (c *Catalog) Get(cat Category) []types.Resource {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries[cat])
}

// Len is the total number of resources.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}

func (c *Catalog) IsEmpty() bool {
	return c.Len() == 0
}
