// Package jurisdiction holds the immutable table of regional deduction rules.
package jurisdiction

import (
	"slices"
	"strings"
)

// AllProfiles is the sentinel accepted profile that matches any project type.
const AllProfiles = "all"

// Meta describes the catalog file.
type Meta struct {
	Version  string `yaml:"version" json:"version"`
	Currency string `yaml:"currency" json:"currency"`
}

// Rule is the deduction rule of one region.
type Rule struct {
	ID                   string   `yaml:"id" json:"region_id"`
	Name                 string   `yaml:"name" json:"name"`
	Rate                 float64  `yaml:"rate" json:"rate"`         // 0.0 ~ 1.0
	CapBase              float64  `yaml:"cap_base" json:"cap_base"` // EUR
	NationallyCompatible bool     `yaml:"nationally_compatible" json:"nationally_compatible"`
	AcceptedProfiles     []string `yaml:"accepted_profiles" json:"accepted_profiles"`
	Notes                string   `yaml:"notes" json:"notes"`
	SpecialRegime        string   `yaml:"special_regime,omitempty" json:"special_regime,omitempty"`
}

// AcceptsAll reports whether the sentinel "all" profile is accepted.
func (r Rule) AcceptsAll() bool {
	for _, p := range r.AcceptedProfiles {
		if strings.EqualFold(strings.TrimSpace(p), AllProfiles) {
			return true
		}
	}
	return false
}

// OffersRegionalDeduction reports whether Stage 2 can ever apply in this region.
func (r Rule) OffersRegionalDeduction() bool {
	return r.NationallyCompatible && r.Rate > 0
}

// Summary is the catalog entry shown in region pickers.
type Summary struct {
	RegionID      string  `json:"region_id"`
	Name          string  `json:"name"`
	Rate          float64 `json:"rate"`
	Compatible    bool    `json:"compatible"`
	SpecialRegime string  `json:"special_regime,omitempty"`
}

// Catalog is the read-only rule table. It is built once and never mutated;
// accessors hand out copies.
type Catalog struct {
	meta  Meta
	rules map[string]Rule
	order []string
	hash  string
}

func newCatalog(meta Meta, rules []Rule, hash string) *Catalog {
	c := &Catalog{
		meta:  meta,
		rules: make(map[string]Rule, len(rules)),
		order: make([]string, 0, len(rules)),
		hash:  hash,
	}
	for _, r := range rules {
		r.ID = NormalizeID(r.ID)
		r.AcceptedProfiles = slices.Clone(r.AcceptedProfiles)
		c.rules[r.ID] = r
		c.order = append(c.order, r.ID)
	}
	return c
}

// NormalizeID canonicalizes a region identifier for lookup.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Get returns the rule of a region. Lookup is case-insensitive.
func (c *Catalog) Get(regionID string) (Rule, bool) {
	r, ok := c.rules[NormalizeID(regionID)]
	if !ok {
		return Rule{}, false
	}
	r.AcceptedProfiles = slices.Clone(r.AcceptedProfiles)
	return r, true
}

// List returns every region in file order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.order))
	for _, id := range c.order {
		r := c.rules[id]
		out = append(out, Summary{
			RegionID:      r.ID,
			Name:          r.Name,
			Rate:          r.Rate,
			Compatible:    r.NationallyCompatible,
			SpecialRegime: r.SpecialRegime,
		})
	}
	return out
}

// Len returns the number of regions.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Meta returns the catalog metadata.
func (c *Catalog) Meta() Meta {
	return c.meta
}

// Hash identifies the catalog contents, used in cache keys and run history.
func (c *Catalog) Hash() string {
	return c.hash
}
