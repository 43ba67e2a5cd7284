// Package curation narrows a raw fetched recall batch down to the bounded,
// relevant subset that the rest of the application treats as its dataset.
// Selection favors recency and recognizable brands, with a fixed cap and a
// raw-list fallback so the dataset is never empty when the feed is not.
package curation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBrands is the built-in manufacturer allowlist. Matching against
// recall manufacturer names is exact and case-sensitive; entries must be
// spelled the way the feed publishes them.
var DefaultBrands = []string{
	"Samsung",
	"LG Electronics",
	"Whirlpool",
	"IKEA",
	"Fisher-Price",
	"Graco",
	"Peloton",
	"BISSELL",
	"Dyson",
	"Honda",
	"Yamaha",
	"Polaris",
	"Target",
	"Walmart",
	"Costco Wholesale",
	"Amazon",
}

// DefaultCategories is the built-in product-category keyword allowlist.
// A brand recall survives category narrowing when at least one product's
// Types field contains one of these keywords, case-insensitively.
var DefaultCategories = []string{
	"electronics",
	"automobile",
	"household",
	"toys",
	"food",
	"appliances",
	"outdoor equipment",
	"sports",
	"furniture",
	"clothing",
	"baby products",
	"health & beauty",
}

// Allowlist bundles the curation allowlists. The zero value is unusable;
// construct via DefaultAllowlist or LoadAllowlist.
type Allowlist struct {
	Brands     []string `yaml:"brands"`
	Categories []string `yaml:"categories"`
}

// DefaultAllowlist returns the built-in brand and category lists.
func DefaultAllowlist() Allowlist {
	return Allowlist{Brands: DefaultBrands, Categories: DefaultCategories}
}

// LoadAllowlist reads an allowlist override from a YAML file of the form:
//
//	brands:
//	  - Samsung
//	categories:
//	  - electronics
//
// Lists omitted from the file keep their built-in defaults. An empty path
// returns the defaults without touching the filesystem.
func LoadAllowlist(path string) (Allowlist, error) {
	out := DefaultAllowlist()
	if path == "" {
		return out, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("read allowlist: %w", err)
	}
	var file Allowlist
	if err := yaml.Unmarshal(b, &file); err != nil {
		return out, fmt.Errorf("parse allowlist: %w", err)
	}
	if len(file.Brands) > 0 {
		out.Brands = file.Brands
	}
	if len(file.Categories) > 0 {
		out.Categories = file.Categories
	}
	return out, nil
}
