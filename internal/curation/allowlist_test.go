package curation

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAllowlistTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "allowlist.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return p
}

func TestLoadAllowlist_EmptyPathUsesDefaults(t *testing.T) {
	al, err := LoadAllowlist("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if len(al.Brands) != len(DefaultBrands) || len(al.Categories) != len(DefaultCategories) {
		t.Fatalf("defaults not applied: %+v", al)
	}
}

func TestLoadAllowlist_OverridesBrandsKeepsCategories(t *testing.T) {
	p := writeAllowlistTemp(t, "brands:\n  - Acme\n  - Globex\n")
	al, err := LoadAllowlist(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(al.Brands) != 2 || al.Brands[0] != "Acme" {
		t.Fatalf("brands not overridden: %+v", al.Brands)
	}
	if len(al.Categories) != len(DefaultCategories) {
		t.Fatalf("omitted categories must keep defaults: %+v", al.Categories)
	}
}

func TestLoadAllowlist_MissingFile(t *testing.T) {
	if _, err := LoadAllowlist(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}

func TestLoadAllowlist_BadYAML(t *testing.T) {
	p := writeAllowlistTemp(t, "brands: [unterminated")
	if _, err := LoadAllowlist(p); err == nil {
		t.Fatalf("malformed yaml must error")
	}
}
