package feed

import (
	"testing"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Gas Grills", "Gas Grills"},
		{"tags dropped", "<p>Overheating <b>battery</b> packs</p>", "Overheating battery packs"},
		{"entities decoded", "Fire &amp; burn hazard", "Fire & burn hazard"},
		{"whitespace collapsed", "<div>  Two\n\nlines  </div>", "Two lines"},
		{"nested markup", `<span style="x">Recall <a href="#">notice</a></span>`, "Recall notice"},
		{"plain text trimmed", "  padded  ", "padded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripHTML(tc.in); got != tc.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestScrubRecall_TouchesNestedFields(t *testing.T) {
	r := domain.Recall{
		Title:           "<b>Acme</b> Heaters",
		Description:     "<p>Can tip over.</p>",
		ConsumerContact: "Call <i>Acme</i> at 555-0100",
		Products: []domain.Product{
			{Name: "Heater", Description: "<ul><li>Model A</li></ul>"},
		},
		Injuries: []domain.Injury{{Name: "Burns &amp; smoke inhalation"}},
	}
	scrubRecall(&r)

	if r.Title != "Acme Heaters" {
		t.Fatalf("title = %q", r.Title)
	}
	if r.Description != "Can tip over." {
		t.Fatalf("description = %q", r.Description)
	}
	if r.ConsumerContact != "Call Acme at 555-0100" {
		t.Fatalf("contact = %q", r.ConsumerContact)
	}
	if r.Products[0].Description != "Model A" {
		t.Fatalf("product description = %q", r.Products[0].Description)
	}
	if r.Injuries[0].Name != "Burns & smoke inhalation" {
		t.Fatalf("injury = %q", r.Injuries[0].Name)
	}
}
