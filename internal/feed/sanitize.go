package feed

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/recallhub/go-recall-backend/internal/domain"
)

// scrubRecall strips HTML markup out of the free-text fields the feed is
// known to publish with embedded tags and entities. Fields without markup
// pass through unchanged.
func scrubRecall(r *domain.Recall) {
	r.Title = StripHTML(r.Title)
	r.Description = StripHTML(r.Description)
	r.ConsumerContact = StripHTML(r.ConsumerContact)
	for i := range r.Products {
		r.Products[i].Description = StripHTML(r.Products[i].Description)
	}
	for i := range r.Injuries {
		r.Injuries[i].Name = StripHTML(r.Injuries[i].Name)
	}
}

// StripHTML extracts the text content of s, dropping tags and decoding
// entities, then collapses runs of whitespace to single spaces. Plain text
// comes back trimmed but otherwise intact; a parse failure returns the input
// unchanged rather than losing data.
func StripHTML(s string) string {
	if s == "" || !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
