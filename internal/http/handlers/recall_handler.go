// Recall HTTP handlers.
//
// This file exposes the REST endpoints for the curated recall feed:
//   - GET  /recalls          (current visible window + paging meta)
//   - POST /recalls/more     (reveal the next page)
//   - POST /recalls/refresh  (trigger fetch + curation; no-op once curated)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recallhub/go-recall-backend/internal/domain"
	"github.com/recallhub/go-recall-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// RecallService defines the curated-dataset operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context for cancellation and tracing.
type RecallService interface {
	// Refresh runs fetch + curation; false with a nil error means the
	// dataset was already populated.
	Refresh(ctx context.Context) (bool, error)
	// Visible returns the revealed prefix of the curated dataset.
	Visible(ctx context.Context) []domain.Recall
	// LoadMore reveals the next page and returns the step taken plus the
	// extended prefix.
	LoadMore(ctx context.Context) (int, []domain.Recall)
	// Meta returns the current paging counters.
	Meta() services.Meta
}

// SearchService defines the live-search operations consumed by HTTP handlers.
type SearchService interface {
	// SetQuery replaces the live query; blank clears results.
	SetQuery(ctx context.Context, query string)
	// Results returns the latest result set, its query, and the pending flag.
	Results(ctx context.Context) ([]domain.Recall, string, bool)
}

// SavedService defines saved-set operations consumed by HTTP handlers.
type SavedService interface {
	// Toggle flips the saved state; replayed is true when an Idempotency-Key
	// matched a prior toggle and the recorded outcome was returned instead.
	Toggle(ctx context.Context, userID string, recallID int, key string) (saved bool, replayed bool, err error)
	// IsSaved reports membership.
	IsSaved(ctx context.Context, recallID int) (bool, error)
	// IDs returns the saved ids sorted ascending.
	IDs(ctx context.Context) []int
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for recalls, search, and the saved set.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	recallSvc RecallService
	searchSvc SearchService
	savedSvc  SavedService
}

// New constructs a Handlers instance bound to the given services.
func New(recallSvc RecallService, searchSvc SearchService, savedSvc SavedService) *Handlers {
	return &Handlers{recallSvc: recallSvc, searchSvc: searchSvc, savedSvc: savedSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// RecallView is the client-facing projection of a recall record.
type RecallView struct {
	ID              int    `json:"id" example:"9109"`
	Title           string `json:"title" example:"Gas Grills Recalled Due to Fire Hazard"`
	Description     string `json:"description,omitempty"`
	URL             string `json:"url,omitempty"`
	LastPublishDate string `json:"last_publish_date,omitempty" example:"2024-06-12T00:00:00"`
	ConsumerContact string `json:"consumer_contact,omitempty"`

	Products []domain.Product `json:"products"`
	Hazards  []domain.Hazard  `json:"hazards"`
	Images   []domain.Image   `json:"images,omitempty"`
}

// RecallListResponse carries a window over the curated dataset plus the
// paging meta clients use to drive infinite scroll.
type RecallListResponse struct {
	Recalls []RecallView  `json:"recalls"`
	Meta    services.Meta `json:"meta"`
}

// LoadMoreResponse extends RecallListResponse with the number of newly
// revealed items.
type LoadMoreResponse struct {
	Added   int           `json:"added"`
	Recalls []RecallView  `json:"recalls"`
	Meta    services.Meta `json:"meta"`
}

// RefreshResponse reports whether this call performed the fetch+curation.
type RefreshResponse struct {
	Refreshed bool          `json:"refreshed"`
	Meta      services.Meta `json:"meta"`
}

// toView projects a recall for clients, deriving a display title when the
// feed record has none: the first product name, title-cased.
func toView(r domain.Recall) RecallView {
	title := strings.TrimSpace(r.Title)
	if title == "" && len(r.Products) > 0 {
		title = cases.Title(language.AmericanEnglish).String(strings.ToLower(r.Products[0].Name))
	}
	return RecallView{
		ID:              r.ID,
		Title:           title,
		Description:     r.Description,
		URL:             r.URL,
		LastPublishDate: r.LastPublishDate,
		ConsumerContact: r.ConsumerContact,
		Products:        r.Products,
		Hazards:         r.Hazards,
		Images:          r.Images,
	}
}

// toViews projects a slice, always returning a non-nil slice so the JSON
// encoder emits [] instead of null.
func toViews(rs []domain.Recall) []RecallView {
	out := make([]RecallView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toView(r))
	}
	return out
}

//
// Endpoints
//

// ListRecalls godoc
// @ID          listRecalls
// @Summary     List visible recalls
// @Description Returns the currently revealed window of the curated recall dataset plus paging meta.
// @Tags        Recalls
// @Produce     json
//
// @Success     200  {object} handlers.RecallListResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /recalls [get]
func (h *Handlers) ListRecalls(c *gin.Context) {
	visible := h.recallSvc.Visible(c.Request.Context())
	ok(c, http.StatusOK, RecallListResponse{
		Recalls: toViews(visible),
		Meta:    h.recallSvc.Meta(),
	})
}

// LoadMore godoc
// @ID          loadMoreRecalls
// @Summary     Reveal the next page of recalls
// @Description Advances the paging window by one page and returns the extended window. A no-op when the dataset is exhausted.
// @Tags        Recalls
// @Produce     json
//
// @Success     200  {object} handlers.LoadMoreResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /recalls/more [post]
func (h *Handlers) LoadMore(c *gin.Context) {
	added, visible := h.recallSvc.LoadMore(c.Request.Context())
	ok(c, http.StatusOK, LoadMoreResponse{
		Added:   added,
		Recalls: toViews(visible),
		Meta:    h.recallSvc.Meta(),
	})
}

// Refresh godoc
// @ID          refreshRecalls
// @Summary     Fetch and curate the recall dataset
// @Description Pulls the recall feed and publishes the curated dataset. Returns refreshed=false when the dataset was already populated.
// @Tags        Recalls
// @Produce     json
//
// @Success     200  {object} handlers.RefreshResponse
// @Failure     502  {object} handlers.ErrorResponse "Recall feed unavailable"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /recalls/refresh [post]
func (h *Handlers) Refresh(c *gin.Context) {
	refreshed, err := h.recallSvc.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrRefreshFailed) {
			fail(c, http.StatusBadGateway, ErrCodeRefreshFailed, "recall feed unavailable")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, RefreshResponse{
		Refreshed: refreshed,
		Meta:      h.recallSvc.Meta(),
	})
}
