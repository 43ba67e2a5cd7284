// Search HTTP handlers.
//
// This file exposes the live-search endpoints:
//   - PUT /search/query    (replace the live query; debounced server-side)
//   - GET /search/results  (latest published results + pending flag)
//
// Setting a query does not block on evaluation: the engine debounces and
// publishes asynchronously, and clients poll /search/results the same way a
// UI observes a view-model.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recallhub/go-recall-backend/internal/utils"
)

// SetQueryRequest is the JSON payload for replacing the live search query.
// A blank (or all-whitespace) query clears results immediately.
type SetQueryRequest struct {
	Query string `json:"query" example:"gas grill"`
}

// SearchStateResponse reflects the live search state after a query update.
type SearchStateResponse struct {
	Query     string `json:"query"`
	Searching bool   `json:"searching"`
}

// SearchResultsResponse carries the latest published result set.
type SearchResultsResponse struct {
	Query     string       `json:"query"`
	Searching bool         `json:"searching"`
	Count     int          `json:"count"`
	Results   []RecallView `json:"results"`
}

// SetQuery godoc
// @ID          setSearchQuery
// @Summary     Replace the live search query
// @Description Updates the debounced search query. Evaluation runs asynchronously; poll /search/results for the outcome. A blank query clears results.
// @Tags        Search
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SetQueryRequest  true  "Query payload"
//
// @Success     202  {object} handlers.SearchStateResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Router      /search/query [put]
func (h *Handlers) SetQuery(c *gin.Context) {
	var req SetQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be {\"query\": \"...\"}")
		return
	}

	h.searchSvc.SetQuery(c.Request.Context(), req.Query)

	_, query, searching := h.searchSvc.Results(c.Request.Context())
	ok(c, http.StatusAccepted, SearchStateResponse{Query: query, Searching: searching})
}

// SearchResults godoc
// @ID          searchResults
// @Summary     Read the latest search results
// @Description Returns the most recently published result set in ranked order, the query it answers, and whether an evaluation is still pending. Accepts an optional ?limit=N cap.
// @Tags        Search
// @Produce     json
//
// @Param       limit  query  int  false  "Cap the number of returned results"  example(10)
//
// @Success     200  {object} handlers.SearchResultsResponse
// @Router      /search/results [get]
func (h *Handlers) SearchResults(c *gin.Context) {
	results, query, searching := h.searchSvc.Results(c.Request.Context())

	total := len(results)
	if limit := utils.AtoiDefault(c.Query("limit"), 0); limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	ok(c, http.StatusOK, SearchResultsResponse{
		Query:     query,
		Searching: searching,
		Count:     total,
		Results:   toViews(results),
	})
}
