// Saved-set HTTP handlers.
//
// This file exposes the endpoints for the user's saved recalls:
//   - POST /recalls/{id}/saved/toggle  (flip saved state, Idempotency-Key aware)
//   - GET  /recalls/{id}/saved         (membership check)
//   - GET  /saved                      (persisted id list)
//
// Toggle retries from mobile clients carry an Idempotency-Key header; a
// replayed key returns the recorded outcome instead of flipping the state a
// second time.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/recallhub/go-recall-backend/internal/http/middleware"
	"github.com/recallhub/go-recall-backend/internal/services"
)

// ToggleSavedResponse reports the saved state after a toggle. Replayed is
// true when an Idempotency-Key matched a previously completed toggle.
type ToggleSavedResponse struct {
	RecallID int  `json:"recall_id" example:"9109"`
	Saved    bool `json:"saved"`
	Replayed bool `json:"replayed,omitempty"`
}

// SavedStateResponse reports membership for a single recall.
type SavedStateResponse struct {
	RecallID int  `json:"recall_id" example:"9109"`
	Saved    bool `json:"saved"`
}

// SavedListResponse carries the persisted saved-id list, sorted ascending.
type SavedListResponse struct {
	IDs   []int `json:"ids"`
	Count int   `json:"count"`
}

// recallID parses the :id path parameter. A non-positive or non-numeric id
// reports ok=false after writing a 400 response.
func recallID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recall id must be a positive integer")
		return 0, false
	}
	return id, true
}

// ToggleSaved godoc
// @ID          toggleSaved
// @Summary     Toggle the saved state of a recall
// @Description Flips whether the recall is in the user's saved set and persists the change. Send an Idempotency-Key header to make retries safe: a replayed key returns the recorded outcome without flipping the state again.
// @Tags        Saved
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Client retry key"       example(retry-7f3a)
// @Param       id               path    int     true  "Recall ID"              example(9109)
//
// @Success     200  {object} handlers.ToggleSavedResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid recall id"
// @Failure     500  {object} handlers.ErrorResponse "Persistence failure"
// @Router      /recalls/{id}/saved/toggle [post]
func (h *Handlers) ToggleSaved(c *gin.Context) {
	id, okID := recallID(c)
	if !okID {
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	saved, replayed, err := h.savedSvc.Toggle(c.Request.Context(), userID(c), id, key)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRecallID) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recall id must be a positive integer")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeToggleFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ToggleSavedResponse{RecallID: id, Saved: saved, Replayed: replayed})
}

// IsSaved godoc
// @ID          isSaved
// @Summary     Check whether a recall is saved
// @Tags        Saved
// @Produce     json
//
// @Param       id  path  int  true  "Recall ID"  example(9109)
//
// @Success     200  {object} handlers.SavedStateResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid recall id"
// @Router      /recalls/{id}/saved [get]
func (h *Handlers) IsSaved(c *gin.Context) {
	id, okID := recallID(c)
	if !okID {
		return
	}

	saved, err := h.savedSvc.IsSaved(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	ok(c, http.StatusOK, SavedStateResponse{RecallID: id, Saved: saved})
}

// ListSaved godoc
// @ID          listSaved
// @Summary     List saved recall ids
// @Description Returns the persisted saved-id list in ascending order, the same order it is stored in.
// @Tags        Saved
// @Produce     json
//
// @Success     200  {object} handlers.SavedListResponse
// @Router      /saved [get]
func (h *Handlers) ListSaved(c *gin.Context) {
	ids := h.savedSvc.IDs(c.Request.Context())
	if ids == nil {
		ids = []int{}
	}
	ok(c, http.StatusOK, SavedListResponse{IDs: ids, Count: len(ids)})
}
