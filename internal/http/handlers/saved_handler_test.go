package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/recallhub/go-recall-backend/internal/http/middleware"
	"github.com/recallhub/go-recall-backend/internal/services"
)

func TestToggleSaved_OK(t *testing.T) {
	saved := &fakeSavedSvc{saved: true}
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, saved)

	w := doJSON(t, r, http.MethodPost, "/recalls/42/saved/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d (%s)", w.Code, w.Body.String())
	}
	var resp ToggleSavedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RecallID != 42 || !resp.Saved || resp.Replayed {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if saved.gotRecall != 42 || saved.gotUser != "demo-user" {
		t.Fatalf("service got user=%q recall=%d", saved.gotUser, saved.gotRecall)
	}
}

func TestToggleSaved_PassesUserAndKey(t *testing.T) {
	saved := &fakeSavedSvc{saved: true, replayed: true}
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, saved)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recalls/7/saved/toggle", nil)
	req.Header.Set("X-User-ID", "u42")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}
	if saved.gotUser != "u42" || saved.gotRecall != 7 {
		t.Fatalf("service got user=%q recall=%d", saved.gotUser, saved.gotRecall)
	}
	var resp ToggleSavedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Replayed {
		t.Fatalf("expected replayed=true")
	}
}

func TestToggleSaved_KeyFromMiddleware(t *testing.T) {
	saved := &fakeSavedSvc{}

	// Mount the validator in front so the stashed key reaches the handler.
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	h := New(&fakeRecallSvc{}, &fakeSearchSvc{}, saved)
	r.POST("/recalls/:id/saved/toggle", h.ToggleSaved)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recalls/5/saved/toggle", nil)
	req.Header.Set(middleware.HeaderIdempotencyKey, "retry-9")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("toggle = %d (%s)", w.Code, w.Body.String())
	}
	if saved.gotKey != "retry-9" {
		t.Fatalf("service got key %q, want retry-9", saved.gotKey)
	}
}

func TestToggleSaved_InvalidID_400(t *testing.T) {
	saved := &fakeSavedSvc{}
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, saved)

	for _, id := range []string{"abc", "0", "-3"} {
		w := doJSON(t, r, http.MethodPost, "/recalls/"+id+"/saved/toggle", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, w.Code)
		}
	}
	if saved.gotRecall != 0 {
		t.Fatalf("service should not have been called, got recall %d", saved.gotRecall)
	}
}

func TestToggleSaved_ServiceErrors(t *testing.T) {
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{toggleErr: services.ErrInvalidRecallID})
	w := doJSON(t, r, http.MethodPost, "/recalls/1/saved/toggle", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id error: expected 400, got %d", w.Code)
	}

	r = newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{toggleErr: errors.New("disk full")})
	w = doJSON(t, r, http.MethodPost, "/recalls/1/saved/toggle", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("persistence error: expected 500, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeToggleFailed {
		t.Fatalf("code = %q, want %q", resp.Code, ErrCodeToggleFailed)
	}
}

func TestIsSaved(t *testing.T) {
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{saved: true})
	w := doJSON(t, r, http.MethodGet, "/recalls/11/saved", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET saved = %d", w.Code)
	}
	var resp SavedStateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RecallID != 11 || !resp.Saved {
		t.Fatalf("unexpected response: %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/recalls/zero/saved", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}

	r = newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{isSavedErr: errors.New("bad id")})
	w = doJSON(t, r, http.MethodGet, "/recalls/11/saved", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("service error: expected 400, got %d", w.Code)
	}
}

func TestListSaved(t *testing.T) {
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{ids: []int{3, 7, 21}})
	w := doJSON(t, r, http.MethodGet, "/saved", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /saved = %d", w.Code)
	}
	var resp SavedListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || len(resp.IDs) != 3 || resp.IDs[0] != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestListSaved_EmptyIsJSONArray(t *testing.T) {
	r := newTestRouter(&fakeRecallSvc{}, &fakeSearchSvc{}, &fakeSavedSvc{})
	w := doJSON(t, r, http.MethodGet, "/saved", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /saved = %d", w.Code)
	}
	var resp SavedListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 0 || resp.IDs == nil || len(resp.IDs) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
