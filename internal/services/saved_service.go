// Package services – SavedService
//
// This file implements SavedService, which owns the user's saved-recall set.
// Toggles write through to the persistence collaborator synchronously; an
// optional Idempotency-Key lets retrying clients replay a toggle without
// flipping the state twice. Replay records live in the relational store and
// expire after TTL.

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/recallhub/go-recall-backend/internal/repo"
	"github.com/recallhub/go-recall-backend/internal/savedset"
)

// SavedService coordinates saved-set mutations and idempotent replays.
type SavedService struct {
	Store *savedset.Store

	// DB and TTL drive Idempotency-Key replay detection. DB == nil disables
	// replay support; every toggle then executes unconditionally.
	DB  *gorm.DB
	TTL time.Duration
}

// Toggle flips the saved state of recallID and persists it. When key is
// non-blank and a matching non-expired replay record exists, the recorded
// outcome is returned instead and replayed reports true.
func (s *SavedService) Toggle(ctx context.Context, userID string, recallID int, key string) (saved bool, replayed bool, err error) {
	tr := otel.Tracer("services/SavedService")
	ctx, span := tr.Start(ctx, "Toggle",
		trace.WithAttributes(
			attribute.Int("recall.id", recallID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if recallID <= 0 {
		return false, false, ErrInvalidRecallID
	}

	key = strings.TrimSpace(key)
	if key != "" && s.DB != nil {
		rec, gerr := repo.GetIdempotency(ctx, s.DB, userID, recallID, key, time.Now().UTC())
		if gerr == nil {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return rec.Saved, true, nil
		}
		if !errors.Is(gerr, repo.ErrNotFound) {
			return false, false, gerr
		}
	}

	saved, err = s.Store.Toggle(ctx, recallID)
	if err != nil {
		return false, false, err
	}

	if key != "" && s.DB != nil {
		// Losing the duplicate race means another request with the same key
		// already recorded an outcome; the toggle above still stands.
		if _, cerr := repo.CreateIdempotency(ctx, s.DB, userID, recallID, key, saved, 200, s.TTL); cerr != nil && !errors.Is(cerr, repo.ErrDuplicate) {
			return saved, false, cerr
		}
	}
	return saved, false, nil
}

// IsSaved reports the saved state of recallID.
func (s *SavedService) IsSaved(ctx context.Context, recallID int) (bool, error) {
	tr := otel.Tracer("services/SavedService")
	_, span := tr.Start(ctx, "IsSaved",
		trace.WithAttributes(attribute.Int("recall.id", recallID)),
	)
	defer span.End()

	if recallID <= 0 {
		return false, ErrInvalidRecallID
	}
	return s.Store.IsSaved(recallID), nil
}

// IDs returns the saved recall ids sorted ascending.
func (s *SavedService) IDs(ctx context.Context) []int {
	tr := otel.Tracer("services/SavedService")
	_, span := tr.Start(ctx, "IDs")
	defer span.End()

	ids := s.Store.IDs()
	span.SetAttributes(attribute.Int("saved.count", len(ids)))
	return ids
}
