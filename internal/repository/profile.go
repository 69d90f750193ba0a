// Package repository persists the contact profile in a storage slot.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/storage"
	"github.com/octobees/cardshare/internal/validation"
)

// ErrWatchUnsupported is returned by Watch when the backing store cannot report changes.
var ErrWatchUnsupported = errors.New("store does not support watching")

// ProfileRepository reads and writes the single profile slot. Every read goes
// through the safe persistence loader, so callers only ever see a guarded
// record or the default.
type ProfileRepository struct {
	store   storage.Store
	slot    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewProfileRepository wires a repository over store.
func NewProfileRepository(store storage.Store, slot string, logger *slog.Logger, m *metrics.Metrics) *ProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileRepository{store: store, slot: slot, logger: logger, metrics: m}
}

// Load returns the stored record or the default. Only storage I/O failures are
// returned as errors; missing, corrupt or rejected state yields the default.
func (r *ProfileRepository) Load(ctx context.Context) (validation.LoadResult, error) {
	raw, err := r.store.Get(ctx, r.slot)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return validation.LoadResult{}, fmt.Errorf("read profile slot: %w", err)
	}
	return r.Decode(raw), nil
}

// Decode runs raw slot content through the loader and records any fallback.
func (r *ProfileRepository) Decode(raw []byte) validation.LoadResult {
	res := validation.LoadOrDefault(raw, entity.DefaultContact())
	if !res.UsedDefault {
		return res
	}

	reason := FallbackReason(res.Reason)
	r.metrics.IncrementLoaderFallback(reason)
	if reason == "empty" {
		r.logger.Info("no stored profile, using default", "slot", r.slot)
	} else {
		r.logger.Warn("stored profile discarded, using default", "slot", r.slot, "reason", reason, "error", res.Reason)
	}
	return res
}

// Save persists rec as JSON. The caller is responsible for guarding it first.
func (r *ProfileRepository) Save(ctx context.Context, rec entity.ContactRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := r.store.Put(ctx, r.slot, data); err != nil {
		return fmt.Errorf("write profile slot: %w", err)
	}
	r.metrics.IncrementProfileSaves()
	return nil
}

// Watch calls onChange with the decoded record every time the slot changes
// outside this process. It blocks until ctx is done.
func (r *ProfileRepository) Watch(ctx context.Context, onChange func(validation.LoadResult)) error {
	w, ok := r.store.(storage.Watcher)
	if !ok {
		return ErrWatchUnsupported
	}
	return w.Watch(ctx, r.slot, func(raw []byte) {
		onChange(r.Decode(raw))
	})
}

// FallbackReason maps a loader reason to a short metric label.
func FallbackReason(err error) string {
	switch {
	case errors.Is(err, validation.ErrNoStoredState):
		return "empty"
	case errors.Is(err, validation.ErrUndecodable):
		return "undecodable"
	case errors.Is(err, validation.ErrRejected):
		return "rejected"
	default:
		return "unknown"
	}
}
