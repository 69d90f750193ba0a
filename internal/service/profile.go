package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/repository"
	"github.com/octobees/cardshare/internal/validation"
)

// ImageSlot names one of the two image fields of a profile.
type ImageSlot string

const (
	SlotProfile ImageSlot = "profile"
	SlotLogo    ImageSlot = "logo"
)

// ErrUnknownImageSlot is returned for slots other than SlotProfile and SlotLogo.
var ErrUnknownImageSlot = errors.New("unknown image slot")

// ImageError reports an upload that failed the image checks.
type ImageError struct {
	Reason string
}

func (e *ImageError) Error() string {
	return e.Reason
}

// ProfileStore is the persistence the profile service needs.
type ProfileStore interface {
	Load(ctx context.Context) (validation.LoadResult, error)
	Save(ctx context.Context, rec entity.ContactRecord) error
}

// ProfileWatcher is implemented by stores that report external edits.
type ProfileWatcher interface {
	Watch(ctx context.Context, onChange func(validation.LoadResult)) error
}

// ProfileService is the only writer of the persisted profile. Writes are
// serialized; the last accepted write wins.
type ProfileService struct {
	store   ProfileStore
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	current entity.ContactRecord
	loaded  bool
}

// NewProfileService wires the service over store.
func NewProfileService(store ProfileStore, logger *slog.Logger, m *metrics.Metrics) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{store: store, logger: logger, metrics: m}
}

// Current returns a copy of the active profile, loading it on first use.
func (s *ProfileService) Current(ctx context.Context) (entity.ContactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return entity.ContactRecord{}, err
	}
	return s.current.Clone(), nil
}

// Submit guards a full candidate record and persists it.
func (s *ProfileService) Submit(ctx context.Context, candidate map[string]any) (entity.ContactRecord, error) {
	rec, err := validation.Guard(candidate)
	if err != nil {
		s.countRejection(err)
		return entity.ContactRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, rec)
}

// UpdateMetadata replaces tags and notes of the active profile.
func (s *ProfileService) UpdateMetadata(ctx context.Context, tags []string, notes string) (entity.ContactRecord, error) {
	return s.update(ctx, func(rec *entity.ContactRecord) error {
		rec.Tags = validation.NormalizeTags(tags)
		rec.Notes = notes
		return nil
	})
}

// SetImage validates an uploaded image and stores it as a data URL in slot.
func (s *ProfileService) SetImage(ctx context.Context, slot ImageSlot, file validation.ImageFile, content []byte) (entity.ContactRecord, error) {
	if slot != SlotProfile && slot != SlotLogo {
		return entity.ContactRecord{}, ErrUnknownImageSlot
	}
	if check := validation.ValidateImageFile(file); !check.OK {
		return entity.ContactRecord{}, &ImageError{Reason: check.Reason}
	}
	if int64(len(content)) > validation.MaxImageBytes {
		return entity.ContactRecord{}, &ImageError{Reason: validation.ReasonImageTooLarge}
	}
	// The declared type is client supplied; the bytes must agree with it.
	sniffed := http.DetectContentType(content)
	if check := validation.ValidateImageFile(validation.ImageFile{Name: file.Name, MediaType: sniffed}); !check.OK {
		return entity.ContactRecord{}, &ImageError{Reason: validation.ReasonImageType}
	}

	dataURL := "data:" + sniffed + ";base64," + base64.StdEncoding.EncodeToString(content)
	return s.update(ctx, func(rec *entity.ContactRecord) error {
		setImage(rec, slot, dataURL)
		return nil
	})
}

// ClearImage removes the image in slot.
func (s *ProfileService) ClearImage(ctx context.Context, slot ImageSlot) (entity.ContactRecord, error) {
	if slot != SlotProfile && slot != SlotLogo {
		return entity.ContactRecord{}, ErrUnknownImageSlot
	}
	return s.update(ctx, func(rec *entity.ContactRecord) error {
		setImage(rec, slot, "")
		return nil
	})
}

// ApplyExtracted merges scanned card data into the active profile. Only
// non-empty extracted fields overwrite; design fields are kept.
func (s *ProfileService) ApplyExtracted(ctx context.Context, data entity.ExtractedCardData) (entity.ContactRecord, error) {
	return s.update(ctx, func(rec *entity.ContactRecord) error {
		*rec = data.MergeInto(*rec)
		return nil
	})
}

// Reload replaces the in-memory profile with a freshly loaded one. A slot
// that reads as empty is ignored: it is a file mid-rewrite, not a reset.
func (s *ProfileService) Reload(res validation.LoadResult) {
	if res.UsedDefault && errors.Is(res.Reason, validation.ErrNoStoredState) {
		s.logger.Debug("ignoring empty profile slot on reload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = res.Record.Clone()
	s.loaded = true
	s.logger.Info("profile reloaded from storage", "used_default", res.UsedDefault)
}

// Watch follows external edits of the stored profile until ctx is done. It
// returns nil at once when the store cannot watch.
func (s *ProfileService) Watch(ctx context.Context) error {
	w, ok := s.store.(ProfileWatcher)
	if !ok {
		return nil
	}
	err := w.Watch(ctx, s.Reload)
	if errors.Is(err, repository.ErrWatchUnsupported) {
		return nil
	}
	return err
}

func (s *ProfileService) update(ctx context.Context, mutate func(*entity.ContactRecord) error) (entity.ContactRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return entity.ContactRecord{}, err
	}

	next := s.current.Clone()
	if err := mutate(&next); err != nil {
		return entity.ContactRecord{}, err
	}
	rec, err := validation.GuardRecord(next)
	if err != nil {
		s.countRejection(err)
		return entity.ContactRecord{}, err
	}
	return s.persist(ctx, rec)
}

// persist must be called with mu held.
func (s *ProfileService) persist(ctx context.Context, rec entity.ContactRecord) (entity.ContactRecord, error) {
	if err := s.store.Save(ctx, rec); err != nil {
		return entity.ContactRecord{}, fmt.Errorf("save profile: %w", err)
	}
	s.current = rec.Clone()
	s.loaded = true
	return rec, nil
}

// ensureLoaded must be called with mu held.
func (s *ProfileService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	res, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.current = res.Record.Clone()
	s.loaded = true
	return nil
}

func (s *ProfileService) countRejection(err error) {
	var rej *validation.Rejection
	if errors.As(err, &rej) {
		s.metrics.IncrementGuardRejection(rej.Field)
	}
}

func setImage(rec *entity.ContactRecord, slot ImageSlot, value string) {
	if slot == SlotProfile {
		rec.ProfileImage = value
	} else {
		rec.CompanyLogo = value
	}
}
