package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/logging"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/repository"
	"github.com/octobees/cardshare/internal/storage"
	"github.com/octobees/cardshare/internal/validation"
)

func newProfileService(t *testing.T) (*ProfileService, *storage.MemoryStore, *metrics.Metrics) {
	t.Helper()
	store := storage.NewMemoryStore()
	m := metrics.New()
	repo := repository.NewProfileRepository(store, "contactData", logging.Discard(), m)
	return NewProfileService(repo, logging.Discard(), m), store, m
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 168, G: 85, B: 247, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProfileService_CurrentDefaultsOnFirstRun(t *testing.T) {
	svc, _, _ := newProfileService(t)
	rec, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultContact(), rec)
}

func TestProfileService_SubmitPersistsGuardedRecord(t *testing.T) {
	svc, store, _ := newProfileService(t)

	rec, err := svc.Submit(context.Background(), map[string]any{
		"name":     "<i>Erika</i> Musterfrau",
		"email":    "erika@example.de",
		"template": "ELEGANT",
		"tags":     []any{"Kunde", "Kunde", " "},
		"unknown":  "dropped",
	})
	require.NoError(t, err)
	assert.Equal(t, "Erika Musterfrau", rec.Name)
	assert.Equal(t, entity.TemplateElegant, rec.Template)
	assert.Equal(t, []string{"Kunde"}, rec.Tags)

	raw, err := store.Get(context.Background(), "contactData")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "unknown")
	assert.NotContains(t, string(raw), "<i>")

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rec, current)
}

func TestProfileService_RejectedSubmitKeepsPrevious(t *testing.T) {
	svc, _, m := newProfileService(t)

	_, err := svc.Submit(context.Background(), map[string]any{"name": "X", "email": "broken"})
	var rej *validation.Rejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "email", rej.Field)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardRejections.WithLabelValues("email")))

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultContact(), current)
}

func TestProfileService_UpdateMetadata(t *testing.T) {
	svc, _, _ := newProfileService(t)

	tags := []string{"Messe", "Messe", "", "Investor"}
	for i := 0; i < 30; i++ {
		tags = append(tags, "t"+strings.Repeat("x", i))
	}
	rec, err := svc.UpdateMetadata(context.Background(), tags, "met at <b>booth</b> 4")
	require.NoError(t, err)
	assert.Len(t, rec.Tags, validation.MaxTags)
	assert.Equal(t, []string{"Messe", "Investor"}, rec.Tags[:2])
	assert.Equal(t, "met at booth 4", rec.Notes)
	assert.Equal(t, entity.DefaultContact().Name, rec.Name)
}

func TestProfileService_SetImage(t *testing.T) {
	svc, _, _ := newProfileService(t)
	content := pngBytes(t)

	rec, err := svc.SetImage(context.Background(), SlotLogo, validation.ImageFile{
		Name: "logo.png", Size: int64(len(content)), MediaType: "image/png",
	}, content)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(content), rec.CompanyLogo)
	assert.Empty(t, rec.ProfileImage)

	rec, err = svc.ClearImage(context.Background(), SlotLogo)
	require.NoError(t, err)
	assert.Empty(t, rec.CompanyLogo)
}

func TestProfileService_SetImageRejections(t *testing.T) {
	svc, _, _ := newProfileService(t)
	content := pngBytes(t)

	tests := map[string]struct {
		slot    ImageSlot
		file    validation.ImageFile
		content []byte
		reason  string
	}{
		"too large": {
			slot:    SlotProfile,
			file:    validation.ImageFile{Name: "a.png", Size: validation.MaxImageBytes + 1, MediaType: "image/png"},
			content: content,
			reason:  validation.ReasonImageTooLarge,
		},
		"wrong declared type": {
			slot:    SlotProfile,
			file:    validation.ImageFile{Name: "a.gif", Size: 10, MediaType: "image/gif"},
			content: content,
			reason:  validation.ReasonImageType,
		},
		"suspicious name": {
			slot:    SlotProfile,
			file:    validation.ImageFile{Name: "a.php.png", Size: 10, MediaType: "image/png"},
			content: content,
			reason:  validation.ReasonSuspiciousName,
		},
		"bytes are not an image": {
			slot:    SlotProfile,
			file:    validation.ImageFile{Name: "a.png", Size: 10, MediaType: "image/png"},
			content: []byte("<html><script>alert(1)</script></html>"),
			reason:  validation.ReasonImageType,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.SetImage(context.Background(), tt.slot, tt.file, tt.content)
			var imgErr *ImageError
			require.ErrorAs(t, err, &imgErr)
			assert.Equal(t, tt.reason, imgErr.Reason)
		})
	}

	_, err := svc.SetImage(context.Background(), ImageSlot("banner"), validation.ImageFile{}, nil)
	assert.ErrorIs(t, err, ErrUnknownImageSlot)
}

func TestProfileService_ApplyExtracted(t *testing.T) {
	svc, _, _ := newProfileService(t)
	_, err := svc.UpdateMetadata(context.Background(), []string{"Messe"}, "keep me")
	require.NoError(t, err)

	rec, err := svc.ApplyExtracted(context.Background(), entity.ExtractedCardData{
		Name:  "Jane Doe",
		Email: "jane@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "jane@x.com", rec.Email)
	assert.Equal(t, entity.DefaultContact().Company, rec.Company)
	assert.Equal(t, []string{"Messe"}, rec.Tags)
	assert.Equal(t, "keep me", rec.Notes)
	assert.Equal(t, "#a855f7", rec.CustomColor)
}

func TestProfileService_Reload(t *testing.T) {
	svc, _, _ := newProfileService(t)
	rec := entity.DefaultContact()
	rec.Name = "From Disk"
	svc.Reload(validation.LoadResult{Record: rec})

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "From Disk", current.Name)
}

func TestProfileService_ReloadIgnoresEmptySlot(t *testing.T) {
	svc, _, _ := newProfileService(t)
	rec := entity.DefaultContact()
	rec.Name = "Kept Name"
	svc.Reload(validation.LoadResult{Record: rec})

	svc.Reload(validation.LoadOrDefault(nil, entity.DefaultContact()))

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kept Name", current.Name)
}

func TestProfileService_WatchWithoutWatcherReturns(t *testing.T) {
	svc, _, _ := newProfileService(t)
	assert.NoError(t, svc.Watch(context.Background()))
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (validation.LoadResult, error) {
	return validation.LoadResult{}, errors.New("unavailable")
}

func (brokenStore) Save(context.Context, entity.ContactRecord) error {
	return errors.New("unavailable")
}

func TestProfileService_StoreFailures(t *testing.T) {
	svc := NewProfileService(brokenStore{}, nil, nil)
	_, err := svc.Current(context.Background())
	assert.Error(t, err)
	_, err = svc.Submit(context.Background(), entity.DefaultContact().ToMap())
	assert.Error(t, err)
}

func TestProfileService_ConcurrentWritersLastWins(t *testing.T) {
	svc, _, _ := newProfileService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.UpdateMetadata(context.Background(), []string{"tag"}, strings.Repeat("n", i))
		}(i)
	}
	wg.Wait()

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tag"}, current.Tags)
}
