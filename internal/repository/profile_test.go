package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/cardshare/internal/config"
	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/logging"
	"github.com/octobees/cardshare/internal/metrics"
	"github.com/octobees/cardshare/internal/storage"
	"github.com/octobees/cardshare/internal/validation"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStore) Put(context.Context, string, []byte) error  { return f.err }

func TestProfileRepository_FirstRunUsesDefault(t *testing.T) {
	m := metrics.New()
	repo := NewProfileRepository(storage.NewMemoryStore(), "contactData", logging.Discard(), m)

	res, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, res.UsedDefault)
	assert.ErrorIs(t, res.Reason, validation.ErrNoStoredState)
	assert.Equal(t, entity.DefaultContact(), res.Record)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoaderFallbacks.WithLabelValues("empty")))
}

func TestProfileRepository_SaveThenLoad(t *testing.T) {
	m := metrics.New()
	repo := NewProfileRepository(storage.NewMemoryStore(), "contactData", logging.Discard(), m)

	rec := entity.DefaultContact()
	rec.Name = "Erika Musterfrau"
	rec.Tags = []string{"Messe", "Kunde"}
	require.NoError(t, repo.Save(context.Background(), rec))

	res, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, res.UsedDefault)
	assert.Equal(t, rec, res.Record)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProfileSaves))
}

func TestProfileRepository_CorruptStateFallsBackAndWarns(t *testing.T) {
	store := storage.NewMemoryStore()
	buf := &bytes.Buffer{}
	m := metrics.New()
	repo := NewProfileRepository(store, "contactData", logging.NewWithWriter(buf, config.LogConfig{}), m)

	cases := map[string]struct {
		raw    string
		reason string
	}{
		"not json":       {raw: "{oops", reason: "undecodable"},
		"json null":      {raw: "null", reason: "undecodable"},
		"missing email":  {raw: `{"name":"A"}`, reason: "rejected"},
		"http website":   {raw: `{"name":"A","email":"a@b.de","website":"http://x.de"}`, reason: "rejected"},
		"tags not array": {raw: `{"name":"A","email":"a@b.de","tags":"x"}`, reason: "rejected"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(context.Background(), "contactData", []byte(tc.raw)))
			res, err := repo.Load(context.Background())
			require.NoError(t, err)
			assert.True(t, res.UsedDefault)
			assert.Equal(t, entity.DefaultContact(), res.Record)
			assert.Equal(t, tc.reason, FallbackReason(res.Reason))
		})
	}
	assert.Contains(t, buf.String(), "stored profile discarded")
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LoaderFallbacks.WithLabelValues("rejected")))
}

func TestProfileRepository_StoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	repo := NewProfileRepository(failingStore{err: boom}, "contactData", logging.Discard(), nil)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, repo.Save(context.Background(), entity.DefaultContact()), boom)
}

func TestProfileRepository_WatchUnsupported(t *testing.T) {
	repo := NewProfileRepository(storage.NewMemoryStore(), "contactData", nil, nil)
	err := repo.Watch(context.Background(), func(validation.LoadResult) {})
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}

func TestFallbackReason(t *testing.T) {
	assert.Equal(t, "unknown", FallbackReason(errors.New("x")))
	assert.Equal(t, "rejected", FallbackReason(&validation.Rejection{Field: "name", Reason: "is required"}))
}

func TestProfileRepository_WatchDecodesHandEdits(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir, logging.Discard())
	require.NoError(t, err)
	m := metrics.New()
	repo := NewProfileRepository(store, "contactData", logging.Discard(), m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan validation.LoadResult, 16)
	done := make(chan error, 1)
	go func() {
		done <- repo.Watch(ctx, func(res validation.LoadResult) {
			select {
			case results <- res:
			default:
			}
		})
	}()

	// The watcher may not be registered yet, so keep editing until it reports.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case res := <-results:
			assert.True(t, res.UsedDefault)
			assert.ErrorIs(t, res.Reason, validation.ErrUndecodable)
			assert.Equal(t, entity.DefaultContact(), res.Record)
			assert.GreaterOrEqual(t, testutil.ToFloat64(m.LoaderFallbacks.WithLabelValues("undecodable")), 1.0)
			cancel()
			require.NoError(t, <-done)
			return
		case <-ticker.C:
			edit := []byte(fmt.Sprintf("{broken %d", i))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "contactData.json"), edit, 0o600))
		case <-deadline:
			t.Fatal("watch did not report the edit")
		}
	}
}
