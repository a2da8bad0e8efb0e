package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/api/seo/seotest"
	seosvc "seo_dashboard/internal/api/seo/service"
)

type markerFunc func(ctx context.Context) (int64, error)

func (f markerFunc) FailStaleImports(ctx context.Context) (int64, error) {
	return f(ctx)
}

func TestImportTimeoutWorker_RunOnceMarksStaleImports(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	records := seotest.NewRecordStore()
	stale := records.Insert(models.ImportRecord{Source: models.SourceGSC, Status: models.ImportPending, CreatedAt: now.Add(-2 * time.Hour).Unix()})
	fresh := records.Insert(models.ImportRecord{Source: models.SourceGSC, Status: models.ImportPending, CreatedAt: now.Add(-time.Minute).Unix()})

	imports := seosvc.NewImportService(seotest.NewMetricStore(), records, seosvc.ImportOptions{
		Timeout: 30 * time.Minute,
		Now:     func() time.Time { return now },
	})
	w := NewImportTimeoutWorker(imports, time.Minute)

	assert.Equal(t, int64(1), w.RunOnce(context.Background()))

	rec, err := records.Get(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, models.ImportFailed, rec.Status)
	assert.NotEmpty(t, rec.ErrorMessage)

	rec, err = records.Get(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, models.ImportPending, rec.Status)

	assert.Equal(t, int64(0), w.RunOnce(context.Background()))
}

func TestImportTimeoutWorker_SurvivesErrorsAndPanics(t *testing.T) {
	w := NewImportTimeoutWorker(markerFunc(func(ctx context.Context) (int64, error) {
		return 0, errors.New("mongo down")
	}), 0)
	assert.Equal(t, 5*time.Minute, w.interval)
	assert.Equal(t, int64(0), w.RunOnce(context.Background()))

	w = NewImportTimeoutWorker(markerFunc(func(ctx context.Context) (int64, error) {
		panic("boom")
	}), time.Minute)
	assert.NotPanics(t, func() { w.RunOnce(context.Background()) })
}

func TestImportTimeoutWorker_StartStopsOnCancel(t *testing.T) {
	var calls int32
	w := NewImportTimeoutWorker(markerFunc(func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&calls, 1)
		return 0, nil
	}), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker không dừng sau khi cancel")
	}
}
