package seosvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "seo_dashboard/internal/api/base/models"
	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
)

// memoryMetricStore là MetricStore trong bộ nhớ cho test
type memoryMetricStore struct {
	mu      sync.Mutex
	docs    []models.ReportingDocument
	failAt  int // > 0: lỗi khi chèn document thứ failAt (tính từ 1)
	findErr error
}

func (s *memoryMetricStore) matchScope(d models.ReportingDocument, source models.Source, siteURL string) bool {
	if d.Source != source {
		return false
	}
	return source != models.SourceGSC || siteURL == "" || d.SiteURL == siteURL
}

func (s *memoryMetricStore) ReplaceSource(ctx context.Context, source models.Source, siteURL string, docs []models.ReportingDocument) (ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res ReplaceResult
	kept := s.docs[:0:0]
	for _, d := range s.docs {
		if s.matchScope(d, source, siteURL) {
			res.Deleted++
			continue
		}
		kept = append(kept, d)
	}
	s.docs = kept

	for i, d := range docs {
		if s.failAt > 0 && i+1 == s.failAt {
			return res, common.ErrMongoWrite
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s.docs = append(s.docs, d)
		res.Inserted++
	}
	return res, nil
}

func (s *memoryMetricStore) FindDocuments(ctx context.Context, f DocumentFilter) ([]models.ReportingDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}

	out := []models.ReportingDocument{}
	for _, d := range s.docs {
		if f.Source != "" && d.Source != f.Source {
			continue
		}
		if f.SiteURL != "" && d.SiteURL != f.SiteURL {
			continue
		}
		if f.Start != "" && d.Date < f.Start {
			continue
		}
		if f.End != "" && d.Date > f.End {
			continue
		}
		if f.TimeSeries != nil && d.IsTimeSeries != *f.TimeSeries {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memoryMetricStore) Clear(ctx context.Context, source models.Source, siteURL string) (int64, error) {
	res, err := s.ReplaceSource(ctx, source, siteURL, nil)
	return res.Deleted, err
}

func (s *memoryMetricStore) count(source models.Source, siteURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.docs {
		if s.matchScope(d, source, siteURL) {
			n++
		}
	}
	return n
}

// memoryRecordStore là ImportRecordStore trong bộ nhớ cho test
type memoryRecordStore struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*models.ImportRecord
	order   []primitive.ObjectID
}

func newMemoryRecordStore() *memoryRecordStore {
	return &memoryRecordStore{records: make(map[primitive.ObjectID]*models.ImportRecord)}
}

func (s *memoryRecordStore) Create(ctx context.Context, rec *models.ImportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	cp := *rec
	s.records[rec.ID] = &cp
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *memoryRecordStore) Complete(ctx context.Context, id primitive.ObjectID, recordCount, skipped, deleted int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return common.ErrNotFound
	}
	rec.Status = models.ImportCompleted
	rec.RecordCount = recordCount
	rec.SkippedCount = skipped
	rec.DeletedCount = deleted
	rec.UpdatedAt = at.Unix()
	rec.CompletedAt = at.Unix()
	return nil
}

func (s *memoryRecordStore) Fail(ctx context.Context, id primitive.ObjectID, message string, recordCount, deleted int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return common.ErrNotFound
	}
	rec.Status = models.ImportFailed
	rec.ErrorMessage = message
	rec.RecordCount = recordCount
	rec.DeletedCount = deleted
	rec.UpdatedAt = at.Unix()
	rec.CompletedAt = at.Unix()
	return nil
}

func (s *memoryRecordStore) Get(ctx context.Context, id primitive.ObjectID) (*models.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memoryRecordStore) List(ctx context.Context, source models.Source, page, limit int64) (*basemodels.PaginateResult[models.ImportRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.ImportRecord
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if source != "" && rec.Source != source {
			continue
		}
		all = append(all, *rec)
	}
	return basemodels.Paginate(all, page, limit), nil
}

func (s *memoryRecordStore) FailStale(ctx context.Context, olderThan time.Time, message string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.records {
		if rec.Status == models.ImportPending && rec.CreatedAt < olderThan.Unix() {
			rec.Status = models.ImportFailed
			rec.ErrorMessage = message
			rec.UpdatedAt = at.Unix()
			n++
		}
	}
	return n, nil
}

// fakeFetcher trả dữ liệu GSC cố định theo dimensions
type fakeFetcher struct {
	totals  []models.GSCRow
	details []models.GSCRow
	err     error
	block   bool
	calls   [][]string
}

func (f *fakeFetcher) QueryRows(ctx context.Context, siteURL, startDate, endDate string, dimensions []string) ([]models.GSCRow, error) {
	f.calls = append(f.calls, dimensions)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(dimensions) == 1 {
		return f.totals, nil
	}
	return f.details, nil
}

func gscRow(date, query, page string, clicks, impressions, ctr, position float64) models.GSCRow {
	return models.GSCRow{
		Date:        date,
		Query:       query,
		Page:        page,
		Clicks:      models.Float(clicks),
		Impressions: models.Float(impressions),
		CTR:         models.Float(ctr),
		Position:    models.Float(position),
	}
}
