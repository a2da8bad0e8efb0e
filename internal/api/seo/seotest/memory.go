// Package seotest cung cấp MetricStore và ImportRecordStore trong bộ nhớ cho test của handler, worker và CLI.
package seotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "seo_dashboard/internal/api/base/models"
	"seo_dashboard/internal/api/seo/models"
	seosvc "seo_dashboard/internal/api/seo/service"
	"seo_dashboard/internal/common"
)

// MetricStore là seosvc.MetricStore trong bộ nhớ
type MetricStore struct {
	mu   sync.Mutex
	docs []models.ReportingDocument
}

// NewMetricStore tạo MetricStore rỗng
func NewMetricStore() *MetricStore {
	return &MetricStore{}
}

func inScope(d models.ReportingDocument, source models.Source, siteURL string) bool {
	if d.Source != source {
		return false
	}
	return source != models.SourceGSC || siteURL == "" || d.SiteURL == siteURL
}

func (s *MetricStore) ReplaceSource(ctx context.Context, source models.Source, siteURL string, docs []models.ReportingDocument) (seosvc.ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res seosvc.ReplaceResult
	kept := s.docs[:0:0]
	for _, d := range s.docs {
		if inScope(d, source, siteURL) {
			res.Deleted++
			continue
		}
		kept = append(kept, d)
	}
	s.docs = kept

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s.docs = append(s.docs, d)
		res.Inserted++
	}
	return res, nil
}

func (s *MetricStore) FindDocuments(ctx context.Context, f seosvc.DocumentFilter) ([]models.ReportingDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.ReportingDocument{}
	for _, d := range s.docs {
		switch {
		case f.Source != "" && d.Source != f.Source,
			f.SiteURL != "" && d.SiteURL != f.SiteURL,
			f.Start != "" && d.Date < f.Start,
			f.End != "" && d.Date > f.End,
			f.TimeSeries != nil && d.IsTimeSeries != *f.TimeSeries:
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *MetricStore) Clear(ctx context.Context, source models.Source, siteURL string) (int64, error) {
	res, err := s.ReplaceSource(ctx, source, siteURL, nil)
	return res.Deleted, err
}

// Count đếm document trong phạm vi (nguồn, site)
func (s *MetricStore) Count(source models.Source, siteURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, d := range s.docs {
		if inScope(d, source, siteURL) {
			n++
		}
	}
	return n
}

// RecordStore là seosvc.ImportRecordStore trong bộ nhớ
type RecordStore struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*models.ImportRecord
	order   []primitive.ObjectID
}

// NewRecordStore tạo RecordStore rỗng
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[primitive.ObjectID]*models.ImportRecord)}
}

func (s *RecordStore) Create(ctx context.Context, rec *models.ImportRecord) error {
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

func (s *RecordStore) update(id primitive.ObjectID, fn func(rec *models.ImportRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(rec)
	return nil
}

func (s *RecordStore) Complete(ctx context.Context, id primitive.ObjectID, recordCount, skipped, deleted int64, at time.Time) error {
	return s.update(id, func(rec *models.ImportRecord) {
		rec.Status = models.ImportCompleted
		rec.RecordCount = recordCount
		rec.SkippedCount = skipped
		rec.DeletedCount = deleted
		rec.UpdatedAt = at.Unix()
		rec.CompletedAt = at.Unix()
	})
}

func (s *RecordStore) Fail(ctx context.Context, id primitive.ObjectID, message string, recordCount, deleted int64, at time.Time) error {
	return s.update(id, func(rec *models.ImportRecord) {
		rec.Status = models.ImportFailed
		rec.ErrorMessage = message
		rec.RecordCount = recordCount
		rec.DeletedCount = deleted
		rec.UpdatedAt = at.Unix()
		rec.CompletedAt = at.Unix()
	})
}

func (s *RecordStore) Get(ctx context.Context, id primitive.ObjectID) (*models.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *RecordStore) List(ctx context.Context, source models.Source, page, limit int64) (*basemodels.PaginateResult[models.ImportRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := []models.ImportRecord{}
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if source != "" && rec.Source != source {
			continue
		}
		all = append(all, *rec)
	}
	return basemodels.Paginate(all, page, limit), nil
}

func (s *RecordStore) FailStale(ctx context.Context, olderThan time.Time, message string, at time.Time) (int64, error) {
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

// Insert thêm record có sẵn (vd: pending treo từ lần chạy trước)
func (s *RecordStore) Insert(rec models.ImportRecord) primitive.ObjectID {
	_ = s.Create(context.Background(), &rec)
	return rec.ID
}
