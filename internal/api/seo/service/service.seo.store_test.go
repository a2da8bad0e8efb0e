package seosvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"seo_dashboard/internal/api/seo/models"
)

func TestScopeFilter(t *testing.T) {
	assert.Equal(t, bson.M{"source": models.SourceGSC, "siteUrl": siteA}, scopeFilter(models.SourceGSC, siteA))
	assert.Equal(t, bson.M{"source": models.SourceGSC}, scopeFilter(models.SourceGSC, ""))
	// Snapshot Ahrefs không gắn với property
	assert.Equal(t, bson.M{"source": models.SourceAhrefs}, scopeFilter(models.SourceAhrefs, siteA))
}

func TestBuildDocumentFilter(t *testing.T) {
	ts := true
	got := buildDocumentFilter(DocumentFilter{
		Source:     models.SourceGSC,
		SiteURL:    siteA,
		Start:      "2024-01-01",
		End:        "2024-01-31",
		TimeSeries: &ts,
	})
	assert.Equal(t, bson.M{
		"source":       models.SourceGSC,
		"siteUrl":      siteA,
		"date":         bson.M{"$gte": "2024-01-01", "$lte": "2024-01-31"},
		"isTimeSeries": true,
	}, got)

	assert.Equal(t, bson.M{"date": bson.M{"$lte": "2024-01-31"}}, buildDocumentFilter(DocumentFilter{End: "2024-01-31"}))
	assert.Empty(t, buildDocumentFilter(DocumentFilter{}))
}

func reportingDocs(n int) []models.ReportingDocument {
	docs := make([]models.ReportingDocument, n)
	for i := range docs {
		docs[i] = models.ReportingDocument{Source: models.SourceGSC, SiteURL: siteA, Date: "2024-01-01"}
	}
	return docs
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoMetricStore_ReplaceSource(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("xóa theo phạm vi rồi chèn theo batch", func(mt *mtest.T) {
		store := NewMongoMetricStoreWithCollection(mt.Coll, 2)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		res, err := store.ReplaceSource(context.Background(), models.SourceGSC, siteA, reportingDocs(5))
		require.NoError(mt, err)
		assert.Equal(mt, ReplaceResult{Deleted: 4, Inserted: 5}, res)
		assert.Equal(mt, []string{"delete", "insert", "insert", "insert"}, commandNames(mt))

		started := mt.GetAllStartedEvents()
		q := started[0].Command.Lookup("deletes").Array().Index(0).Value().Document().Lookup("q").Document()
		assert.Equal(mt, string(models.SourceGSC), q.Lookup("source").StringValue())
		assert.Equal(mt, siteA, q.Lookup("siteUrl").StringValue())

		for i, want := range []int{2, 2, 1} {
			values, err := started[i+1].Command.Lookup("documents").Array().Values()
			require.NoError(mt, err)
			assert.Len(mt, values, want)
		}
	})

	mt.Run("batch lỗi giữa chừng giữ số đã ghi", func(mt *mtest.T) {
		store := NewMongoMetricStoreWithCollection(mt.Coll, 2)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 7}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 1, Code: 11000, Message: "duplicate key"}),
		)

		res, err := store.ReplaceSource(context.Background(), models.SourceGSC, siteA, reportingDocs(5))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "insert batch 2-4")
		assert.Equal(mt, int64(7), res.Deleted)
		// 2 document ở batch đầu + 1 document trước write error của batch thứ hai
		assert.Equal(mt, int64(3), res.Inserted)
		assert.Equal(mt, []string{"delete", "insert", "insert"}, commandNames(mt))
	})

	mt.Run("Ahrefs xóa toàn bộ nguồn", func(mt *mtest.T) {
		store := NewMongoMetricStoreWithCollection(mt.Coll, 2)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		res, err := store.ReplaceSource(context.Background(), models.SourceAhrefs, siteA, nil)
		require.NoError(mt, err)
		assert.Equal(mt, ReplaceResult{}, res)

		started := mt.GetAllStartedEvents()
		require.Len(mt, started, 1)
		q := started[0].Command.Lookup("deletes").Array().Index(0).Value().Document().Lookup("q").Document()
		_, err = q.LookupErr("siteUrl")
		assert.Error(mt, err)
	})
}
