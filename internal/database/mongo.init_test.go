package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedDoc struct {
	Source    string `bson:"source" index:"single:1,compound:source_site_date"`
	SiteURL   string `bson:"siteUrl,omitempty" index:"compound:source_site_date"`
	Date      string `bson:"date" index:"compound:source_site_date,compound_order:-1"`
	ImportID  string `bson:"importId" index:"single:1"`
	CreatedAt int64  `bson:"createdAt" index:"ttl:3600"`
	Ignored   string `bson:"-" index:"single:1"`
	Plain     string `bson:"plain"`
}

func TestCollectIndexSpecs(t *testing.T) {
	specs, err := collectIndexSpecs(&indexedDoc{})
	require.NoError(t, err)

	byName := map[string]indexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}
	require.Len(t, byName, 4)

	assert.Equal(t, bson.D{{Key: "source", Value: 1}}, byName["source_single"].Keys)
	assert.Equal(t, bson.D{{Key: "importId", Value: 1}}, byName["importId_single"].Keys)
	assert.Equal(t, int32(3600), *byName["createdAt_ttl"].Options.ExpireAfterSeconds)
	assert.Equal(t, bson.D{
		{Key: "source", Value: 1},
		{Key: "siteUrl", Value: 1},
		{Key: "date", Value: -1},
	}, byName["source_site_date"].Keys)
}

func TestCollectIndexSpecsBadTTL(t *testing.T) {
	type bad struct {
		At string `bson:"at" index:"ttl:soon"`
	}
	_, err := collectIndexSpecs(bad{})
	assert.Error(t, err)
}

func TestSameIndex(t *testing.T) {
	specs, err := collectIndexSpecs(indexedDoc{})
	require.NoError(t, err)
	var ttl indexSpec
	for _, s := range specs {
		if s.Name == "createdAt_ttl" {
			ttl = s
		}
	}

	assert.True(t, sameIndex(bson.M{"key": bson.M{"createdAt": int32(1)}, "expireAfterSeconds": int32(3600)}, ttl))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"createdAt": int32(1)}, "expireAfterSeconds": int32(60)}, ttl))
	assert.False(t, sameIndex(bson.M{"key": bson.M{"createdAt": int32(-1)}}, ttl))
}
