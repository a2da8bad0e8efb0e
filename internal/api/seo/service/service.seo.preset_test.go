package seosvc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
)

var presetNow = time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		name       string
		primary    models.DateRange
		comparison *models.DateRange
	}{
		{PresetLast7Days, models.DateRange{Start: "2024-03-08", End: "2024-03-14"}, nil},
		{PresetLast28Days, models.DateRange{Start: "2024-02-16", End: "2024-03-14"}, nil},
		{PresetLast7VsPrevious, models.DateRange{Start: "2024-03-08", End: "2024-03-14"},
			&models.DateRange{Start: "2024-03-01", End: "2024-03-07"}},
		{PresetLast28VsPrevious, models.DateRange{Start: "2024-02-16", End: "2024-03-14"},
			&models.DateRange{Start: "2024-01-19", End: "2024-02-15"}},
		{PresetLast7YearOverYear, models.DateRange{Start: "2024-03-08", End: "2024-03-14"},
			&models.DateRange{Start: "2023-03-08", End: "2023-03-14"}},
		{PresetLast3MVsPrevious, models.DateRange{Start: "2023-12-16", End: "2024-03-14"},
			&models.DateRange{Start: "2023-09-17", End: "2023-12-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePreset(tt.name, presetNow)
			require.NoError(t, err)
			assert.Equal(t, tt.primary, got.Primary)
			assert.Equal(t, tt.comparison, got.Comparison)
			if tt.comparison != nil {
				assert.Equal(t, got.Primary.Days(), got.Comparison.Days())
			}
		})
	}
}

func TestResolvePreset_Unknown(t *testing.T) {
	_, err := ResolvePreset("last-year-ish", presetNow)
	assert.True(t, errors.Is(err, common.ErrUnknownPreset))

	_, err = ResolvePreset(PresetCustom, presetNow)
	assert.Error(t, err)
}

func TestListPresets(t *testing.T) {
	list := ListPresets(presetNow)
	require.Len(t, list, len(presetOrder))
	assert.Equal(t, PresetLast7Days, list[0].Name)
	for _, p := range list {
		assert.NotEmpty(t, p.Label)
		assert.Equal(t, "2024-03-14", p.Primary.End)
	}
}

func TestResolveFilters(t *testing.T) {
	f, err := ResolveFilters(models.FilterOptions{Preset: PresetLast7VsPrevious}, presetNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", f.DateRange.Start)
	require.NotNil(t, f.ComparisonRange)

	custom := models.FilterOptions{
		Preset:          PresetCustom,
		DateRange:       models.DateRange{Start: "2024-01-01", End: "2024-01-31"},
		ComparisonRange: &models.DateRange{},
	}
	f, err = ResolveFilters(custom, presetNow)
	require.NoError(t, err)
	assert.Nil(t, f.ComparisonRange, "khoảng so sánh rỗng bị bỏ")

	_, err = ResolveFilters(models.FilterOptions{}, presetNow)
	assert.True(t, errors.Is(err, common.ErrInvalidDate))

	_, err = ResolveFilters(models.FilterOptions{DateRange: models.DateRange{Start: "2024-02-01", End: "2024-01-01"}}, presetNow)
	assert.True(t, errors.Is(err, common.ErrInvalidRange))

	_, err = ResolveFilters(models.FilterOptions{
		DateRange: models.DateRange{Start: "2024-01-01", End: "2024-01-02"},
		Sources:   []models.Source{"bing"},
	}, presetNow)
	assert.True(t, errors.Is(err, common.ErrInvalidSource))
}

func TestResolveFilters_Metrics(t *testing.T) {
	base := models.FilterOptions{DateRange: models.DateRange{Start: "2024-01-01", End: "2024-01-02"}}

	f := base
	f.Metrics = []models.MetricType{" Clicks", "POSITION"}
	got, err := ResolveFilters(f, presetNow)
	require.NoError(t, err)
	assert.Equal(t, []models.MetricType{models.MetricClicks, models.MetricPosition}, got.Metrics)

	f = base
	f.Metrics = []models.MetricType{models.MetricClicks, "foo"}
	_, err = ResolveFilters(f, presetNow)
	assert.True(t, errors.Is(err, common.ErrInvalidMetric))
	assert.Equal(t, 400, common.StatusOf(err))
}
