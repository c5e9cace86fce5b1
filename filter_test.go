package geocolumn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/geocolumn/domain/model"
)

func TestFilterByCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		marker string
		want   []model.ProjectionRow
	}{
		{
			name:   "cities",
			marker: CityMarker,
			want: []model.ProjectionRow{
				{AdminCode: "5300108", Category: "CIDADE", Longitude: "-47.9297", Latitude: "-15.7797"},
				{AdminCode: "5208707", Category: "CIDADE", Longitude: "-49.2643", Latitude: "-16.6864"},
			},
		},
		{
			name:   "single match",
			marker: "POVOADO",
			want:   []model.ProjectionRow{{AdminCode: "5208707", Category: "POVOADO"}},
		},
		{name: "exact match only", marker: "cidade"},
		{name: "no match", marker: "ALDEIA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := testProjection()
			got, err := FilterByCategory(context.Background(), source, tt.marker)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Rows())
			assert.Equal(t, source.Sources(), got.Sources())
			assert.Equal(t, source.Strategy(), got.Strategy())
			assert.Equal(t, source.Name(), got.Name())
			assert.Equal(t, 4, source.Len(), "source projection is unchanged")
		})
	}
}

func TestFilterByCategory_KeepsTextVerbatim(t *testing.T) {
	t.Parallel()

	proj := model.NewProjection("verbatim", model.StrategyByNamePattern, [4]string{"c", "t", "x", "y"},
		[]model.ProjectionRow{
			{AdminCode: "0012", Category: "CIDADE", Longitude: "-47.90", Latitude: "-15.780"},
			{AdminCode: "13", Category: "VILA", Longitude: "1e3", Latitude: "0"},
		})

	got, err := FilterByCategory(context.Background(), proj, "CIDADE")
	require.NoError(t, err)
	assert.Equal(t, []model.ProjectionRow{{AdminCode: "0012", Category: "CIDADE", Longitude: "-47.90", Latitude: "-15.780"}}, got.Rows())
}

func TestCategoryCounts(t *testing.T) {
	t.Parallel()

	counts, err := CategoryCounts(context.Background(), testProjection())
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Category: "CIDADE", Rows: 2},
		{Category: "VILA", Rows: 1},
		{Category: "POVOADO", Rows: 1},
	}, counts)

	empty := testProjection().WithRows(nil)
	counts, err = CategoryCounts(context.Background(), empty)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestCategoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenStore(ctx, testProjection())
	require.NoError(t, err)
	defer store.Close()

	// the same store serves several queries
	for range 2 {
		cities, err := store.FilterByCategory(ctx, CityMarker)
		require.NoError(t, err)
		assert.Equal(t, 2, cities.Len())
	}

	counts, err := store.CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 3)
}

func TestFilter_NilProjection(t *testing.T) {
	t.Parallel()

	_, err := OpenStore(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilProjection)

	_, err = FilterByCategory(context.Background(), nil, CityMarker)
	assert.ErrorIs(t, err, ErrNilProjection)

	_, err = CategoryCounts(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilProjection)
}

func TestFilter_ResolvedTable(t *testing.T) {
	t.Parallel()

	table := newTestTable("BR_Localidades_2010", ibgeHeader,
		ibgeRow(" 5300108", "CIDADE ", "-47.9297", "-15.7797"),
		ibgeRow("5300108", "VILA", "-47.6145", "-15.4528"),
	)
	res := quietResolver().Resolve(table)
	require.Equal(t, StrategyByPosition, res.Strategy)

	cities, err := FilterByCategory(context.Background(), res.Projection, CityMarker)
	require.NoError(t, err)
	require.Equal(t, 1, cities.Len())
	assert.Equal(t, "5300108", cities.Rows()[0].AdminCode)
}
