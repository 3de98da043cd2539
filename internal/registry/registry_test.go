package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windoa/internal/dataprocessing"
	"windoa/internal/plant"
)

func testTables() plant.Tables {
	return plant.Tables{
		Scada: &dataprocessing.Table{
			Columns: []string{"time", "asset_id", "WTUR_W"},
			Rows:    [][]string{{"2020-01-01T00:00:00Z", "T1", "100"}},
		},
	}
}

func countingBuilder(counter *int64) PlantBuilder {
	return func(meta plant.Metadata, tables plant.Tables, kind plant.AnalysisKind) (*plant.Data, error) {
		atomic.AddInt64(counter, 1)
		return plant.New(meta, tables, kind)
	}
}

func TestCreateThenGet(t *testing.T) {
	r := New(countingBuilder(new(int64)), slog.Default())

	id := r.Create(testTables(), nil)
	assert.Len(t, id, 8)

	ds, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, ds.ID)
	assert.Equal(t, []string{"scada"}, ds.Tables.Categories())
	assert.False(t, ds.HasPlant)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestCreateWithPrefix(t *testing.T) {
	r := New(countingBuilder(new(int64)), slog.Default())

	id := r.CreateWithPrefix("example-", testTables(), nil)
	assert.Contains(t, id, "example-")
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r := New(countingBuilder(new(int64)), slog.Default())

	const n = 64
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- r.Create(testTables(), nil)
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate dataset id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestListAndDelete(t *testing.T) {
	r := New(countingBuilder(new(int64)), slog.Default())

	first := r.Create(testTables(), nil)
	second := r.Create(testTables(), nil)

	infos := r.List()
	require.Len(t, infos, 2)
	assert.Equal(t, first, infos[0].ID)
	assert.Equal(t, second, infos[1].ID)

	assert.False(t, r.Delete("missing"))
	assert.True(t, r.Delete(first))
	assert.False(t, r.Delete(first))

	_, ok := r.Get(first)
	assert.False(t, ok)
	assert.Len(t, r.List(), 1)
}

func TestGetOrCreatePlantMemoizes(t *testing.T) {
	var builds int64
	r := New(countingBuilder(&builds), slog.Default())
	id := r.Create(testTables(), nil)

	ctx := context.Background()
	first, err := r.GetOrCreatePlant(ctx, id, plant.KindElectricalLosses)
	require.NoError(t, err)

	// A second request, even for a different kind, returns the identical
	// cached object without rebuilding.
	second, err := r.GetOrCreatePlant(ctx, id, plant.KindWakeLosses)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&builds))

	ds, ok := r.Get(id)
	require.True(t, ok)
	assert.True(t, ds.HasPlant)
}

func TestGetOrCreatePlantNotFound(t *testing.T) {
	r := New(countingBuilder(new(int64)), slog.Default())

	_, err := r.GetOrCreatePlant(context.Background(), "missing", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrCreatePlantBuilderFailure(t *testing.T) {
	sentinel := errors.New("scada: rows are cursed")
	r := New(func(plant.Metadata, plant.Tables, plant.AnalysisKind) (*plant.Data, error) {
		return nil, sentinel
	}, slog.Default())
	id := r.Create(testTables(), nil)

	_, err := r.GetOrCreatePlant(context.Background(), id, "")
	require.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "cannot create plant object")

	// A failed build is not cached.
	ds, _ := r.Get(id)
	assert.False(t, ds.HasPlant)
}

func TestGetOrCreatePlantSingleFlight(t *testing.T) {
	var builds int64
	slowBuilder := func(meta plant.Metadata, tables plant.Tables, kind plant.AnalysisKind) (*plant.Data, error) {
		atomic.AddInt64(&builds, 1)
		time.Sleep(20 * time.Millisecond)
		return plant.New(meta, tables, kind)
	}
	r := New(slowBuilder, slog.Default())
	id := r.Create(testTables(), nil)

	const n = 16
	results := make([]*plant.Data, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := r.GetOrCreatePlant(context.Background(), id, "")
			require.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&builds))
	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestCustomMetadataUsedForBuild(t *testing.T) {
	var got plant.Metadata
	r := New(func(meta plant.Metadata, tables plant.Tables, kind plant.AnalysisKind) (*plant.Data, error) {
		got = meta
		return plant.New(meta, tables, kind)
	}, slog.Default())

	meta := &plant.Metadata{Latitude: 48.4523, Longitude: 5.5872, CapacityMW: 8.2}
	id := r.Create(testTables(), meta)

	_, err := r.GetOrCreatePlant(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, 48.4523, got.Latitude)
	assert.Equal(t, 8.2, got.CapacityMW)
}
