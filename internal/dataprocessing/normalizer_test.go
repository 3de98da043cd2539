package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(slog.Default())
}

func TestNormalizeScadaRenamesAndDeduplicates(t *testing.T) {
	raw := &Table{
		Columns: []string{"Wind_turbine_name", "Date_time", "P_avg", "extra"},
		Rows: [][]string{
			{"R80711", "2014-01-01T01:00:00+01:00", "100.5", "x"},
			{"R80711", "2014-01-01T01:00:00+01:00", "999.9", "y"}, // duplicate key, dropped
			{"R80721", "2014-01-01T01:00:00+01:00", "200.0", "z"},
		},
	}

	got, err := testNormalizer().Normalize(context.Background(), CategoryScada, raw)
	require.NoError(t, err)

	// Canonical names present, unknown column passes through.
	assert.Equal(t, []string{"asset_id", "time", "WTUR_W", "extra"}, got.Columns)

	// Duplicate (time, asset_id) collapsed keeping the first occurrence.
	require.Equal(t, 2, got.NumRows())
	assert.Equal(t, "100.5", got.Cell(0, "WTUR_W"))

	// Timestamps rewritten as UTC.
	assert.Equal(t, "2014-01-01T00:00:00Z", got.Cell(0, "time"))

	// Input table is untouched.
	assert.Equal(t, 3, raw.NumRows())
	assert.Equal(t, "Wind_turbine_name", raw.Columns[0])
}

func TestNormalizeScadaIdempotentOnKey(t *testing.T) {
	raw := &Table{
		Columns: []string{"Wind_turbine_name", "Date_time"},
		Rows: [][]string{
			{"T1", "2020-01-01T00:00:00Z"},
			{"T1", "2020-01-01T00:00:00Z"},
			{"T2", "2020-01-01T00:00:00Z"},
		},
	}

	n := testNormalizer()
	once, err := n.Normalize(context.Background(), CategoryScada, raw)
	require.NoError(t, err)
	twice, err := n.Normalize(context.Background(), CategoryScada, once)
	require.NoError(t, err)

	assert.Equal(t, once.NumRows(), twice.NumRows())
}

func TestNormalizeScadaRejectsBadTimestamps(t *testing.T) {
	raw := &Table{
		Columns: []string{"Wind_turbine_name", "Date_time"},
		Rows:    [][]string{{"T1", "never o'clock"}},
	}

	_, err := testNormalizer().Normalize(context.Background(), CategoryScada, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scada")
	assert.Contains(t, err.Error(), "unparseable timestamp")
}

func TestNormalizeMeterAndCurtail(t *testing.T) {
	raw := &Table{
		Columns: []string{"time_utc", "net_energy_kwh"},
		Rows:    [][]string{{"2019-06-01 00:00:00", "123.4"}},
	}
	got, err := testNormalizer().Normalize(context.Background(), CategoryMeter, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "MMTR_SupWh"}, got.Columns)

	raw = &Table{
		Columns: []string{"time_utc", "curtailment_kwh", "availability_kwh"},
		Rows:    [][]string{{"2019-06-01", "1", "2"}},
	}
	got, err = testNormalizer().Normalize(context.Background(), CategoryCurtail, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "IAVL_ExtPwrDnWh", "IAVL_DnWh"}, got.Columns)
}

func TestNormalizeAssetInjectsTypeColumn(t *testing.T) {
	raw := &Table{
		Columns: []string{"Wind_turbine_name", "Latitude", "Longitude"},
		Rows: [][]string{
			{"T1", "48.45", "5.58"},
			{"T2", "48.46", "5.59"},
		},
	}

	got, err := testNormalizer().Normalize(context.Background(), CategoryAsset, raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"asset_id", "latitude", "longitude", "type"}, got.Columns)
	assert.Equal(t, "turbine", got.Cell(0, "type"))
	assert.Equal(t, "turbine", got.Cell(1, "type"))

	// An existing type column is left alone.
	withType := &Table{
		Columns: []string{"Wind_turbine_name", "type"},
		Rows:    [][]string{{"T1", "met_tower"}},
	}
	got, err = testNormalizer().Normalize(context.Background(), CategoryAsset, withType)
	require.NoError(t, err)
	assert.Equal(t, "met_tower", got.Cell(0, "type"))
}

func TestNormalizeReanalysisDropsUnnamedColumns(t *testing.T) {
	raw := &Table{
		Columns: []string{"Unnamed: 0", "datetime", "ws_100m", "surf_pres"},
		Rows: [][]string{
			{"0", "2018-01-01 00:00:00", "7.2", "101325"},
		},
	}

	got, err := testNormalizer().NormalizeReanalysis(context.Background(), ProductERA5, raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"time", "WMETR_HorWdSpd", "WMETR_EnvPres"}, got.Columns)
	assert.Equal(t, "2018-01-01T00:00:00Z", got.Cell(0, "time"))
}

func TestNormalizeReanalysisMERRA2(t *testing.T) {
	raw := &Table{
		Columns: []string{"datetime", "ws_50m", "surface_pressure"},
		Rows:    [][]string{{"2018-01-01", "6.1", "101300"}},
	}

	got, err := testNormalizer().NormalizeReanalysis(context.Background(), ProductMERRA2, raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "WMETR_HorWdSpd", "WMETR_EnvPres"}, got.Columns)
}

func TestDetectReanalysisProduct(t *testing.T) {
	era5 := &Table{Columns: []string{"datetime", "ws_100m"}}
	merra2 := &Table{Columns: []string{"datetime", "ws_50m"}}
	unknown := &Table{Columns: []string{"datetime", "wind_speed"}}

	assert.Equal(t, ProductERA5, DetectReanalysisProduct(era5))
	assert.Equal(t, ProductMERRA2, DetectReanalysisProduct(merra2))
	assert.Equal(t, ProductERA5, DetectReanalysisProduct(unknown))
}

func TestNormalizeUnknownCategory(t *testing.T) {
	_, err := testNormalizer().Normalize(context.Background(), Category("bogus"), &Table{})
	require.Error(t, err)

	_, err = testNormalizer().Normalize(context.Background(), CategoryScada, nil)
	require.Error(t, err)
}
