package plant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windoa/internal/dataprocessing"
)

func scadaTable() *dataprocessing.Table {
	return &dataprocessing.Table{
		Columns: []string{"time", "asset_id", "WTUR_W"},
		Rows: [][]string{
			{"2020-01-01T00:00:00Z", "R80711", "100"},
			{"2020-01-01T00:00:00Z", "R80721", "110"},
			{"2020-01-01T00:10:00Z", "R80711", "105"},
		},
	}
}

func meterTable() *dataprocessing.Table {
	return &dataprocessing.Table{
		Columns: []string{"time", "MMTR_SupWh"},
		Rows:    [][]string{{"2020-01-01T00:00:00Z", "400"}},
	}
}

func TestNewDerivesTurbineIDsFromScada(t *testing.T) {
	data, err := New(DefaultMetadata(), Tables{Scada: scadaTable(), Meter: meterTable()}, KindElectricalLosses)
	require.NoError(t, err)

	assert.Equal(t, []string{"R80711", "R80721"}, data.TurbineIDs)
	assert.Equal(t, 1.0, data.Metadata.CapacityMW)
}

func TestNewFallsBackToAssetTurbineIDs(t *testing.T) {
	asset := &dataprocessing.Table{
		Columns: []string{"asset_id", "type"},
		Rows:    [][]string{{"T1", "turbine"}, {"T2", "turbine"}},
	}

	data, err := New(DefaultMetadata(), Tables{Asset: asset}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"T1", "T2"}, data.TurbineIDs)
}

func TestNewValidatesRequiredCategories(t *testing.T) {
	tests := []struct {
		name         string
		kind         AnalysisKind
		tables       Tables
		wantErr      bool
		wantCategory string
	}{
		{
			name:    "electrical losses satisfied",
			kind:    KindElectricalLosses,
			tables:  Tables{Scada: scadaTable(), Meter: meterTable()},
			wantErr: false,
		},
		{
			name:         "electrical losses missing meter",
			kind:         KindElectricalLosses,
			tables:       Tables{Scada: scadaTable()},
			wantErr:      true,
			wantCategory: "meter",
		},
		{
			name:         "aep missing reanalysis",
			kind:         KindMonteCarloAEP,
			tables:       Tables{Meter: meterTable(), Curtail: meterTable()},
			wantErr:      true,
			wantCategory: "reanalysis",
		},
		{
			name:         "wake losses missing asset",
			kind:         KindWakeLosses,
			tables:       Tables{Scada: scadaTable()},
			wantErr:      true,
			wantCategory: "asset",
		},
		{
			name:    "empty kind skips validation",
			kind:    "",
			tables:  Tables{},
			wantErr: false,
		},
		{
			name:    "unknown kind rejected",
			kind:    AnalysisKind("Clairvoyance"),
			tables:  Tables{Scada: scadaTable()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(DefaultMetadata(), tt.tables, tt.kind)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantCategory != "" {
				assert.Contains(t, err.Error(), tt.wantCategory)
			}
		})
	}
}

func TestTablesCategories(t *testing.T) {
	tables := Tables{
		Scada:      scadaTable(),
		Meter:      meterTable(),
		Reanalysis: map[string]*dataprocessing.Table{"era5": meterTable()},
	}
	assert.Equal(t, []string{"scada", "meter", "reanalysis"}, tables.Categories())

	assert.Empty(t, Tables{}.Categories())
}

func TestNewRecordsReanalysisProducts(t *testing.T) {
	tables := Tables{Reanalysis: map[string]*dataprocessing.Table{"era5": meterTable()}}
	data, err := New(DefaultMetadata(), tables, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"era5"}, data.Metadata.ReanalysisProducts)
}
