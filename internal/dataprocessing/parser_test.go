package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantErr     bool
		wantColumns []string
		wantRows    int
	}{
		{
			name:        "simple table",
			input:       "a,b,c\n1,2,3\n4,5,6\n",
			wantColumns: []string{"a", "b", "c"},
			wantRows:    2,
		},
		{
			name:        "header only",
			input:       "time,value\n",
			wantColumns: []string{"time", "value"},
			wantRows:    0,
		},
		{
			name:        "ragged rows tolerated",
			input:       "a,b,c\n1,2\n4,5,6,7\n",
			wantColumns: []string{"a", "b", "c"},
			wantRows:    2,
		},
		{
			name:        "header whitespace trimmed",
			input:       " a , b\n1,2\n",
			wantColumns: []string{"a", "b"},
			wantRows:    1,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unbalanced quotes",
			input:   "a,b\n\"broken,2\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantColumns, table.Columns)
			assert.Equal(t, tt.wantRows, table.NumRows())
		})
	}
}

func TestParseUploadDispatchesByExtension(t *testing.T) {
	// CSV content under a .csv name parses as CSV.
	table, err := ParseUpload("scada.csv", []byte("time,asset_id\n2020-01-01,T1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.NumRows())

	// CSV content under an .xlsx name must go through the workbook parser
	// and fail, it is not a zip container.
	_, err = ParseUpload("scada.xlsx", []byte("time,asset_id\n2020-01-01,T1\n"))
	require.Error(t, err)
}

func TestTableAccessors(t *testing.T) {
	table := &Table{
		Columns: []string{"time", "asset_id", "WTUR_W"},
		Rows: [][]string{
			{"2020-01-01T00:00:00Z", "T1", "1500.5"},
			{"2020-01-01T00:10:00Z", "T2", "not-a-number"},
			{"2020-01-01T00:20:00Z", "T1", "1600"},
		},
	}

	assert.Equal(t, 3, table.NumRows())
	assert.True(t, table.HasColumn("WTUR_W"))
	assert.False(t, table.HasColumn("missing"))
	assert.Equal(t, "T2", table.Cell(1, "asset_id"))
	assert.Equal(t, "", table.Cell(5, "asset_id"))

	values, ok := table.Floats("WTUR_W")
	require.True(t, ok)
	assert.Equal(t, []float64{1500.5, 1600}, values)

	_, ok = table.Floats("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"T1", "T2"}, table.UniqueStrings("asset_id"))
	assert.Len(t, table.Times(), 3)
}
