package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Category identifies one of the fixed measurement-source classes.
type Category string

const (
	CategoryScada      Category = "scada"
	CategoryMeter      Category = "meter"
	CategoryTower      Category = "tower"
	CategoryStatus     Category = "status"
	CategoryCurtail    Category = "curtail"
	CategoryAsset      Category = "asset"
	CategoryReanalysis Category = "reanalysis"
)

// Categories lists every accepted upload category in the order the upload
// form presents them.
var Categories = []Category{
	CategoryScada,
	CategoryMeter,
	CategoryTower,
	CategoryStatus,
	CategoryCurtail,
	CategoryAsset,
	CategoryReanalysis,
}

// ReanalysisProduct names an atmospheric reanalysis dataset.
type ReanalysisProduct string

const (
	ProductERA5   ReanalysisProduct = "era5"
	ProductMERRA2 ReanalysisProduct = "merra2"
)

// Rename tables: raw source column names to the engine's canonical names.
// Columns not listed pass through unrenamed.

var scadaRename = map[string]string{
	"Wind_turbine_name": "asset_id",
	"Date_time":         "time",
	"P_avg":             "WTUR_W",
	"Ws_avg":            "WMET_HorWdSpd",
	"Wa_avg":            "WMET_HorWdDir",
	"Va_avg":            "WMET_HorWdDirRel",
	"Ot_avg":            "WMET_EnvTmp",
	"Ya_avg":            "WTUR_TurSt",
	"Ba_avg":            "WROT_BlPthAngVal",
}

var meterRename = map[string]string{
	"time_utc":       "time",
	"net_energy_kwh": "MMTR_SupWh",
}

var curtailRename = map[string]string{
	"time_utc":         "time",
	"curtailment_kwh":  "IAVL_ExtPwrDnWh",
	"availability_kwh": "IAVL_DnWh",
}

var assetRename = map[string]string{
	"Wind_turbine_name": "asset_id",
	"Latitude":          "latitude",
	"Longitude":         "longitude",
	"Rated_power":       "rated_power",
	"Hub_height_m":      "hub_height",
	"Rotor_diameter_m":  "rotor_diameter",
	"elevation_m":       "elevation",
}

var era5Rename = map[string]string{
	"datetime":  "time",
	"ws_100m":   "WMETR_HorWdSpd",
	"u_100":     "WMETR_HorWdSpdU",
	"v_100":     "WMETR_HorWdSpdV",
	"t_2m":      "WMETR_EnvTmp",
	"dens_100m": "WMETR_AirDen",
	"surf_pres": "WMETR_EnvPres",
}

var merra2Rename = map[string]string{
	"datetime":         "time",
	"ws_50m":           "WMETR_HorWdSpd",
	"u_50":             "WMETR_HorWdSpdU",
	"v_50":             "WMETR_HorWdSpdV",
	"temp_2m":          "WMETR_EnvTmp",
	"dens_50m":         "WMETR_AirDen",
	"surface_pressure": "WMETR_EnvPres",
}

// Normalizer maps raw category tables onto the canonical schema the analysis
// engine requires, applying per-category structural fixes along the way.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer with the given logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
	}
}

// Normalize produces the canonical table for a non-reanalysis category.
// The input table is not mutated. SCADA tables additionally get their time
// column parsed as UTC and duplicate (time, asset_id) rows collapsed to the
// first occurrence, because downstream pivoting requires a unique key.
func (n *Normalizer) Normalize(ctx context.Context, category Category, table *Table) (*Table, error) {
	if table == nil {
		return nil, fmt.Errorf("%s: no table supplied", category)
	}

	switch category {
	case CategoryScada:
		out := renameColumns(table, scadaRename)
		if err := normalizeTimeColumn(out); err != nil {
			return nil, fmt.Errorf("%s: %w", category, err)
		}
		before := out.NumRows()
		out = deduplicateByTimeAsset(out)
		if dropped := before - out.NumRows(); dropped > 0 {
			n.logger.InfoContext(ctx, "collapsed duplicate SCADA rows",
				slog.Int("dropped", dropped),
				slog.Int("remaining", out.NumRows()))
		}
		return out, nil

	case CategoryMeter:
		out := renameColumns(table, meterRename)
		if err := normalizeTimeColumn(out); err != nil {
			return nil, fmt.Errorf("%s: %w", category, err)
		}
		return out, nil

	case CategoryCurtail:
		out := renameColumns(table, curtailRename)
		if err := normalizeTimeColumn(out); err != nil {
			return nil, fmt.Errorf("%s: %w", category, err)
		}
		return out, nil

	case CategoryAsset:
		out := renameColumns(table, assetRename)
		ensureTypeColumn(out)
		return out, nil

	case CategoryTower, CategoryStatus:
		// No rename table for these categories; canonicalize the time
		// column if one is present and pass the rest through.
		out := renameColumns(table, nil)
		if out.HasColumn(TimeColumn) {
			if err := normalizeTimeColumn(out); err != nil {
				return nil, fmt.Errorf("%s: %w", category, err)
			}
		}
		return out, nil

	case CategoryReanalysis:
		return nil, fmt.Errorf("reanalysis tables must be normalized per product")

	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

// NormalizeReanalysis produces the canonical table for one reanalysis
// product, dropping transport artifacts (unnamed index columns) first.
func (n *Normalizer) NormalizeReanalysis(ctx context.Context, product ReanalysisProduct, table *Table) (*Table, error) {
	if table == nil {
		return nil, fmt.Errorf("reanalysis %s: no table supplied", product)
	}

	var rename map[string]string
	switch product {
	case ProductERA5:
		rename = era5Rename
	case ProductMERRA2:
		rename = merra2Rename
	default:
		return nil, fmt.Errorf("unknown reanalysis product %q", product)
	}

	out := renameColumns(dropUnnamedColumns(table), rename)
	if err := normalizeTimeColumn(out); err != nil {
		return nil, fmt.Errorf("reanalysis %s: %w", product, err)
	}
	return out, nil
}

// DetectReanalysisProduct infers which product an uploaded reanalysis table
// belongs to from its column fingerprint. Unknown fingerprints default to
// ERA5 so the upload still lands under a product key.
func DetectReanalysisProduct(table *Table) ReanalysisProduct {
	if table == nil {
		return ProductERA5
	}
	for raw := range merra2Rename {
		if raw != "datetime" && table.HasColumn(raw) {
			return ProductMERRA2
		}
	}
	return ProductERA5
}

// renameColumns returns a shallow copy of the table with renamed columns.
// A nil rename map still copies, so callers can mutate the result freely.
func renameColumns(table *Table, rename map[string]string) *Table {
	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		if canonical, ok := rename[c]; ok {
			columns[i] = canonical
		} else {
			columns[i] = c
		}
	}
	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		cp := make([]string, len(row))
		copy(cp, row)
		rows[i] = cp
	}
	return &Table{Columns: columns, Rows: rows}
}

// dropUnnamedColumns removes columns whose header contains "Unnamed", the
// artifact left behind when an index column is round-tripped through CSV.
func dropUnnamedColumns(table *Table) *Table {
	keep := make([]int, 0, len(table.Columns))
	columns := make([]string, 0, len(table.Columns))
	for i, c := range table.Columns {
		if strings.Contains(c, "Unnamed") {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, c)
	}

	rows := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		kept := make([]string, 0, len(keep))
		for _, idx := range keep {
			if idx < len(row) {
				kept = append(kept, row[idx])
			} else {
				kept = append(kept, "")
			}
		}
		rows[i] = kept
	}
	return &Table{Columns: columns, Rows: rows}
}

// normalizeTimeColumn parses every cell of the canonical time column and
// rewrites it as RFC 3339 UTC. A missing column is not an error here; the
// engine validates required columns when the plant object is built.
func normalizeTimeColumn(table *Table) error {
	idx := table.ColumnIndex(TimeColumn)
	if idx < 0 {
		return nil
	}
	for i, row := range table.Rows {
		if idx >= len(row) {
			continue
		}
		ts, err := parseTimestamp(row[idx])
		if err != nil {
			return fmt.Errorf("row %d: unparseable timestamp %q", i+1, row[idx])
		}
		row[idx] = ts.Format(timeLayout)
	}
	return nil
}

// deduplicateByTimeAsset collapses rows sharing a (time, asset_id) key,
// keeping the first occurrence.
func deduplicateByTimeAsset(table *Table) *Table {
	timeIdx := table.ColumnIndex(TimeColumn)
	assetIdx := table.ColumnIndex(AssetIDColumn)
	if timeIdx < 0 || assetIdx < 0 {
		return table
	}

	seen := make(map[string]struct{}, len(table.Rows))
	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		key := ""
		if timeIdx < len(row) && assetIdx < len(row) {
			key = row[timeIdx] + "\x00" + row[assetIdx]
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return &Table{Columns: table.Columns, Rows: rows}
}

// ensureTypeColumn injects a literal "turbine" type column when the asset
// table has none; the engine needs it to distinguish asset classes.
func ensureTypeColumn(table *Table) {
	if table.HasColumn("type") {
		return
	}
	table.Columns = append(table.Columns, "type")
	for i := range table.Rows {
		table.Rows[i] = append(table.Rows[i], "turbine")
	}
}
