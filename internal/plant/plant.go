// Package plant defines the canonical plant object the analysis engine
// consumes: plant-level metadata plus the normalized category tables, built
// once per dataset and reused across analysis kinds.
package plant

import (
	"fmt"

	"windoa/internal/dataprocessing"
)

// AnalysisKind tags one of the four supported analysis methods. It doubles
// as the analysis-type hint passed to the plant constructor, which only uses
// it to validate that the required categories are present.
type AnalysisKind string

const (
	KindMonteCarloAEP    AnalysisKind = "MonteCarloAEP"
	KindElectricalLosses AnalysisKind = "ElectricalLosses"
	KindTurbineEnergy    AnalysisKind = "TurbineLongTermGrossEnergy"
	KindWakeLosses       AnalysisKind = "WakeLosses"
)

// Metadata carries plant-level attributes required by the engine.
type Metadata struct {
	Latitude   float64
	Longitude  float64
	CapacityMW float64
	// ReanalysisProducts lists the product names present under the
	// reanalysis category, in registration order.
	ReanalysisProducts []string
}

// DefaultMetadata is used when a dataset was uploaded without plant
// attributes; the engine needs non-zero capacity to run.
func DefaultMetadata() Metadata {
	return Metadata{Latitude: 0, Longitude: 0, CapacityMW: 1.0}
}

// Tables groups the normalized category tables. Absent categories stay nil,
// they are never fabricated. Reanalysis is keyed by product name.
type Tables struct {
	Scada      *dataprocessing.Table
	Meter      *dataprocessing.Table
	Tower      *dataprocessing.Table
	Status     *dataprocessing.Table
	Curtail    *dataprocessing.Table
	Asset      *dataprocessing.Table
	Reanalysis map[string]*dataprocessing.Table
}

// Categories returns the names of the categories present, in the fixed
// category order with reanalysis last.
func (t Tables) Categories() []string {
	var out []string
	if t.Scada != nil {
		out = append(out, string(dataprocessing.CategoryScada))
	}
	if t.Meter != nil {
		out = append(out, string(dataprocessing.CategoryMeter))
	}
	if t.Tower != nil {
		out = append(out, string(dataprocessing.CategoryTower))
	}
	if t.Status != nil {
		out = append(out, string(dataprocessing.CategoryStatus))
	}
	if t.Curtail != nil {
		out = append(out, string(dataprocessing.CategoryCurtail))
	}
	if t.Asset != nil {
		out = append(out, string(dataprocessing.CategoryAsset))
	}
	if len(t.Reanalysis) > 0 {
		out = append(out, string(dataprocessing.CategoryReanalysis))
	}
	return out
}

// Data is the canonical plant object.
type Data struct {
	Metadata Metadata
	Tables   Tables
	// TurbineIDs is derived from SCADA (or asset) data at construction
	// time and gives per-turbine outputs a stable identifier order.
	TurbineIDs []string
}

// requiredCategories maps each analysis kind to the categories it cannot
// run without.
var requiredCategories = map[AnalysisKind][]dataprocessing.Category{
	KindMonteCarloAEP:    {dataprocessing.CategoryMeter, dataprocessing.CategoryCurtail, dataprocessing.CategoryReanalysis},
	KindElectricalLosses: {dataprocessing.CategoryScada, dataprocessing.CategoryMeter},
	KindTurbineEnergy:    {dataprocessing.CategoryScada, dataprocessing.CategoryReanalysis},
	KindWakeLosses:       {dataprocessing.CategoryScada, dataprocessing.CategoryAsset},
}

// New constructs the canonical plant object. An empty kind skips category
// validation, mirroring datasets materialized before any analysis is chosen.
// Validation failures name the responsible category.
func New(meta Metadata, tables Tables, kind AnalysisKind) (*Data, error) {
	if kind != "" {
		required, ok := requiredCategories[kind]
		if !ok {
			return nil, fmt.Errorf("unknown analysis kind %q", kind)
		}
		for _, category := range required {
			if !hasCategory(tables, category) {
				return nil, fmt.Errorf("%s: category required for %s but not supplied", category, kind)
			}
		}
	}

	if len(meta.ReanalysisProducts) == 0 && len(tables.Reanalysis) > 0 {
		for product := range tables.Reanalysis {
			meta.ReanalysisProducts = append(meta.ReanalysisProducts, product)
		}
	}

	return &Data{
		Metadata:   meta,
		Tables:     tables,
		TurbineIDs: deriveTurbineIDs(tables),
	}, nil
}

func hasCategory(tables Tables, category dataprocessing.Category) bool {
	switch category {
	case dataprocessing.CategoryScada:
		return tables.Scada != nil
	case dataprocessing.CategoryMeter:
		return tables.Meter != nil
	case dataprocessing.CategoryTower:
		return tables.Tower != nil
	case dataprocessing.CategoryStatus:
		return tables.Status != nil
	case dataprocessing.CategoryCurtail:
		return tables.Curtail != nil
	case dataprocessing.CategoryAsset:
		return tables.Asset != nil
	case dataprocessing.CategoryReanalysis:
		return len(tables.Reanalysis) > 0
	}
	return false
}

// deriveTurbineIDs prefers SCADA asset ids; asset metadata is the fallback
// for datasets without SCADA.
func deriveTurbineIDs(tables Tables) []string {
	if tables.Scada != nil {
		if ids := tables.Scada.UniqueStrings(dataprocessing.AssetIDColumn); len(ids) > 0 {
			return ids
		}
	}
	if tables.Asset != nil {
		return tables.Asset.UniqueStrings(dataprocessing.AssetIDColumn)
	}
	return nil
}
