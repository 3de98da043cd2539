// Package engine defines the boundary toward the operational-analysis
// engine: the four analysis invocations, their parameter sets, and the raw
// numeric outputs each exposes on completion. The outputs are deliberately
// loose in shape (scalars may be absent, per-turbine results may arrive as
// a labeled mapping or a bare array); the result post-processor owns the
// reduction to a presentation-ready record.
package engine

import (
	"context"

	"windoa/internal/plant"
)

// Runner is the analysis engine contract. Implementations run synchronous,
// CPU-bound Monte Carlo simulations and should honor context cancellation
// between iterations.
type Runner interface {
	RunAEP(ctx context.Context, data *plant.Data, params AEPParams) (*AEPOutput, error)
	RunElectricalLosses(ctx context.Context, data *plant.Data, params ElectricalLossesParams) (*ElectricalLossesOutput, error)
	RunTurbineEnergy(ctx context.Context, data *plant.Data, params TurbineEnergyParams) (*TurbineEnergyOutput, error)
	RunWakeLosses(ctx context.Context, data *plant.Data, params WakeLossesParams) (*WakeLossesOutput, error)
}

// AEPParams parameterizes the Monte Carlo AEP estimation.
type AEPParams struct {
	NumSim            int
	TimeResolution    string
	RegModel          string
	RegTemperature    bool
	RegWindDirection  bool
	UncertaintyMeter  float64
	UncertaintyLosses float64
	OutlierDetection  bool
}

// ElectricalLossesParams parameterizes the electrical-losses estimation.
type ElectricalLossesParams struct {
	NumSim           int
	UncertaintyMeter float64
	UncertaintyScada float64
}

// TurbineEnergyParams parameterizes the turbine long-term gross-energy
// estimation.
type TurbineEnergyParams struct {
	NumSim           int
	UncertaintyScada float64
}

// WakeLossesParams parameterizes the wake-losses estimation.
type WakeLossesParams struct {
	NumSim            int
	WindDirectionCol  string
	WindDirectionType string
	WDBinWidth        float64
}

// AEPOutput is the raw AEP simulation matrix, flattened. The engine does not
// guarantee an energy unit; magnitude-based detection happens downstream.
type AEPOutput struct {
	Results []float64
}

// ElectricalLossesOutput is the per-simulation fractional loss array
// (0-1 fractions, never percentages).
type ElectricalLossesOutput struct {
	Losses []float64
}

// TurbineEnergyOutput carries two independent estimates at different
// aggregation levels: a per-simulation plant-level total and a per-turbine
// per-day table, both in watt-hours.
type TurbineEnergyOutput struct {
	PlantGrossWh   []float64
	TurbineDailyWh map[string][]float64
}

// WakeLossesOutput exposes plant-level statistics from the long-term
// estimate when available, falling back to the period-of-record estimate,
// plus a shape-variable per-turbine result.
type WakeLossesOutput struct {
	LongTermMean *float64
	LongTermStd  *float64
	PORMean      *float64
	PORStd       *float64

	// TurbineMeans holds per-turbine long-term mean loss fractions.
	TurbineMeans ValueSet
	// TurbineIDs is the engine's turbine identifier list, used to pair a
	// bare array positionally.
	TurbineIDs []string
}

// ValueSetKind tags the shape of a per-turbine engine output.
type ValueSetKind int

const (
	// ValueSetAbsent means the engine produced no per-turbine output.
	ValueSetAbsent ValueSetKind = iota
	// ValueSetArray is a bare array in engine-defined turbine order.
	ValueSetArray
	// ValueSetLabeled is a mapping with explicit turbine identifiers.
	ValueSetLabeled
)

// ValueSet is the tagged variant for shape-polymorphic per-turbine outputs.
// For ValueSetLabeled, Labels and Values are parallel slices so the engine's
// ordering survives the trip through the post-processor.
type ValueSet struct {
	Kind   ValueSetKind
	Labels []string
	Values []float64
}

// AbsentValues returns the absent variant.
func AbsentValues() ValueSet {
	return ValueSet{Kind: ValueSetAbsent}
}

// ArrayValues returns a bare-array variant.
func ArrayValues(values []float64) ValueSet {
	return ValueSet{Kind: ValueSetArray, Values: values}
}

// LabeledValues returns a labeled variant; labels and values must be the
// same length.
func LabeledValues(labels []string, values []float64) ValueSet {
	return ValueSet{Kind: ValueSetLabeled, Labels: labels, Values: values}
}

// Float64Ptr is a convenience for optional scalar outputs.
func Float64Ptr(v float64) *float64 {
	return &v
}
