package results

import (
	"fmt"
	"log/slog"

	"windoa/internal/engine"
	"windoa/internal/plant"
	"windoa/internal/stats"
)

// Processor reduces raw engine outputs to result records.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a result processor.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger: logger.With(slog.String("component", "result_processor")),
	}
}

// AEP sanitizes and unit-scales the flattened simulation matrix into a
// GWh-denominated distribution, then summarizes it.
func (p *Processor) AEP(datasetID string, out *engine.AEPOutput, params engine.AEPParams) *AEPResult {
	dist := []float64{}
	if out != nil {
		dist = stats.SanitizeAndScale(out.Results)
	}

	mean := stats.SafeFloat(stats.Mean(dist))
	std := stats.SafeFloat(stats.Std(dist))

	return &AEPResult{
		DatasetID:      datasetID,
		Analysis:       string(plant.KindMonteCarloAEP),
		AEPGWh:         mean,
		UncertaintyPct: stats.UncertaintyPercent(mean, std),
		AvailPct:       0,
		CurtailPct:     0,
		NumSim:         params.NumSim,
		TimeResolution: params.TimeResolution,
		Distribution:   dist,
	}
}

// ElectricalLosses converts the engine's 0-1 fractional losses to
// percentages. No magnitude rescaling applies here: the engine's fraction
// contract is unambiguous.
func (p *Processor) ElectricalLosses(datasetID string, out *engine.ElectricalLossesOutput, params engine.ElectricalLossesParams) *ElectricalLossesResult {
	dist := []float64{}
	if out != nil {
		for _, v := range stats.Finite(out.Losses) {
			dist = append(dist, stats.SafeFloat(v*100))
		}
	}

	return &ElectricalLossesResult{
		DatasetID:    datasetID,
		Analysis:     string(plant.KindElectricalLosses),
		MeanPct:      stats.SafeFloat(stats.Mean(dist)),
		MedianPct:    stats.SafeFloat(stats.Median(dist)),
		StdPct:       stats.SafeFloat(stats.Std(dist)),
		NumSim:       params.NumSim,
		Distribution: dist,
	}
}

// TurbineEnergy combines the engine's two independent estimates: the
// per-simulation plant total (Wh, converted to GWh) and the per-turbine
// daily table (summed across days per turbine, converted to GWh). They are
// estimates at different aggregation levels and are never cross-validated
// against each other.
func (p *Processor) TurbineEnergy(datasetID string, out *engine.TurbineEnergyOutput, params engine.TurbineEnergyParams) *TurbineEnergyResult {
	var tieGWh, uncertainty float64
	turbines := map[string]float64{}

	if out != nil {
		plantGWh := make([]float64, 0)
		for _, wh := range stats.Finite(out.PlantGrossWh) {
			plantGWh = append(plantGWh, wh/1e9)
		}
		tieGWh = stats.SafeFloat(stats.Mean(plantGWh))
		uncertainty = stats.UncertaintyPercent(tieGWh, stats.SafeFloat(stats.Std(plantGWh)))

		for id, daily := range out.TurbineDailyWh {
			var sumWh float64
			for _, wh := range stats.Finite(daily) {
				sumWh += wh
			}
			turbines[id] = stats.SafeFloat(sumWh / 1e9)
		}
	}

	return &TurbineEnergyResult{
		DatasetID:      datasetID,
		Analysis:       string(plant.KindTurbineEnergy),
		TIEGWh:         tieGWh,
		UncertaintyPct: uncertainty,
		NumSim:         params.NumSim,
		TurbineResults: turbines,
	}
}

// WakeLosses reads plant statistics from the long-term output, falling back
// to the period-of-record output when absent - an engine output-shape
// compatibility accommodation, not a user-facing choice. Per-turbine results
// follow the tagged variant: labeled mappings keep their keys, bare arrays
// pair positionally with the known turbine list, length mismatches fall back
// to synthesized identifiers in array order.
func (p *Processor) WakeLosses(datasetID string, out *engine.WakeLossesOutput, params engine.WakeLossesParams) *WakeLossesResult {
	result := &WakeLossesResult{
		DatasetID:    datasetID,
		Analysis:     string(plant.KindWakeLosses),
		NumSim:       params.NumSim,
		TurbineWakes: map[string]float64{},
	}
	if out == nil {
		return result
	}

	result.MeanPct = fractionToPct(out.LongTermMean, out.PORMean)
	result.StdPct = fractionToPct(out.LongTermStd, out.PORStd)

	switch out.TurbineMeans.Kind {
	case engine.ValueSetLabeled:
		for i, label := range out.TurbineMeans.Labels {
			if i >= len(out.TurbineMeans.Values) {
				break
			}
			result.TurbineWakes[label] = stats.SafeFloat(out.TurbineMeans.Values[i] * 100)
		}
	case engine.ValueSetArray:
		values := out.TurbineMeans.Values
		ids := out.TurbineIDs
		if len(ids) != len(values) {
			ids = syntheticTurbineIDs(len(values))
			p.logger.Warn("turbine id list does not match wake array, synthesizing identifiers",
				slog.String("dataset_id", datasetID),
				slog.Int("ids", len(out.TurbineIDs)),
				slog.Int("values", len(values)))
		}
		for i, v := range values {
			result.TurbineWakes[ids[i]] = stats.SafeFloat(v * 100)
		}
	}

	return result
}

// fractionToPct converts the preferred fraction, or its fallback, or 0.
func fractionToPct(preferred, fallback *float64) float64 {
	switch {
	case preferred != nil:
		return stats.SafeFloat(*preferred * 100)
	case fallback != nil:
		return stats.SafeFloat(*fallback * 100)
	}
	return 0
}

// syntheticTurbineIDs generates "T1".."Tn", preserving array order.
func syntheticTurbineIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("T%d", i+1)
	}
	return ids
}
