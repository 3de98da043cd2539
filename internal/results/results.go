// Package results reduces the engine's shape-variable raw outputs into
// uniform, presentation-ready analysis result records. Reductions never
// fail: malformed numeric edges degrade to defined defaults (zero ratios,
// empty distributions) because a best-effort summary beats no summary.
package results

// AEPResult is the canonical record for a Monte Carlo AEP run.
type AEPResult struct {
	DatasetID      string `json:"dataset_id"`
	Analysis       string `json:"analysis"`
	AEPGWh         float64 `json:"aep_gwh"`
	UncertaintyPct float64 `json:"aep_uncertainty_pct"`
	// AvailPct and CurtailPct are fixed placeholders: the engine does not
	// report them yet. Known limitation, not derived values.
	AvailPct       float64   `json:"avail_pct"`
	CurtailPct     float64   `json:"curtail_pct"`
	NumSim         int       `json:"num_sim"`
	TimeResolution string    `json:"time_resolution"`
	Distribution   []float64 `json:"aep_distribution"`
}

// ElectricalLossesResult is the canonical record for an electrical-losses
// run. All statistics are percentages.
type ElectricalLossesResult struct {
	DatasetID    string    `json:"dataset_id"`
	Analysis     string    `json:"analysis"`
	MeanPct      float64   `json:"mean_losses_pct"`
	MedianPct    float64   `json:"median_losses_pct"`
	StdPct       float64   `json:"std_losses_pct"`
	NumSim       int       `json:"num_sim"`
	Distribution []float64 `json:"losses_distribution"`
}

// TurbineEnergyResult is the canonical record for a turbine long-term
// gross-energy run. Energies are GWh.
type TurbineEnergyResult struct {
	DatasetID      string             `json:"dataset_id"`
	Analysis       string             `json:"analysis"`
	TIEGWh         float64            `json:"tie_gwh"`
	UncertaintyPct float64            `json:"tie_uncertainty_pct"`
	NumSim         int                `json:"num_sim"`
	TurbineResults map[string]float64 `json:"turbine_results"`
}

// WakeLossesResult is the canonical record for a wake-losses run. Losses
// are percentages.
type WakeLossesResult struct {
	DatasetID    string             `json:"dataset_id"`
	Analysis     string             `json:"analysis"`
	MeanPct      float64            `json:"mean_wake_losses_pct"`
	StdPct       float64            `json:"std_wake_losses_pct"`
	NumSim       int                `json:"num_sim"`
	TurbineWakes map[string]float64 `json:"turbine_wake_losses"`
}
