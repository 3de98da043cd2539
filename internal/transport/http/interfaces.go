package http

import (
	"context"

	"windoa/internal/dataprocessing"
	"windoa/internal/engine"
	"windoa/internal/registry"
	"windoa/internal/results"
	"windoa/internal/services"
)

// DataService is the handler-facing contract of the dataset service.
type DataService interface {
	Upload(ctx context.Context, files map[dataprocessing.Category]services.UploadedFile) (*services.UploadResult, error)
	LoadExample(ctx context.Context) (*services.UploadResult, error)
	List(ctx context.Context) []registry.DatasetInfo
	Summary(ctx context.Context, id string) (*services.DatasetSummary, error)
	Delete(ctx context.Context, id string) error
}

// AnalysisService is the handler-facing contract of the analysis service.
type AnalysisService interface {
	RunAEP(ctx context.Context, datasetID string, params engine.AEPParams) (*results.AEPResult, error)
	RunElectricalLosses(ctx context.Context, datasetID string, params engine.ElectricalLossesParams) (*results.ElectricalLossesResult, error)
	RunTurbineEnergy(ctx context.Context, datasetID string, params engine.TurbineEnergyParams) (*results.TurbineEnergyResult, error)
	RunWakeLosses(ctx context.Context, datasetID string, params engine.WakeLossesParams) (*results.WakeLossesResult, error)
}
