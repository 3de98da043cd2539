package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"windoa/internal/engine"
	"windoa/internal/infrastructure"
	"windoa/internal/plant"
	"windoa/internal/registry"
	"windoa/internal/results"
)

// AnalysisService runs the four analysis methods against registered datasets.
// Execution is bounded by a weighted semaphore so simulation-heavy runs cannot
// exhaust the process, and each run carries its own deadline.
type AnalysisService struct {
	registry  *registry.Registry
	engine    engine.Runner
	processor *results.Processor
	sem       *semaphore.Weighted
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *infrastructure.Metrics
}

// NewAnalysisService creates an analysis service. maxConcurrent bounds the
// number of simultaneously running analyses; timeout is the per-run deadline.
func NewAnalysisService(reg *registry.Registry, runner engine.Runner, maxConcurrent int64, timeout time.Duration, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &AnalysisService{
		registry:  reg,
		engine:    runner,
		processor: results.NewProcessor(logger),
		sem:       semaphore.NewWeighted(maxConcurrent),
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "analysis_service")),
	}
}

// SetMetrics attaches Prometheus instruments for run counts and durations.
// The service works without them.
func (s *AnalysisService) SetMetrics(m *infrastructure.Metrics) {
	s.metrics = m
}

// RunAEP executes a Monte Carlo AEP analysis.
func (s *AnalysisService) RunAEP(ctx context.Context, datasetID string, params engine.AEPParams) (*results.AEPResult, error) {
	data, err := s.plantFor(ctx, datasetID, plant.KindMonteCarloAEP)
	if err != nil {
		return nil, err
	}

	var out *engine.AEPOutput
	err = s.execute(ctx, plant.KindMonteCarloAEP, datasetID, func(runCtx context.Context) error {
		var runErr error
		out, runErr = s.engine.RunAEP(runCtx, data, params)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return s.processor.AEP(datasetID, out, params), nil
}

// RunElectricalLosses executes an electrical-losses analysis.
func (s *AnalysisService) RunElectricalLosses(ctx context.Context, datasetID string, params engine.ElectricalLossesParams) (*results.ElectricalLossesResult, error) {
	data, err := s.plantFor(ctx, datasetID, plant.KindElectricalLosses)
	if err != nil {
		return nil, err
	}

	var out *engine.ElectricalLossesOutput
	err = s.execute(ctx, plant.KindElectricalLosses, datasetID, func(runCtx context.Context) error {
		var runErr error
		out, runErr = s.engine.RunElectricalLosses(runCtx, data, params)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return s.processor.ElectricalLosses(datasetID, out, params), nil
}

// RunTurbineEnergy executes a turbine long-term gross energy analysis.
func (s *AnalysisService) RunTurbineEnergy(ctx context.Context, datasetID string, params engine.TurbineEnergyParams) (*results.TurbineEnergyResult, error) {
	data, err := s.plantFor(ctx, datasetID, plant.KindTurbineEnergy)
	if err != nil {
		return nil, err
	}

	var out *engine.TurbineEnergyOutput
	err = s.execute(ctx, plant.KindTurbineEnergy, datasetID, func(runCtx context.Context) error {
		var runErr error
		out, runErr = s.engine.RunTurbineEnergy(runCtx, data, params)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return s.processor.TurbineEnergy(datasetID, out, params), nil
}

// RunWakeLosses executes a wake-losses analysis.
func (s *AnalysisService) RunWakeLosses(ctx context.Context, datasetID string, params engine.WakeLossesParams) (*results.WakeLossesResult, error) {
	data, err := s.plantFor(ctx, datasetID, plant.KindWakeLosses)
	if err != nil {
		return nil, err
	}

	var out *engine.WakeLossesOutput
	err = s.execute(ctx, plant.KindWakeLosses, datasetID, func(runCtx context.Context) error {
		var runErr error
		out, runErr = s.engine.RunWakeLosses(runCtx, data, params)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return s.processor.WakeLosses(datasetID, out, params), nil
}

// plantFor resolves the dataset's plant object, translating registry and
// construction failures into the service error taxonomy.
func (s *AnalysisService) plantFor(ctx context.Context, datasetID string, kind plant.AnalysisKind) (*plant.Data, error) {
	data, err := s.registry.GetOrCreatePlant(ctx, datasetID, kind)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, ErrDatasetNotFound
		}
		return nil, &BadInputError{Err: err}
	}
	return data, nil
}

// execute runs one engine call under the concurrency bound and per-run
// deadline, mapping failures to the service error taxonomy.
func (s *AnalysisService) execute(ctx context.Context, kind plant.AnalysisKind, datasetID string, run func(context.Context) error) error {
	if !s.sem.TryAcquire(1) {
		// Block for a slot, but not past the caller's context.
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return ErrEngineBusy
		}
	}
	defer s.sem.Release(1)

	runCtx := ctx
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "analysis started",
		slog.String("kind", string(kind)),
		slog.String("dataset_id", datasetID))

	if err := run(runCtx); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			s.logger.WarnContext(ctx, "analysis timed out",
				slog.String("kind", string(kind)),
				slog.String("dataset_id", datasetID),
				slog.Duration("timeout", s.timeout))
			s.recordRun(kind, "timeout", time.Since(start))
			return ErrAnalysisTimeout
		}
		s.recordRun(kind, "error", time.Since(start))
		return &AnalysisError{Kind: string(kind), Err: err}
	}

	s.logger.InfoContext(ctx, "analysis completed",
		slog.String("kind", string(kind)),
		slog.String("dataset_id", datasetID),
		slog.Duration("duration", time.Since(start)))
	s.recordRun(kind, "success", time.Since(start))
	return nil
}

func (s *AnalysisService) recordRun(kind plant.AnalysisKind, outcome string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.WithLabelValues(string(kind), outcome).Inc()
	s.metrics.AnalysisDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}
