package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "windoa/internal/errors"
	"windoa/internal/services"
)

// AnalysisHandler handles analysis HTTP requests with RFC 7807 compliance
type AnalysisHandler struct {
	service      AnalysisService
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(service AnalysisService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		validate:     newValidator(),
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/aep", h.RunAEP)
	r.Post("/electrical-losses", h.RunElectricalLosses)
	r.Post("/turbine-energy", h.RunTurbineEnergy)
	r.Post("/wake-losses", h.RunWakeLosses)

	return r
}

// RunAEP handles POST /api/analysis/aep
func (h *AnalysisHandler) RunAEP(w http.ResponseWriter, r *http.Request) {
	var req AEPRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.logStart(r, "MonteCarloAEP", req.DatasetID, req.NumSim)

	result, err := h.service.RunAEP(r.Context(), req.DatasetID, req.Params())
	if err != nil {
		h.handleAnalysisError(w, r, req.DatasetID, err)
		return
	}

	render.JSON(w, r, result)
}

// RunElectricalLosses handles POST /api/analysis/electrical-losses
func (h *AnalysisHandler) RunElectricalLosses(w http.ResponseWriter, r *http.Request) {
	var req ElectricalLossesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.logStart(r, "ElectricalLosses", req.DatasetID, req.NumSim)

	result, err := h.service.RunElectricalLosses(r.Context(), req.DatasetID, req.Params())
	if err != nil {
		h.handleAnalysisError(w, r, req.DatasetID, err)
		return
	}

	render.JSON(w, r, result)
}

// RunTurbineEnergy handles POST /api/analysis/turbine-energy
func (h *AnalysisHandler) RunTurbineEnergy(w http.ResponseWriter, r *http.Request) {
	var req TurbineEnergyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.logStart(r, "TurbineLongTermGrossEnergy", req.DatasetID, req.NumSim)

	result, err := h.service.RunTurbineEnergy(r.Context(), req.DatasetID, req.Params())
	if err != nil {
		h.handleAnalysisError(w, r, req.DatasetID, err)
		return
	}

	render.JSON(w, r, result)
}

// RunWakeLosses handles POST /api/analysis/wake-losses
func (h *AnalysisHandler) RunWakeLosses(w http.ResponseWriter, r *http.Request) {
	var req WakeLossesRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	h.logStart(r, "WakeLosses", req.DatasetID, req.NumSim)

	result, err := h.service.RunWakeLosses(r.Context(), req.DatasetID, req.Params())
	if err != nil {
		h.handleAnalysisError(w, r, req.DatasetID, err)
		return
	}

	render.JSON(w, r, result)
}

// decodeAndValidate decodes the JSON body into req and applies struct
// validation, responding on failure.
func (h *AnalysisHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Invalid request body",
			map[string]interface{}{"error": err.Error()},
		))
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return false
	}

	return true
}

func (h *AnalysisHandler) logStart(r *http.Request, kind, datasetID string, numSim int) {
	h.logger.InfoContext(r.Context(), "analysis requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("analysis", kind),
		slog.String("dataset_id", datasetID),
		slog.Int("num_sim", numSim),
	)
}

// handleAnalysisError maps service errors to API errors
func (h *AnalysisHandler) handleAnalysisError(w http.ResponseWriter, r *http.Request, datasetID string, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(datasetID))

	case errors.Is(err, services.ErrAnalysisTimeout):
		h.errorHandler.HandleError(w, r, apierrors.ErrAnalysisTimeout)

	case errors.Is(err, services.ErrEngineBusy):
		h.errorHandler.HandleError(w, r, apierrors.ErrEngineBusy)

	default:
		var badInput *services.BadInputError
		if errors.As(err, &badInput) {
			h.errorHandler.HandleError(w, r, apierrors.BadInputError(badInput.Category, badInput.Err))
			return
		}

		var analysisErr *services.AnalysisError
		if errors.As(err, &analysisErr) {
			h.errorHandler.HandleError(w, r, apierrors.AnalysisFailedError(analysisErr.Kind, analysisErr.Err))
			return
		}

		h.errorHandler.HandleError(w, r, err)
	}
}
