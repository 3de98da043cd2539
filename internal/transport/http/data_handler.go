package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"windoa/internal/dataprocessing"
	apierrors "windoa/internal/errors"
	"windoa/internal/services"
)

// maxUploadBytes bounds a whole multipart upload. SCADA exports for a
// multi-year period run to tens of megabytes.
const maxUploadBytes = 256 << 20

// DataHandler handles dataset HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Post("/example", h.LoadExample)
	r.Get("/list", h.List)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/summary", h.Summary)
		r.Delete("/", h.Delete)
	})

	return r
}

// DatasetCtx middleware validates the dataset identifier parameter
func (h *DataHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		datasetID := chi.URLParam(r, "datasetID")
		if datasetID == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dataset_id", "Dataset identifier is required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/data/upload. Each data category arrives as its
// own multipart form field; at least one must be present.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_REQUEST",
			"Request must be multipart form data with one file per category",
			map[string]interface{}{"error": err.Error()},
		))
		return
	}

	files := make(map[dataprocessing.Category]services.UploadedFile)
	for _, category := range dataprocessing.Categories {
		file, header, err := r.FormFile(string(category))
		if err != nil {
			continue
		}

		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.BadInputError(string(category), err))
			return
		}
		files[category] = services.UploadedFile{Filename: header.Filename, Content: content}
	}

	h.logger.InfoContext(r.Context(), "processing upload",
		slog.String("request_id", reqID),
		slog.Int("files", len(files)),
	)

	result, err := h.service.Upload(r.Context(), files)
	if err != nil {
		h.handleDataError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// LoadExample handles POST /api/data/example
func (h *DataHandler) LoadExample(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "loading example dataset",
		slog.String("request_id", reqID),
	)

	result, err := h.service.LoadExample(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrExampleMissing) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusNotFound,
				"EXAMPLE_DATA_MISSING",
				"Example dataset files are not available on this server",
				map[string]interface{}{"error": err.Error()},
			))
			return
		}
		h.handleDataError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// List handles GET /api/data/list
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	datasets := h.service.List(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"datasets": datasets,
	})
}

// Summary handles GET /api/data/{datasetID}/summary
func (h *DataHandler) Summary(w http.ResponseWriter, r *http.Request) {
	datasetID := chi.URLParam(r, "datasetID")

	summary, err := h.service.Summary(r.Context(), datasetID)
	if err != nil {
		h.handleDataError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// Delete handles DELETE /api/data/{datasetID}
func (h *DataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	datasetID := chi.URLParam(r, "datasetID")

	if err := h.service.Delete(r.Context(), datasetID); err != nil {
		h.handleDataError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset deleted",
		slog.String("request_id", reqID),
		slog.String("dataset_id", datasetID),
	)

	render.JSON(w, r, map[string]interface{}{
		"message": fmt.Sprintf("Dataset '%s' deleted", datasetID),
	})
}

// handleDataError maps service errors to API errors
func (h *DataHandler) handleDataError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrDatasetNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(chi.URLParam(r, "datasetID")))

	case errors.Is(err, services.ErrNoFilesUploaded):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"BAD_INPUT",
			"No files uploaded. Please provide at least one CSV file.",
			nil,
		))

	default:
		var badInput *services.BadInputError
		if errors.As(err, &badInput) {
			h.errorHandler.HandleError(w, r, apierrors.BadInputError(badInput.Category, badInput.Err))
			return
		}
		h.errorHandler.HandleError(w, r, err)
	}
}
