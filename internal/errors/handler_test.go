package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testHandler() *ErrorHandler {
	return NewErrorHandler(slog.Default(), false)
}

func TestErrorToProblemMapsAPIErrors(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodPost, "/api/analysis/aep", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"dataset not found", DatasetNotFoundError("abc12345"), http.StatusNotFound, TypeDatasetNotFound},
		{"bad input", BadInputError("meter", errors.New("bad header")), http.StatusBadRequest, TypeBadInput},
		{"analysis failed", AnalysisFailedError("MonteCarloAEP", errors.New("boom")), http.StatusInternalServerError, TypeAnalysisFailed},
		{"analysis timeout", ErrAnalysisTimeout, http.StatusGatewayTimeout, TypeAnalysisTimeout},
		{"engine busy", ErrEngineBusy, http.StatusServiceUnavailable, TypeEngineBusy},
		{"validation", ErrValidation("num_sim", "out of range"), http.StatusBadRequest, TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, r)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, r.URL.Path, problem.Instance)
		})
	}
}

func TestErrorToProblemContextDeadline(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/data/list", nil)

	problem := h.ErrorToProblem(context.DeadlineExceeded, r)
	assert.Equal(t, http.StatusGatewayTimeout, problem.Status)
	assert.Equal(t, TypeTimeout, problem.Type)
}

func TestErrorToProblemUnknownErrorIsInternal(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/data/list", nil)

	problem := h.ErrorToProblem(errors.New("disk on fire"), r)
	assert.Equal(t, http.StatusInternalServerError, problem.Status)
	// Internal errors must not leak their cause to the client.
	assert.NotContains(t, problem.Detail, "disk on fire")
}

func TestHandleErrorWritesProblemJSON(t *testing.T) {
	h := testHandler()
	r := httptest.NewRequest(http.MethodGet, "/api/data/missing/summary", nil)
	w := httptest.NewRecorder()

	h.HandleError(w, r, DatasetNotFoundError("missing"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), TypeDatasetNotFound)
	assert.Contains(t, w.Body.String(), "trace_id")
}

func TestMiddlewareRecoversPanics(t *testing.T) {
	h := testHandler()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	})

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
