package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windoa/internal/config"
)

const scadaCSV = `Date_time,Wind_turbine_name,P_avg
2018-01-01T00:00:00,R80711,512.5
2018-01-01T00:10:00,R80711,498.1
2018-01-01T00:20:00,R80711,505.7
`

func testApplication(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.CacheDir = t.TempDir()

	app := &Application{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, app.initializeServices())
	app.setupRouter()
	return app
}

func TestApplication_HealthEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServiceName, body["service"])
	assert.NotEmpty(t, body["engine_version"])
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApplication_UploadAndList(t *testing.T) {
	app := testApplication(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("scada", "scada.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(scadaCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var upload struct {
		DatasetID string `json:"dataset_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	assert.Len(t, upload.DatasetID, 8)

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Datasets []map[string]any `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Datasets, 1)
}

func TestApplication_AnalysisUnknownDataset(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/aep",
		strings.NewReader(`{"dataset_id":"missing1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/errors/dataset/not-found")
}

func TestApplication_AnalysisRequiresJSONContentType(t *testing.T) {
	app := testApplication(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/aep",
		strings.NewReader(`{"dataset_id":"missing1"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestApplication_RequestIDHeader(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
