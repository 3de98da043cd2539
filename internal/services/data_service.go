package services

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"windoa/internal/dataprocessing"
	"windoa/internal/infrastructure"
	"windoa/internal/plant"
	"windoa/internal/registry"
)

// La Haute Borne plant attributes for the bundled example dataset.
var exampleMetadata = plant.Metadata{
	Latitude:   48.4523,
	Longitude:  5.5872,
	CapacityMW: 8.2,
}

// UploadedFile is one raw table received from the transport layer.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// UploadResult is returned after a successful upload or example load.
type UploadResult struct {
	DatasetID  string                                   `json:"dataset_id"`
	Message    string                                   `json:"message"`
	Categories map[string]*dataprocessing.TableSummary `json:"categories"`
}

// DatasetSummary is the detailed per-category view of one dataset.
type DatasetSummary struct {
	DatasetID  string                                   `json:"dataset_id"`
	HasPlant   bool                                     `json:"has_plant_data"`
	Categories map[string]*dataprocessing.TableSummary `json:"categories"`
}

// DataService handles uploads, normalization, and dataset bookkeeping.
type DataService struct {
	registry   *registry.Registry
	normalizer *dataprocessing.Normalizer
	cacheDir   string
	logger     *slog.Logger
	metrics    *infrastructure.Metrics
}

// NewDataService creates a data service. cacheDir holds the extracted
// example dataset CSVs, the only state that survives a restart.
func NewDataService(reg *registry.Registry, cacheDir string, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		registry:   reg,
		normalizer: dataprocessing.NewNormalizer(logger),
		cacheDir:   cacheDir,
		logger:     logger.With(slog.String("component", "data_service")),
	}
}

// SetMetrics attaches Prometheus instruments for dataset and upload volume.
// The service works without them.
func (s *DataService) SetMetrics(m *infrastructure.Metrics) {
	s.metrics = m
}

// Upload parses and normalizes one raw table per supplied category, then
// registers the batch as a new dataset. Ingestion is fail-fast: if any
// category is unparsable the whole upload is rejected and nothing is stored.
func (s *DataService) Upload(ctx context.Context, files map[dataprocessing.Category]UploadedFile) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, &BadInputError{Err: ErrNoFilesUploaded}
	}

	var tables plant.Tables
	summaries := make(map[string]*dataprocessing.TableSummary)

	for _, category := range dataprocessing.Categories {
		file, ok := files[category]
		if !ok {
			continue
		}

		raw, err := dataprocessing.ParseUpload(file.Filename, file.Content)
		if err != nil {
			return nil, &BadInputError{Category: string(category), Err: err}
		}

		if category == dataprocessing.CategoryReanalysis {
			product := dataprocessing.DetectReanalysisProduct(raw)
			normalized, err := s.normalizer.NormalizeReanalysis(ctx, product, raw)
			if err != nil {
				return nil, &BadInputError{Category: string(category), Err: err}
			}
			if tables.Reanalysis == nil {
				tables.Reanalysis = make(map[string]*dataprocessing.Table)
			}
			tables.Reanalysis[string(product)] = normalized
			summaries["reanalysis_"+string(product)] = dataprocessing.Summarize(normalized)
			continue
		}

		normalized, err := s.normalizer.Normalize(ctx, category, raw)
		if err != nil {
			return nil, &BadInputError{Category: string(category), Err: err}
		}
		setCategory(&tables, category, normalized)
		summaries[string(category)] = dataprocessing.Summarize(normalized)

		s.logger.InfoContext(ctx, "parsed uploaded table",
			slog.String("category", string(category)),
			slog.Int("rows", normalized.NumRows()),
			slog.Int("columns", len(normalized.Columns)))
	}

	id := s.registry.Create(tables, nil)
	if s.metrics != nil {
		s.metrics.DatasetsLoaded.Inc()
		for _, file := range files {
			s.metrics.UploadBytes.Add(float64(len(file.Content)))
		}
	}
	return &UploadResult{
		DatasetID:  id,
		Message:    fmt.Sprintf("Successfully uploaded %d data file(s)", len(files)),
		Categories: summaries,
	}, nil
}

// LoadExample materializes the bundled La Haute Borne dataset from the cache
// directory (extracting the archive once if needed) and registers it.
func (s *DataService) LoadExample(ctx context.Context) (*UploadResult, error) {
	if err := s.ensureExampleData(ctx); err != nil {
		return nil, err
	}

	var tables plant.Tables
	summaries := make(map[string]*dataprocessing.TableSummary)

	if table, err := s.loadExampleTable(ctx, dataprocessing.CategoryScada, "la-haute-borne-data*.csv"); err != nil {
		return nil, err
	} else if table != nil {
		tables.Scada = table
		summaries["scada"] = dataprocessing.Summarize(table)
	}

	// plant_data.csv carries both meter and curtailment series.
	if path := s.findCached("plant_data.csv"); path != "" {
		raw, err := parseCSVFile(path)
		if err != nil {
			return nil, &BadInputError{Category: "meter", Err: err}
		}

		meter, err := s.normalizer.Normalize(ctx, dataprocessing.CategoryMeter, raw)
		if err != nil {
			return nil, &BadInputError{Category: "meter", Err: err}
		}
		tables.Meter = meter
		summaries["meter"] = dataprocessing.Summarize(meter)

		curtail, err := s.normalizer.Normalize(ctx, dataprocessing.CategoryCurtail, raw)
		if err != nil {
			return nil, &BadInputError{Category: "curtail", Err: err}
		}
		curtail = curtail.Select("time", "IAVL_ExtPwrDnWh", "IAVL_DnWh")
		tables.Curtail = curtail
		summaries["curtail"] = dataprocessing.Summarize(curtail)
	}

	if table, err := s.loadExampleTable(ctx, dataprocessing.CategoryAsset, "*asset*.csv"); err != nil {
		return nil, err
	} else if table != nil {
		tables.Asset = table
		summaries["asset"] = dataprocessing.Summarize(table)
	}

	for _, product := range []dataprocessing.ReanalysisProduct{dataprocessing.ProductERA5, dataprocessing.ProductMERRA2} {
		path := s.findCached("*" + string(product) + "*.csv")
		if path == "" {
			continue
		}
		raw, err := parseCSVFile(path)
		if err != nil {
			return nil, &BadInputError{Category: "reanalysis", Err: err}
		}
		normalized, err := s.normalizer.NormalizeReanalysis(ctx, product, raw)
		if err != nil {
			return nil, &BadInputError{Category: "reanalysis", Err: err}
		}
		if tables.Reanalysis == nil {
			tables.Reanalysis = make(map[string]*dataprocessing.Table)
		}
		tables.Reanalysis[string(product)] = normalized
		summaries["reanalysis_"+string(product)] = dataprocessing.Summarize(normalized)
	}

	meta := exampleMetadata
	id := s.registry.CreateWithPrefix("example-", tables, &meta)
	if s.metrics != nil {
		s.metrics.DatasetsLoaded.Inc()
	}

	// Build the plant object eagerly so the first analysis request does
	// not pay for it; a failure here only defers construction.
	if _, err := s.registry.GetOrCreatePlant(ctx, id, ""); err != nil {
		s.logger.WarnContext(ctx, "could not pre-build example plant object",
			slog.String("dataset_id", id),
			slog.String("error", err.Error()))
	}

	return &UploadResult{
		DatasetID:  id,
		Message:    "Successfully loaded La Haute Borne example dataset",
		Categories: summaries,
	}, nil
}

// List enumerates all live datasets.
func (s *DataService) List(ctx context.Context) []registry.DatasetInfo {
	return s.registry.List()
}

// Summary returns the detailed per-category summary for one dataset.
func (s *DataService) Summary(ctx context.Context, id string) (*DatasetSummary, error) {
	ds, ok := s.registry.Get(id)
	if !ok {
		return nil, ErrDatasetNotFound
	}

	summaries := make(map[string]*dataprocessing.TableSummary)
	for category, table := range map[string]*dataprocessing.Table{
		"scada":   ds.Tables.Scada,
		"meter":   ds.Tables.Meter,
		"tower":   ds.Tables.Tower,
		"status":  ds.Tables.Status,
		"curtail": ds.Tables.Curtail,
		"asset":   ds.Tables.Asset,
	} {
		if summary := dataprocessing.Summarize(table); summary != nil {
			summaries[category] = summary
		}
	}
	for product, table := range ds.Tables.Reanalysis {
		if summary := dataprocessing.Summarize(table); summary != nil {
			summaries["reanalysis_"+product] = summary
		}
	}

	return &DatasetSummary{
		DatasetID:  id,
		HasPlant:   ds.HasPlant,
		Categories: summaries,
	}, nil
}

// Delete removes a dataset and frees its memory.
func (s *DataService) Delete(ctx context.Context, id string) error {
	if !s.registry.Delete(id) {
		return ErrDatasetNotFound
	}
	if s.metrics != nil {
		s.metrics.DatasetsLoaded.Dec()
	}
	return nil
}

// loadExampleTable parses and normalizes one cached example CSV, or returns
// nil when the file is absent.
func (s *DataService) loadExampleTable(ctx context.Context, category dataprocessing.Category, pattern string) (*dataprocessing.Table, error) {
	path := s.findCached(pattern)
	if path == "" {
		return nil, nil
	}
	raw, err := parseCSVFile(path)
	if err != nil {
		return nil, &BadInputError{Category: string(category), Err: err}
	}
	normalized, err := s.normalizer.Normalize(ctx, category, raw)
	if err != nil {
		return nil, &BadInputError{Category: string(category), Err: err}
	}
	s.logger.InfoContext(ctx, "loaded example table",
		slog.String("category", string(category)),
		slog.Int("rows", normalized.NumRows()))
	return normalized, nil
}

func (s *DataService) findCached(pattern string) string {
	matches, err := filepath.Glob(filepath.Join(s.cacheDir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// ensureExampleData makes sure the cache directory holds the example CSVs,
// extracting the bundled archive exactly once.
func (s *DataService) ensureExampleData(ctx context.Context) error {
	if err := os.MkdirAll(s.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	csvs, _ := filepath.Glob(filepath.Join(s.cacheDir, "*.csv"))
	if len(csvs) >= 3 {
		return nil
	}

	zipPath := filepath.Join(s.cacheDir, "la_haute_borne.zip")
	if _, err := os.Stat(zipPath); err != nil {
		return fmt.Errorf("%w: place the archive or CSV files in %s", ErrExampleMissing, s.cacheDir)
	}

	s.logger.InfoContext(ctx, "extracting example archive", slog.String("path", zipPath))
	if err := extractArchive(zipPath, s.cacheDir); err != nil {
		return fmt.Errorf("failed to extract example archive: %w", err)
	}
	return nil
}

// extractArchive unpacks every CSV in the archive flat into destDir,
// skipping macOS metadata directories.
func extractArchive(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.Contains(f.Name, "__MACOSX") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(f.Name))
		if _, err := os.Stat(dest); err == nil {
			continue
		}

		if err := copyZipEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func copyZipEntry(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func parseCSVFile(path string) (*dataprocessing.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataprocessing.ParseCSV(f)
}

func setCategory(tables *plant.Tables, category dataprocessing.Category, table *dataprocessing.Table) {
	switch category {
	case dataprocessing.CategoryScada:
		tables.Scada = table
	case dataprocessing.CategoryMeter:
		tables.Meter = table
	case dataprocessing.CategoryTower:
		tables.Tower = table
	case dataprocessing.CategoryStatus:
		tables.Status = table
	case dataprocessing.CategoryCurtail:
		tables.Curtail = table
	case dataprocessing.CategoryAsset:
		tables.Asset = table
	}
}
