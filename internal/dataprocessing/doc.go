// Package dataprocessing normalizes heterogeneous wind-plant tables into the
// canonical schema the analysis engine requires.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: Reads uploaded CSV or XLSX content into rectangular Tables
// 2. Normalizer: Applies per-category column renames and structural fixes
// 3. Summarizer: Produces lightweight per-table summaries
//
// # Data Flow
//
// The typical data flow through this package:
//
//	Upload → Parser → Table → Normalizer → canonical Table → Summarizer → TableSummary
//
// Each measurement category (scada, meter, tower, status, curtail, asset,
// reanalysis) carries its own rename table; unknown columns pass through
// unrenamed so user-specific extras survive normalization. Reanalysis tables
// are keyed by product (era5, merra2) and normalized per product.
//
// # Error Handling
//
// Parsing and normalization errors name the offending category and row so
// the upload endpoint can reject the whole batch with a descriptive message.
package dataprocessing
