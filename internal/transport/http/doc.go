// Package http contains the HTTP transport layer: chi routers, request
// decoding and validation, and the mapping from service errors onto
// RFC 7807 problem responses. Handlers hold no business logic; everything
// of consequence happens behind the DataService and AnalysisService
// interfaces so handlers stay trivially testable with fakes.
package http
