// Package services implements the business logic layer between the HTTP
// handlers and the dataset registry.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and deadlines
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Upload ingestion, schema normalization, and dataset registration
//	- Bounded, deadline-scoped execution of analysis runs
//	- Translating registry and engine failures into the service error
//	  taxonomy the transport layer maps onto HTTP status codes
//
// Handlers never reach past a service into the registry or engine directly.
package services
