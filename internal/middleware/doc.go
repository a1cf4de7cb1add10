// Package middleware provides HTTP middleware for the ingestion API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Response compression (gzip)
//   - Prometheus request metrics with path normalization
//   - Configurable filtering for health check endpoints
package middleware
