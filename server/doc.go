// Package server runs the MindEase proxy's HTTP server: Gin served over
// HTTP/1.1 and h2c, with the middleware stack in server/middleware and the
// /health and /info handlers in server/endpoint.
//
// Middleware order, outermost first:
//
//   - Recovery: panics become 500 AppError bodies
//   - RequestID: X-Request-Id generation and propagation
//   - Tracing: one server span per request
//   - CORS: allowed origins and preflight
//   - BodySizeLimit: caps uploaded audio
//   - RequestLogger: status-levelled access log and HTTP metrics
package server
