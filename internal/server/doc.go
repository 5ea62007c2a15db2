// Package server provides the HTTP lookup API behind "mbedtargets serve".
//
// The API is read-only JSON:
//
//   - GET /api/targets: every target in database order
//   - GET /api/targets/{product_code}: one target by product code
//   - GET /api/boards/{board_type}: one target by board type, ignoring case
//
// Unknown targets answer 404 and database failures 502, both with an
// {"error": "..."} body. The server supports graceful shutdown via context
// cancellation, with a 5-second timeout for in-flight requests.
package server
