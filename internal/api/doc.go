// Package api serves the clipper HTTP API with gin.
//
// Routes:
//
//	POST /upload               run the pipeline on a multipart "file" upload
//	GET  /status               current status document
//	GET  /clips                clip ids in ordinal order
//	GET  /clips/:id            render config with defaults materialized
//	POST /clips/:id/config     validate and store a render config
//	POST /clips/:id/render     compose preview.mp4
//	GET  /runs, /runs/:id      run history
//	GET  /health               preflight report
//	GET  /files/*              static clip artifacts
//
// Every route except /health and /files requires the bearer token when one is
// configured. Errors are JSON objects with an "error" field; pipeline failures
// also carry the failing "stage".
package api
