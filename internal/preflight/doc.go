// Package preflight reports whether clipper can run on this host.
//
// RunAll combines the binary checks from the deps package with filesystem
// checks on the data and log directories. The server exposes the report on
// GET /health and the CLI prints it from "clipper doctor".
package preflight
