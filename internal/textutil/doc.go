// Package textutil cleans user-supplied names before they are logged,
// stored in history, or shown in the status document.
package textutil
