// Package site handles the embedded status site.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrServe = errors.New("status site serve failed")
)

// Register attaches the embedded status site routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Serve the embedded status site at root /
	files := http.FileServer(FS())
	mux.Handle("/", files)
}
