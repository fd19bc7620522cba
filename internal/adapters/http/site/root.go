// Package site serves the embedded sign-up web UI.
package site

import (
	"context"
	"net/http"
)

// IndexPath is where GET / redirects to.
const IndexPath = "/static/index.html"

// Register attaches the static UI routes to mux:
//
//	GET /          -> redirect to /static/index.html
//	GET /static/*  -> embedded assets
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
	})
}
