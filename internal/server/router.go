// Package server assembles the HTTP routes and middleware chain.
package server

import (
	"net/http"

	"github.com/Dan9191/blog-service/internal/auth"
	"github.com/Dan9191/blog-service/internal/handler"
	"github.com/Dan9191/blog-service/internal/metrics"
	"github.com/Dan9191/blog-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the router dispatches to
type Deps struct {
	GraphQL  http.Handler
	Upload   *handler.Handler
	Issuer   *auth.Issuer
	Metrics  *metrics.Metrics
	ImageDir string
	Log      *logrus.Logger
}

// NewRouter wires every route
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		middleware.Logging(d.Log),
		middleware.Metrics(d.Metrics),
		middleware.CORS,
		middleware.AuthMiddleware(d.Issuer, d.Log),
	)

	r.Handle("/graphql", d.GraphQL).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/post-image", d.Upload.PostImage).Methods(http.MethodPut, http.MethodOptions)
	r.PathPrefix("/images/").Handler(http.StripPrefix("/images/", http.FileServer(http.Dir(d.ImageDir))))
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	return r
}
