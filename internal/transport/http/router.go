package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups the handlers mounted by NewRouter. Nil handlers are not mounted.
type Routes struct {
	Catalog  *CatalogHandler
	State    *StateHandler
	Gatherer prometheus.Gatherer
}

var (
	corsHeaders = handlers.AllowedHeaders([]string{"Content-Type", "Cache-Control"})
	corsOrigins = handlers.AllowedOrigins([]string{"*"})
	corsMethods = handlers.AllowedMethods([]string{"GET", "HEAD", "OPTIONS"})
)

// NewRouter builds the HTTP surface wrapped in a permissive CORS policy.
func NewRouter(routes Routes) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if routes.Catalog != nil {
		r.Handle("/quizzes.json", routes.Catalog).Methods(http.MethodGet, http.MethodHead)
	}
	if routes.State != nil {
		r.HandleFunc("/state", routes.State.ServeState).Methods(http.MethodGet)
		r.HandleFunc("/ws", routes.State.ServeWS)
	}
	if routes.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(routes.Gatherer, promhttp.HandlerOpts{}))
	}
	return handlers.CORS(corsHeaders, corsOrigins, corsMethods)(r)
}
