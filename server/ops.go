package server

import (
	"encoding/json"
	"net/http"
	_ "net/http/pprof"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alextanhongpin/go-social/usecase"
)

// NewOpsHandler returns the operator-facing HTTP surface: health check,
// graph statistics, prometheus metrics and pprof. Served on a separate
// address from the client protocol.
func NewOpsHandler(social *usecase.Social) http.Handler {
	router := httprouter.New()

	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.GET("/stats", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(social.Stats(r.Context())); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	return router
}
