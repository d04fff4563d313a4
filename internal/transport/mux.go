package transport

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewOpsRouter is a minimal gorilla/mux surface for infrastructure health
// probes, kept separate from the gin command endpoint so a load balancer's
// liveness check never shares a route table with rate-limited, JWT-gated
// order traffic.
func NewOpsRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}
