package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(dash Dashboard) http.Handler {
	h := NewHandler(dash)

	router := mux.NewRouter()
	router.Use(mux.MiddlewareFunc(LoggingMiddleware()))

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/dashboard", h.GetDashboard).Methods("GET")
	v1.HandleFunc("/instruments", h.ListInstruments).Methods("GET")
	v1.HandleFunc("/params", h.GetParams).Methods("GET")
	v1.HandleFunc("/params", h.UpdateParams).Methods("PUT")
	v1.HandleFunc("/refresh", h.Refresh).Methods("POST")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	router.Handle("/metrics", promhttp.Handler())

	middlewares := ChainMiddleware(
		RequestIDMiddleware(),
		CORSMiddleware(),
		RecoveryMiddleware(),
	)
	return middlewares(router)
}
