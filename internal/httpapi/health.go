// Package httpapi implements the /health endpoint every service
// exposes, grounded on the teacher's internal/http contract style:
// plain JSON, 200 on healthy, 503 otherwise.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Checker reports a component's health; services pass one or more
// (bus, store, cache) to NewHealthRouter.
type Checker func() (ok bool, detail string)

type healthResponse struct {
	OK        bool              `json:"ok"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
	Unhealthy []string          `json:"unhealthy,omitempty"`
}

// NewHealthRouter builds a mux.Router serving GET /health, aggregating
// every named checker; any failing checker makes the whole response
// unhealthy (503).
func NewHealthRouter(service string, checkers map[string]Checker) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		resp := healthResponse{OK: true, Service: service, Checks: map[string]string{}}

		for name, check := range checkers {
			ok, detail := check()
			resp.Checks[name] = detail
			if !ok {
				resp.OK = false
				resp.Unhealthy = append(resp.Unhealthy, name)
			}
		}

		status := http.StatusOK
		if !resp.OK {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}).Methods(http.MethodGet)
	return r
}
