package http

import (
	"context"
	"net/http"
	"time"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

const readinessTimeout = 5 * time.Second

type healthView struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler serves liveness and readiness. Checkers are fixed at
// construction.
type HealthHandler struct {
	checkers map[string]Checker
}

func NewHealthHandler(checkers map[string]Checker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthView{Status: "up"})
}

// Ready runs every checker and answers 503 if any of them fails.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	view := healthView{Status: "up", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK

	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			view.Checks[name] = "down: " + err.Error()
			view.Status = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		view.Checks[name] = "up"
	}

	writeJSON(w, status, view)
}
