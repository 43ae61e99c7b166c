// Package health tracks service readiness and exposes HTTP probe
// handlers, including dependency pings for the database and the optional
// conversation cache.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Readiness states.
const (
	stateStarting int32 = iota
	stateReady
	stateDraining
)

// Probe checks one dependency. It returns an error when the dependency
// is unreachable.
type Probe func(ctx context.Context) error

// Checker tracks readiness and the health of named dependencies.
// It is safe for concurrent use.
type Checker struct {
	state  atomic.Int32
	probes map[string]Probe
}

// NewChecker creates a Checker in the starting state.
func NewChecker() *Checker {
	return &Checker{probes: make(map[string]Probe)}
}

// AddProbe registers a dependency check under a name. Probes run on each
// readiness request, so register only cheap pings. Not safe to call after
// the server starts.
func (c *Checker) AddProbe(name string, probe Probe) {
	c.probes[name] = probe
}

// SetReady transitions to the ready state.
func (c *Checker) SetReady() {
	c.state.Store(stateReady)
}

// SetDraining transitions to the draining state.
func (c *Checker) SetDraining() {
	c.state.Store(stateDraining)
}

// IsReady returns true when the state is ready.
func (c *Checker) IsReady() bool {
	return c.state.Load() == stateReady
}

// State returns the current state as a human-readable string.
func (c *Checker) State() string {
	switch c.state.Load() {
	case stateReady:
		return "ready"
	case stateDraining:
		return "draining"
	default:
		return "starting"
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// LivenessHandler always responds 200 OK. Wire it to the liveness probe
// (/healthz).
func (*Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}

// ReadinessHandler responds 200 when the service is ready and every
// dependency probe passes, 503 otherwise. Wire it to the readiness probe
// (/readyz).
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: c.State()}
		if !c.IsReady() {
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		code := http.StatusOK
		if len(c.probes) > 0 {
			resp.Dependencies = make(map[string]string, len(c.probes))
			for name, probe := range c.probes {
				if err := probe(ctx); err != nil {
					resp.Dependencies[name] = err.Error()
					resp.Status = "degraded"
					code = http.StatusServiceUnavailable
					continue
				}
				resp.Dependencies[name] = "ok"
			}
		}
		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
