package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// ReadinessReporter reports whether the record set has been loaded.
type ReadinessReporter interface {
	Ready() bool
	Count() int
}

// Pinger is an optional dependency probed for the report. A failing
// dependency is reported but does not make the service unready, since the
// store degrades without it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = time.Second

func Readiness(rr ReadinessReporter, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type resp struct {
			Status  string            `json:"status"`
			Records int               `json:"records"`
			Deps    map[string]string `json:"deps,omitempty"`
		}
		ready := rr.Ready()
		out := resp{Status: "not_ready"}
		if ready {
			out.Status = "ready"
			out.Records = rr.Count()
		}
		if len(deps) > 0 {
			out.Deps = make(map[string]string, len(deps))
			for name, p := range deps {
				ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
				if err := p.Ping(ctx); err != nil {
					out.Deps[name] = err.Error()
				} else {
					out.Deps[name] = "ok"
				}
				cancel()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}
