package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "1.0.0"

func (h *Handlers) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": h.config.Server.Env,
			"version":     version,
		},
	}

	if h.factory.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.factory.DB.DB.PingContext(ctx); err != nil {
			h.logError(r, err)
			status = http.StatusServiceUnavailable
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
		} else {
			resp["database"] = "ok"
		}
	}

	h.respond(w, r, status, resp)
}
