// Copyright (c) 2026 Bazinga Comics. All rights reserved.
// Author: dentuss

package sandbox

import (
	"log/slog"
	"net/http"

	"github.com/dentuss/Bazinga-Comics/internal/platform/constants"
	"github.com/dentuss/Bazinga-Comics/internal/platform/respond"
)

type healthHandler struct {
	store  *Store
	logger *slog.Logger
}

// liveness handles GET /health for liveness checks.
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// readiness handles GET /ready. The sandbox is ready once it has a catalog
// to serve.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	comics := len(handler.store.Comics())

	if comics == 0 {
		handler.logger.WarnContext(request.Context(), "readiness_check_failed", slog.String("dependency", "catalog"))
		respond.JSON(writer, http.StatusServiceUnavailable, map[string]any{
			constants.FieldStatus: "degraded",
			"comics":              comics,
		})
		return
	}

	respond.OK(writer, map[string]any{
		constants.FieldStatus: "ready",
		"comics":              comics,
	})
}
