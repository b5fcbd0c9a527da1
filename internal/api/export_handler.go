package api

import (
	"errors"
	"net/http"

	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/export"
	"github.com/nexuspro/nexus-render/internal/jobs"
	"github.com/nexuspro/nexus-render/internal/logging"
)

// exportHandler runs the export synchronously on the request goroutine and
// answers once the job is terminal.
func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := export.DecodeRaw(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}

		res, err := cfg.Exporter.Export(r.Context(), raw)
		if err != nil {
			requestID, _ := r.Context().Value(RequestIDKey).(string)
			logger := logging.WithRequestID(cfg.Logger, requestID)

			var execErr *jobs.ExecutionError
			switch {
			case errors.Is(err, edit.ErrInputNotFound):
				WriteError(w, http.StatusNotFound, "Input file not found", CodeInputNotFound)
			case errors.As(err, &execErr):
				WriteError(w, http.StatusInternalServerError, execErr.Error(), CodeExecutionFailed)
			default:
				logger.Error("export failed", "error", err)
				WriteError(w, http.StatusInternalServerError, "Server error", CodeInternal)
			}
			return
		}

		WriteJSON(w, http.StatusOK, ExportToResponse(res))
	}
}
