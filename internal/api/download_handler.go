package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexuspro/nexus-render/internal/artifacts"
)

func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")

		art, err := cfg.Artifacts.Resolve(r.Context(), name)
		if err != nil {
			if errors.Is(err, artifacts.ErrNotFound) {
				WriteError(w, http.StatusNotFound, "File not found", CodeNotFound)
				return
			}
			cfg.Logger.Error("artifact lookup failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "Server error", CodeInternal)
			return
		}

		if err := cfg.Delivery.ServeAttachment(w, r, art.Path, art.FileName()); err != nil {
			cfg.Logger.Error("download error", "error", err, "output_id", art.ID)
		}
	}
}
