package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/nexuspro/nexus-render/internal/assets"
)

const multipartMemory = 32 << 20

// uploadFields maps multipart field names to asset kinds, in lookup order.
var uploadFields = []struct {
	field string
	kind  assets.Kind
}{
	{"video", assets.KindVideo},
	{"image", assets.KindImage},
}

func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.MaxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit", CodePayloadTooLarge)
				return
			}
			WriteError(w, http.StatusBadRequest, "invalid multipart body", CodeBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, kind, ok := formFile(r)
		if !ok {
			WriteError(w, http.StatusBadRequest, "no video or image file in request", CodeBadRequest)
			return
		}
		defer file.Close()

		asset, err := cfg.Uploader.Save(r.Context(), assets.Upload{Kind: kind, Filename: header.Filename}, file)
		switch {
		case err == nil:
		case errors.Is(err, assets.ErrUnsupportedType):
			WriteError(w, http.StatusUnsupportedMediaType, err.Error(), CodeUnsupportedType)
			return
		case errors.Is(err, assets.ErrEmptyUpload):
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		default:
			cfg.Logger.Error("upload failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to store upload", CodeInternal)
			return
		}

		WriteJSON(w, http.StatusOK, UploadToResponse(asset))
	}
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, assets.Kind, bool) {
	for _, f := range uploadFields {
		file, header, err := r.FormFile(f.field)
		if err == nil {
			return file, header, f.kind, true
		}
	}
	return nil, nil, "", false
}
