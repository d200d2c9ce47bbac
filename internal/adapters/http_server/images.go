package httpserver

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
	"property_listing/internal/domain"
)

// multipart bodies above this many bytes are spooled to disk by the parser.
const formMemory = 8 << 20

func readPart(fh *multipart.FileHeader) (app.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return app.ImageFile{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return app.ImageFile{}, err
	}
	return app.ImageFile{Name: fh.Filename, Data: data}, nil
}

func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return domain.Validationf("expected a multipart/form-data body: %v", err)
	}
	return nil
}

func (h *Handlers) uploadImage(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		writeError(w, r, domain.Validationf("form field image is required"))
		return
	}
	var meta app.UploadedImage
	if v := r.FormValue("display_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, domain.Validationf("display_order must be a non-negative integer"))
			return
		}
		meta.DisplayOrder = n
	}
	if v := r.FormValue("is_cover"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, domain.Validationf("is_cover must be a boolean"))
			return
		}
		meta.IsCover = b
	}
	meta.AltText = strings.TrimSpace(r.FormValue("alt_text"))

	f, err := readPart(files[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Images.Upload(r.Context(), f.Name, f.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out.DisplayOrder, out.IsCover, out.AltText = meta.DisplayOrder, meta.IsCover, meta.AltText
	observability.ObserveMutation("image", "upload")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) uploadImages(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, r, err)
		return
	}
	parts := r.MultipartForm.File["images"]
	files := make([]app.ImageFile, 0, len(parts))
	for _, fh := range parts {
		f, err := readPart(fh)
		if err != nil {
			writeError(w, r, err)
			return
		}
		files = append(files, f)
	}
	out, err := h.Images.UploadMany(r.Context(), files)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("image", "upload")
	writeJSON(w, http.StatusCreated, map[string]any{"images": out, "count": len(out)})
}

func (h *Handlers) deleteImage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("image_url")
	if err := h.Images.Delete(r.Context(), url); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("image", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) serveMedia(w http.ResponseWriter, r *http.Request) {
	rc, ct, err := h.Images.Open(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			err = domain.NotFoundf("media %s", r.URL.Path)
		}
		writeError(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Msg("media copy interrupted")
	}
}
