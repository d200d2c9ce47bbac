package httpserver

import "net/http"

func (h *Handlers) listAmenities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.Amenities(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listSafetyFeatures(w http.ResponseWriter, r *http.Request) {
	out, err := h.Catalog.SafetyFeatures(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
