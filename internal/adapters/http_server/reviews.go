package httpserver

import (
	"net/http"

	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
)

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.List(r.Context(), optionalCaller(r), id, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.ReviewInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.Create(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("review", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.ReviewPatch
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.Update(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("review", "update")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Reviews.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("review", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) markHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Reviews.MarkHelpful(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
