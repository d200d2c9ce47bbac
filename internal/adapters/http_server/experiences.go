package httpserver

import (
	"net/http"

	"github.com/google/uuid"

	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
)

func (h *Handlers) listExperiences(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.ListActive(r.Context(), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) myExperiences(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Mine(r.Context(), caller(r), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getExperience(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) propertyExperiences(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.ForProperty(r.Context(), optionalCaller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) experienceProperties(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Properties(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createExperience(w http.ResponseWriter, r *http.Request) {
	var in app.ExperienceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("experience", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateExperience(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.ExperiencePatch
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Update(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("experience", "update")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteExperience(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Experiences.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("experience", "delete")
	w.WriteHeader(http.StatusNoContent)
}

type attachRequest struct {
	PropertyIDs []uuid.UUID `json:"property_ids"`
}

func (h *Handlers) attachProperties(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in attachRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Experiences.Attach(r.Context(), caller(r), id, in.PropertyIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) detachProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	propertyID, err := uuidParam(r, "propertyID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Experiences.Detach(r.Context(), caller(r), id, propertyID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
