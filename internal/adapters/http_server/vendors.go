package httpserver

import (
	"net/http"

	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
	"property_listing/internal/domain"
)

func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := newQuery(r)
	f := domain.ServiceFilter{ActiveOnly: true}
	if v := q.raw("category"); v != "" {
		c := domain.ServiceCategory(v)
		f.Category = &c
	}
	out, err := h.Vendors.ListServices(r.Context(), f, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) vendorServices(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuidParam(r, "vendorID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.ListServices(r.Context(), domain.ServiceFilter{VendorID: &vendorID, ActiveOnly: true}, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) myServices(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.MyServices(r.Context(), caller(r), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getService(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.GetService(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createService(w http.ResponseWriter, r *http.Request) {
	var in app.VendorServiceInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.CreateService(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("vendor_service", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateService(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.VendorServicePatch
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.UpdateService(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("vendor_service", "update")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteService(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Vendors.DeleteService(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("vendor_service", "delete")
	w.WriteHeader(http.StatusNoContent)
}

// ---- coupons ----

func (h *Handlers) listCoupons(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := newQuery(r)
	f := domain.CouponFilter{ServiceID: q.uuidv("service_id"), ActiveOnly: true}
	if v := q.boolv("active_only"); v != nil {
		f.ActiveOnly = *v
	}
	if q.err != nil {
		writeError(w, r, q.err)
		return
	}
	out, err := h.Vendors.ListCoupons(r.Context(), f, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.GetCoupon(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createCoupon(w http.ResponseWriter, r *http.Request) {
	var in app.CouponInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.CreateCoupon(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("coupon", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.CouponPatch
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Vendors.UpdateCoupon(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("coupon", "update")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Vendors.DeleteCoupon(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("coupon", "delete")
	w.WriteHeader(http.StatusNoContent)
}
