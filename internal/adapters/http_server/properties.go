package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"property_listing/internal/adapters/observability"
	"property_listing/internal/app"
	"property_listing/internal/domain"
)

// propertyFilter reads the listing filters shared by /properties and /properties/search.
func propertyFilter(q *query) domain.PropertyFilter {
	f := domain.PropertyFilter{
		HostID:         q.uuidv("host_id"),
		IsFeatured:     q.boolv("is_featured"),
		City:           q.str("city"),
		Country:        q.str("country"),
		Search:         q.str("search", "q"),
		MinPrice:       q.int64v("min_price"),
		MaxPrice:       q.int64v("max_price"),
		MinBedrooms:    q.intv("bedrooms", 0),
		MinBeds:        q.intv("beds", 0),
		MinBathrooms:   q.floatv("bathrooms", 0),
		MinGuests:      q.intv("max_guests", 1),
		InstantBook:    q.boolv("instant_book"),
		PetsAllowed:    q.boolv("pets_allowed", "pets"),
		HasExperiences: q.boolv("has_experiences"),
		AmenityIDs:     q.uuids("amenities"),
	}
	if v := q.raw("property_type"); v != "" {
		t := domain.PropertyType(v)
		if !t.Valid() {
			q.fail("property_type", "one of house, apartment, guest_house, hotel")
		}
		f.PropertyType = &t
	}
	if v := q.raw("place_type"); v != "" {
		t := domain.PlaceType(v)
		if !t.Valid() {
			q.fail("place_type", "one of entire_place, private_room, shared_room")
		}
		f.PlaceType = &t
	}
	sort, ok := domain.ParseSortKey(q.raw("sort_by", "sort"))
	if !ok {
		q.fail("sort_by", "one of price_asc, price_desc, rating, newest")
	}
	f.Sort = sort
	return f
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := newQuery(r)
	f := propertyFilter(q)
	if q.err != nil {
		writeError(w, r, q.err)
		return
	}
	// inactive listings are only reachable through /my-properties
	active := true
	f.IsActive = &active
	out, err := h.Properties.List(r.Context(), f, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) searchProperties(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := newQuery(r)
	sq := app.SearchQuery{PropertyFilter: propertyFilter(q)}
	sq.Location = q.str("location")
	sq.CheckIn = q.date("check_in")
	sq.CheckOut = q.date("check_out")
	if n := q.intv("adults", 1); n != nil {
		sq.Adults = *n
	}
	if n := q.intv("children", 0); n != nil {
		sq.Children = *n
	}
	if q.err != nil {
		writeError(w, r, q.err)
		return
	}
	out, err := h.Properties.Search(r.Context(), sq, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) featuredProperties(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	limit := 10
	if n := q.intv("limit", 1); n != nil {
		limit = *n
	}
	if q.err != nil {
		writeError(w, r, q.err)
		return
	}
	out, err := h.Properties.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) nearbyProperties(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	lat := q.floatv("lat", -90)
	lng := q.floatv("lng", -180)
	nq := domain.NearbyQuery{RadiusKm: 10, Limit: 20}
	if v := q.floatv("radius", 0); v != nil {
		nq.RadiusKm = *v
	}
	if n := q.intv("limit", 0); n != nil {
		nq.Limit = *n
	}
	if q.err == nil && (lat == nil || lng == nil) {
		q.fail("lat and lng", "provided")
	}
	if q.err != nil {
		writeError(w, r, q.err)
		return
	}
	nq.Lat, nq.Lng = *lat, *lng
	out, err := h.Properties.Nearby(r.Context(), nq)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.Get(r.Context(), id, optionalCaller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) getPropertyBySlug(w http.ResponseWriter, r *http.Request) {
	out, err := h.Properties.GetBySlug(r.Context(), chi.URLParam(r, "slug"), optionalCaller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, out)
}

func (h *Handlers) hostProperties(w http.ResponseWriter, r *http.Request) {
	hostID, err := uuidParam(r, "hostID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.HostProperties(r.Context(), hostID, pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) myProperties(w http.ResponseWriter, r *http.Request) {
	pg, err := h.Pages.parse(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.MyProperties(r.Context(), caller(r), pg)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in app.CreatePropertyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("property", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.UpdatePropertyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.Update(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("property", "update")
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteProperty(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Properties.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("property", "delete")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in app.AvailabilityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.AddAvailability(r.Context(), caller(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	observability.ObserveMutation("availability", "create")
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) listAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Properties.ListAvailability(r.Context(), optionalCaller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
