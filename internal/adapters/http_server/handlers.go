package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger func(ctx context.Context) error

type Handlers struct {
	Properties  *app.PropertyService
	Reviews     *app.ReviewService
	Experiences *app.ExperienceService
	Vendors     *app.VendorsService
	Catalog     *app.CatalogService
	Images      *app.ImageService
	Auth        domain.Authenticator
	Pages       PageConfig
	Ready       Pinger
}

func (s *Server) MountHandlers(prefix string, h *Handlers) {
	if h.Pages.Default <= 0 {
		h.Pages.Default = 20
	}
	if h.Pages.Max <= 0 {
		h.Pages.Max = 100
	}
	s.mux.Get("/healthz", h.health)
	s.mux.Get("/media/*", h.serveMedia)

	requireAuth := RequireAuth(h.Auth)
	optionalAuth := OptionalAuth(h.Auth)

	s.mux.Route(prefix, func(r chi.Router) {
		// public
		r.Get("/properties", h.listProperties)
		r.Get("/properties/search", h.searchProperties)
		r.Get("/properties/featured", h.featuredProperties)
		r.Get("/properties/nearby", h.nearbyProperties)
		r.Get("/properties/host/{hostID}", h.hostProperties)
		r.Get("/amenities", h.listAmenities)
		r.Get("/safety-features", h.listSafetyFeatures)
		r.Get("/experiences", h.listExperiences)
		r.Get("/experiences/{id}", h.getExperience)
		r.Get("/vendors/services", h.listServices)
		r.Get("/vendors/services/{id}", h.getService)
		r.Get("/vendors/{vendorID}/services", h.vendorServices)
		r.Get("/coupons", h.listCoupons)
		r.Get("/coupons/{id}", h.getCoupon)

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/properties/{id}", h.getProperty)
			r.Get("/properties/slug/{slug}", h.getPropertyBySlug)
			r.Get("/properties/{id}/reviews", h.listReviews)
			r.Get("/properties/{id}/experiences", h.propertyExperiences)
			r.Get("/properties/{id}/availability", h.listAvailability)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/properties", h.createProperty)
			r.Put("/properties/{id}", h.updateProperty)
			r.Patch("/properties/{id}", h.updateProperty)
			r.Delete("/properties/{id}", h.deleteProperty)
			r.Get("/my-properties", h.myProperties)
			r.Post("/properties/{id}/availability", h.addAvailability)

			r.Post("/properties/{id}/reviews", h.createReview)
			r.Put("/reviews/{id}", h.updateReview)
			r.Delete("/reviews/{id}", h.deleteReview)
			r.Post("/reviews/{id}/helpful", h.markHelpful)

			r.Post("/experiences", h.createExperience)
			r.Get("/experiences/my", h.myExperiences)
			r.Get("/experiences/{id}/properties", h.experienceProperties)
			r.Put("/experiences/{id}", h.updateExperience)
			r.Delete("/experiences/{id}", h.deleteExperience)
			r.Post("/experiences/{id}/properties", h.attachProperties)
			r.Delete("/experiences/{id}/properties/{propertyID}", h.detachProperty)

			r.Post("/vendors/services", h.createService)
			r.Get("/vendors/services/my", h.myServices)
			r.Put("/vendors/services/{id}", h.updateService)
			r.Delete("/vendors/services/{id}", h.deleteService)

			r.Post("/coupons", h.createCoupon)
			r.Put("/coupons/{id}", h.updateCoupon)
			r.Delete("/coupons/{id}", h.deleteCoupon)

			r.Post("/images/upload", h.uploadImage)
			r.Post("/images/upload-multiple", h.uploadImages)
			r.Delete("/images", h.deleteImage)
		})
	})
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable", "")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// caller is only called behind RequireAuth, which always sets the identity.
func caller(r *http.Request) domain.Identity {
	id, _ := identityFrom(r.Context())
	return id
}

func optionalCaller(r *http.Request) *domain.Identity {
	if id, ok := identityFrom(r.Context()); ok {
		return &id
	}
	return nil
}
