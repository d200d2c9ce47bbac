package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "property_listing/internal/adapters/http_server"
	"property_listing/internal/adapters/mediastore"
	"property_listing/internal/app"
	"property_listing/internal/domain"
	"property_listing/internal/storage/sqlstore"
)

type fakeAuth map[string]domain.Identity

func (f fakeAuth) Me(_ context.Context, token string) (domain.Identity, error) {
	if token == "down" {
		return domain.Identity{}, domain.ErrUnavailable
	}
	id, ok := f[token]
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

type env struct {
	srv   http.Handler
	host  domain.Identity
	guest domain.Identity
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := sqlstore.Open("sqlite", filepath.Join(t.TempDir(), "http.db"), 1)
	require.NoError(t, err)
	require.NoError(t, sqlstore.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := sqlstore.New(db)
	media, err := mediastore.NewLocal(t.TempDir(), "http://localhost:8001")
	require.NoError(t, err)

	host := domain.Identity{ID: uuid.New(), FirstName: "Marta", LastName: "Reis", Email: "marta@example.com", IsActive: true, Host: &domain.HostInfo{Status: "active"}}
	guest := domain.Identity{ID: uuid.New(), FirstName: "Tom", Email: "tom@example.com", IsActive: true}
	inactive := domain.Identity{ID: uuid.New(), IsActive: false}
	deactivatedHost := host
	deactivatedHost.IsActive = false

	s := httpserver.New(httpserver.Options{Timeout: 5 * time.Second})
	s.MountHandlers("/api/v1", &httpserver.Handlers{
		Properties:  app.NewPropertyService(store),
		Reviews:     app.NewReviewService(store),
		Experiences: app.NewExperienceService(store),
		Vendors:     app.NewVendorsService(store),
		Catalog:     app.NewCatalogService(store, nil, time.Minute),
		Images:      app.NewImageService(media, 1<<20, nil),
		Auth:        fakeAuth{"host": host, "guest": guest, "inactive": inactive, "host-deactivated": deactivatedHost},
		Pages:       httpserver.PageConfig{Default: 20, Max: 100},
	})
	return &env{srv: s.Mux(), host: host, guest: guest}
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.srv.ServeHTTP(rr, req)
	return rr
}

type problemBody struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Reason string `json:"reason"`
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) problemBody {
	t.Helper()
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	var p problemBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func propertyBody(title string, price int64, active bool) map[string]any {
	imgs := make([]map[string]any, 3)
	for i := range imgs {
		imgs[i] = map[string]any{"image_url": "https://img.example.com/" + title + "/" + string(rune('a'+i)) + ".jpg", "display_order": i}
	}
	return map[string]any{
		"title":           title,
		"description":     "Sunny two bedroom flat with river views, a full kitchen and a quiet courtyard.",
		"property_type":   "apartment",
		"place_type":      "entire_place",
		"price_per_night": price,
		"is_active":       active,
		"location": map[string]any{
			"address":   "Rua das Flores 10",
			"city":      "Porto",
			"country":   "Portugal",
			"latitude":  41.1496,
			"longitude": -8.6109,
		},
		"images": imgs,
	}
}

func createProperty(t *testing.T, e *env, title string, price int64, active bool) map[string]any {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/properties", "host", propertyBody(title, price, active))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestAuth_Failures(t *testing.T) {
	e := newEnv(t)

	rr := e.do(t, http.MethodGet, "/api/v1/my-properties", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	decodeProblem(t, rr)

	rr = e.do(t, http.MethodGet, "/api/v1/my-properties", "nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/v1/my-properties", "inactive", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "inactive_user", decodeProblem(t, rr).Reason)

	rr = e.do(t, http.MethodGet, "/api/v1/my-properties", "down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestCreateProperty_RequiresHostIdentity(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, http.MethodPost, "/api/v1/properties", "guest", propertyBody("Guest made listing", 10000, true))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "no_host_identity", decodeProblem(t, rr).Reason)
}

func TestCreateProperty_ValidationIs400(t *testing.T) {
	e := newEnv(t)
	body := propertyBody("Too few images here", 10000, true)
	body["images"] = []map[string]any{{"image_url": "https://img.example.com/x.jpg"}}
	rr := e.do(t, http.MethodPost, "/api/v1/properties", "host", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	decodeProblem(t, rr)

	rr = e.do(t, http.MethodPost, "/api/v1/properties", "host", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProperty_ETagAndVisibility(t *testing.T) {
	e := newEnv(t)
	p := createProperty(t, e, "Riverside loft in Porto", 12000, true)
	id := p["id"].(string)
	assert.Equal(t, "riverside-loft-in-porto", p["slug"])
	assert.Equal(t, "Marta Reis", p["host_name"])

	rr := e.do(t, http.MethodGet, "/api/v1/properties/"+id, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+id, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	e.srv.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)

	draft := createProperty(t, e, "Unpublished draft cottage", 9000, false)
	draftID := draft["id"].(string)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/properties/"+draftID, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/properties/"+draftID, "guest", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/properties/"+draftID, "host", nil).Code)
	// a bad optional token falls back to anonymous
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/properties/"+id, "nobody", nil).Code)

	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodGet, "/api/v1/properties/not-a-uuid", "", nil).Code)
}

func TestListProperties_FiltersAndPaging(t *testing.T) {
	e := newEnv(t)
	createProperty(t, e, "Budget room near station", 5000, true)
	createProperty(t, e, "Mid range flat downtown", 15000, true)
	createProperty(t, e, "Luxury penthouse terrace", 40000, true)

	rr := e.do(t, http.MethodGet, "/api/v1/properties?min_price=10000&max_price=20000", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
		Pages int              `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Mid range flat downtown", page.Items[0]["title"])
	assert.NotNil(t, page.Items[0]["cover_image"])

	rr = e.do(t, http.MethodGet, "/api/v1/properties?page_size=2&sort_by=price_asc", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, "Budget room near station", page.Items[0]["title"])

	for _, q := range []string{"page=0", "page=100001", "page=99999999999", "page_size=101", "sort_by=cheapest", "min_price=abc", "property_type=castle"} {
		rr := e.do(t, http.MethodGet, "/api/v1/properties?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestReviews_ReasonsOnConflicts(t *testing.T) {
	e := newEnv(t)
	p := createProperty(t, e, "Harbour view studio", 11000, true)
	path := "/api/v1/properties/" + p["id"].(string) + "/reviews"

	rr := e.do(t, http.MethodPost, path, "host", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "own_property_review", decodeProblem(t, rr).Reason)

	rr = e.do(t, http.MethodPost, path, "guest", map[string]any{"rating": 4, "comment": "Lovely"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodPost, path, "guest", map[string]any{"rating": 2})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "duplicate_review", decodeProblem(t, rr).Reason)

	rr = e.do(t, http.MethodGet, "/api/v1/properties/"+p["id"].(string), "", nil)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, 4.0, detail["average_rating"])
	assert.Equal(t, 1.0, detail["total_reviews"])
}

func TestUpdateProperty_NotOwner(t *testing.T) {
	e := newEnv(t)
	p := createProperty(t, e, "Hillside villa with pool", 30000, true)
	rr := e.do(t, http.MethodPatch, "/api/v1/properties/"+p["id"].(string), "guest", map[string]any{"price_per_night": 1})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, http.MethodPatch, "/api/v1/properties/"+p["id"].(string), "host", map[string]any{"price_per_night": 25000})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = e.do(t, http.MethodDelete, "/api/v1/properties/"+p["id"].(string), "host", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/properties/"+p["id"].(string), "host", nil).Code)
}

func TestImages_UploadServeDelete(t *testing.T) {
	e := newEnv(t)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "front.png")
	require.NoError(t, err)
	_, _ = fw.Write(png)
	require.NoError(t, mw.WriteField("display_order", "2"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer guest")
	rr := httptest.NewRecorder()
	e.srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var up app.UploadedImage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &up))
	assert.Equal(t, 2, up.DisplayOrder)
	assert.Equal(t, "front.png", up.AltText)
	assert.Equal(t, "image/png", up.ContentType)
	require.Contains(t, up.ImageURL, "http://localhost:8001/media/properties/")

	mediaPath := up.ImageURL[len("http://localhost:8001"):]
	rr = e.do(t, http.MethodGet, mediaPath, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, png, rr.Body.Bytes())

	rr = e.do(t, http.MethodDelete, "/api/v1/images?image_url="+up.ImageURL, "guest", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = e.do(t, http.MethodDelete, "/api/v1/images?image_url="+up.ImageURL, "guest", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, mediaPath, "", nil).Code)
}

func TestCatalog_EmptyListsAreArrays(t *testing.T) {
	e := newEnv(t)
	rr := e.do(t, http.MethodGet, "/api/v1/amenities", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestInactiveProperty_NeverPublic(t *testing.T) {
	e := newEnv(t)
	live := createProperty(t, e, "Live flat on the square", 9000, true)
	draft := createProperty(t, e, "Draft flat by the docks", 9000, false)
	draftID := draft["id"].(string)

	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	for _, path := range []string{"/api/v1/properties?is_active=false", "/api/v1/properties/search?is_active=false"} {
		rr := e.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total, path)
		require.Len(t, page.Items, 1, path)
		assert.Equal(t, live["id"], page.Items[0]["id"], path)
	}

	children := []string{"/reviews", "/availability", "/experiences"}
	for _, token := range []string{"", "guest", "host-deactivated"} {
		for _, child := range children {
			rr := e.do(t, http.MethodGet, "/api/v1/properties/"+draftID+child, token, nil)
			assert.Equal(t, http.StatusNotFound, rr.Code, "%q %s", token, child)
		}
	}
	for _, child := range children {
		rr := e.do(t, http.MethodGet, "/api/v1/properties/"+draftID+child, "host", nil)
		assert.Equal(t, http.StatusOK, rr.Code, child)
	}

	rr := e.do(t, http.MethodPost, "/api/v1/properties/"+draftID+"/reviews", "guest", map[string]any{"rating": 5})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOptionalAuth_DeactivatedHostIsAnonymous(t *testing.T) {
	e := newEnv(t)
	draft := createProperty(t, e, "Cabin waiting for photos", 9000, false)
	draftID := draft["id"].(string)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/properties/"+draftID, "host", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/properties/"+draftID, "host-deactivated", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodGet, "/api/v1/properties/slug/"+draft["slug"].(string), "host-deactivated", nil).Code)
}

func TestExperienceProperties_HostOnly(t *testing.T) {
	e := newEnv(t)
	draft := createProperty(t, e, "Quiet studio off season", 9000, false)

	rr := e.do(t, http.MethodPost, "/api/v1/experiences", "host", map[string]any{
		"title":        "Port cellar visit",
		"image_url":    "https://img.example.com/cellar.jpg",
		"property_ids": []any{draft["id"]},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var exp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &exp))
	path := "/api/v1/experiences/" + exp["id"].(string) + "/properties"

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, path, "guest", nil).Code)

	rr = e.do(t, http.MethodGet, path, "host", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var linked []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &linked))
	require.Len(t, linked, 1)
	assert.Equal(t, draft["id"], linked[0]["id"])
}
