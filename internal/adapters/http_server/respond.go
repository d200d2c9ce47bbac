package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"property_listing/internal/domain"
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail, reason string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Reason: reason}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error classes onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("request failed")
		detail = "internal error"
	}
	writeProblem(w, status, http.StatusText(status), detail, domain.Reason(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeCacheable answers 304 when the client already holds this representation.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "internal error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cacheable body")
	}
}

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validationf("request body is required")
		}
		return domain.Validationf("malformed JSON: %v", err)
	}
	return nil
}

// ---- parameter parsing ----

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.Validationf("%s must be a UUID", name)
	}
	return id, nil
}

// PageConfig bounds the page_size query parameter.
type PageConfig struct {
	Default int
	Max     int
}

func (pc PageConfig) parse(r *http.Request) (domain.PageQuery, error) {
	pg := domain.PageQuery{Page: 1, PageSize: pc.Default}
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > domain.MaxPage {
			return pg, domain.Validationf("page must be an integer between 1 and %d", domain.MaxPage)
		}
		pg.Page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > pc.Max {
			return pg, domain.Validationf("page_size must be an integer between 1 and %d", pc.Max)
		}
		pg.PageSize = n
	}
	return pg, nil
}

// query reads typed optional parameters, keeping the first error.
type query struct {
	r   *http.Request
	err error
}

func newQuery(r *http.Request) *query { return &query{r: r} }

func (q *query) fail(name, want string) {
	if q.err == nil {
		q.err = domain.Validationf("%s must be %s", name, want)
	}
}

// raw returns the first non-empty value among names.
func (q *query) raw(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(q.r.URL.Query().Get(n)); v != "" {
			return v
		}
	}
	return ""
}

func (q *query) str(names ...string) *string {
	if v := q.raw(names...); v != "" {
		return &v
	}
	return nil
}

func (q *query) intv(name string, lo int) *int {
	v := q.raw(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo {
		q.fail(name, fmt.Sprintf("an integer >= %d", lo))
		return nil
	}
	return &n
}

func (q *query) int64v(name string) *int64 {
	v := q.raw(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		q.fail(name, "a non-negative integer")
		return nil
	}
	return &n
}

func (q *query) floatv(name string, lo float64) *float64 {
	v := q.raw(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo {
		q.fail(name, fmt.Sprintf("a number >= %g", lo))
		return nil
	}
	return &f
}

func (q *query) boolv(names ...string) *bool {
	v := q.raw(names...)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		q.fail(names[0], "a boolean")
		return nil
	}
	return &b
}

func (q *query) uuidv(name string) *uuid.UUID {
	v := q.raw(name)
	if v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		q.fail(name, "a UUID")
		return nil
	}
	return &id
}

// uuids accepts a comma-separated list and repeated parameters.
func (q *query) uuids(name string) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range q.r.URL.Query()[name] {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p == "" {
				continue
			}
			id, err := uuid.Parse(p)
			if err != nil {
				q.fail(name, "a comma-separated list of UUIDs")
				return nil
			}
			out = append(out, id)
		}
	}
	return out
}

func (q *query) date(name string) *time.Time {
	v := q.raw(name)
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		q.fail(name, "a YYYY-MM-DD date")
		return nil
	}
	return &t
}
