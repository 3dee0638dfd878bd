// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"bakery_locations/internal/app"
	"bakery_locations/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
	// TimeZone labels rendered hours only.
	TimeZone string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/locations", h.listLocations)
	s.mux.Get("/v1/locations/nearby", h.nearby)
	s.mux.Get("/v1/locations/{slug}", h.getLocation)
	s.mux.Get("/v1/locations/{slug}/hours", h.getHours)
	s.mux.Get("/v1/locations/{slug}/status", h.getStatus)
	s.mux.Put("/v1/locations/{slug}", h.putLocation)
	s.mux.Delete("/v1/locations/{slug}", h.deleteLocation)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeErr maps domain errors onto problem responses.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "location not found")
	case domain.IsInvalid(err):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Location", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
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
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v as JSON with a weak ETag, answering 304 when the client has it.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func intParam(r *http.Request, name string, def, lo, hi int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func floatParam(r *http.Request, name string) (float64, bool) {
	f, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return f, err == nil
}

func (h *Handlers) listLocations(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 50, 1, 200)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return
	}
	out, err := h.Q.ListLocations(r.Context(), domain.LocationsQuery{Limit: limit})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getLocation(w http.ResponseWriter, r *http.Request) {
	l, err := h.Q.GetLocation(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeCached(w, r, l)
}

func (h *Handlers) getHours(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	lines, err := h.Q.Hours(r.Context(), slug, h.TimeZone)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeCached(w, r, struct {
		Slug     string   `json:"slug"`
		TimeZone string   `json:"time_zone"`
		Hours    []string `json:"hours"`
	}{slug, h.TimeZone, lines})
}

func (h *Handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	var at *time.Time
	if s := r.URL.Query().Get("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid at", "at must be an RFC 3339 timestamp")
			return
		}
		at = &t
	}
	st, err := h.Q.Status(r.Context(), chi.URLParam(r, "slug"), at)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	body, _ := json.Marshal(st)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, body)
}

func (h *Handlers) nearby(w http.ResponseWriter, r *http.Request) {
	lat, okLat := floatParam(r, "lat")
	lon, okLon := floatParam(r, "lon")
	c := domain.Coords{Lat: lat, Lon: lon}
	if !okLat || !okLon || c.Validate() != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid coordinates", "lat and lon must be numeric and in range")
		return
	}
	radius := 10.0
	if r.URL.Query().Get("radius_km") != "" {
		var ok bool
		if radius, ok = floatParam(r, "radius_km"); !ok || radius <= 0 || radius > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid radius", "radius_km must be between 0 and 500")
			return
		}
	}
	limit, ok := intParam(r, "limit", 10, 1, 100)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
		return
	}
	out, err := h.Q.Nearby(r.Context(), c, radius, limit)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	body, _ := json.Marshal(struct {
		Items []domain.NearbyLocation `json:"items"`
	}{out})
	writeJSON(w, http.StatusOK, body)
}

// locationInput is the editorial payload; coordinates arrive as one "lat, long" string.
type locationInput struct {
	Title        string       `json:"title"`
	Introduction string       `json:"introduction"`
	Address      string       `json:"address"`
	LatLong      string       `json:"lat_long"`
	Live         *bool        `json:"live"`
	Hours        []hoursInput `json:"hours_of_operation"`
}

// hoursInput leaves sort_order optional so omitted orders follow the payload order.
type hoursInput struct {
	Day       domain.Weekday    `json:"day"`
	Opening   *domain.TimeOfDay `json:"opening_time"`
	Closing   *domain.TimeOfDay `json:"closing_time"`
	Closed    bool              `json:"closed"`
	SortOrder *int              `json:"sort_order"`
}

func (in locationInput) schedule() domain.Schedule {
	out := make(domain.Schedule, 0, len(in.Hours))
	for i, h := range in.Hours {
		order := i
		if h.SortOrder != nil {
			order = *h.SortOrder
		}
		out = append(out, domain.OperatingHours{
			Day: h.Day, Opening: h.Opening, Closing: h.Closing, Closed: h.Closed, SortOrder: order,
		})
	}
	return out
}

func (h *Handlers) putLocation(w http.ResponseWriter, r *http.Request) {
	var in locationInput
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if domain.IsInvalid(err) {
			writeErr(w, r, err)
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	coords, err := domain.ParseLatLong(in.LatLong)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	l := domain.Location{
		Slug:         chi.URLParam(r, "slug"),
		Title:        in.Title,
		Introduction: in.Introduction,
		Address:      in.Address,
		Coords:       coords,
		Hours:        in.schedule(),
		Live:         in.Live == nil || *in.Live,
	}
	saved, err := h.C.SaveLocation(r.Context(), l)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	log.Info().Str("slug", saved.Slug).Int64("id", saved.ID).Msg("location saved")
	body, _ := json.Marshal(saved)
	writeJSON(w, http.StatusOK, body)
}

func (h *Handlers) deleteLocation(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := h.C.DeleteLocation(r.Context(), slug); err != nil {
		writeErr(w, r, err)
		return
	}
	log.Info().Str("slug", slug).Msg("location deleted")
	w.WriteHeader(http.StatusNoContent)
}
