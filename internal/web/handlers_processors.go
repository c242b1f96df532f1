package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// TDPResponse is the JSON body of GET /api/processor/tdp/{name}.
type TDPResponse struct {
	Processor string `json:"processor"`
	TDP       *int32 `json:"tdp"`
}

// handleListProcessors serves GET /processors/?skip=&limit=.
func (s *Server) handleListProcessors(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", s.cfg.List.DefaultLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if limit > s.cfg.List.MaxLimit {
		limit = s.cfg.List.MaxLimit
	}

	recs, err := s.store.List(r.Context(), skip, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, recs)
}

// handleGetProcessor serves GET /processors/{id}.
func (s *Server) handleGetProcessor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "id", Reason: "invalid parameter: must be an integer"})
		return
	}

	rec, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, rec)
}

// handleTDPText serves GET /processor/tdp/{name} as a sentence.
func (s *Server) handleTDPText(w http.ResponseWriter, r *http.Request) {
	name, rec, ok := s.lookupByName(w, r)
	if !ok {
		return
	}
	render.PlainText(w, r, fmt.Sprintf("The TDP of %s is %s watts", name, tdpText(rec.TDP)))
}

// handleTDPJSON serves GET /api/processor/tdp/{name}.
func (s *Server) handleTDPJSON(w http.ResponseWriter, r *http.Request) {
	name, rec, ok := s.lookupByName(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, TDPResponse{Processor: name, TDP: rec.TDP})
}

// handleTDPValue serves GET /api/processor/tdp/value/{name} as the bare value.
func (s *Server) handleTDPValue(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := s.lookupByName(w, r)
	if !ok {
		return
	}
	render.PlainText(w, r, tdpText(rec.TDP))
}

// lookupByName resolves the {name} path parameter and writes the error
// response itself when the lookup fails.
func (s *Server) lookupByName(w http.ResponseWriter, r *http.Request) (string, core.ProcessorRecord, bool) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	rec, err := s.store.GetByName(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return name, core.ProcessorRecord{}, false
	}
	return name, rec, true
}

func tdpText(tdp *int32) string {
	if tdp == nil {
		return "N/A"
	}
	return strconv.FormatInt(int64(*tdp), 10)
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &core.ValidationError{Field: name, Reason: "invalid parameter: must be a non-negative integer"}
	}
	return n, nil
}
