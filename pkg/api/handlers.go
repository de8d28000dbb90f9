package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/buildinfo"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/extract"
	"github.com/lzdw/lzdraw/pkg/pipeline"
	"github.com/lzdw/lzdraw/pkg/render/drawio"
	"github.com/lzdw/lzdraw/pkg/render/terraform"
	"github.com/lzdw/lzdraw/pkg/store"
)

// generateRequest accepts both the camelCase keys sent by the workshop
// frontend and snake_case.
type generateRequest struct {
	QuestionnaireContent string `json:"questionnaireContent"`
	Questionnaire        string `json:"questionnaire"`
	ClientName           string `json:"clientName"`
	ClientNameSnake      string `json:"client_name"`
	ExtraNotes           string `json:"extraNotes"`
	ExtraNotesSnake      string `json:"extra_notes"`
}

func (g generateRequest) extractRequest() extract.Request {
	return extract.Request{
		Questionnaire: firstNonEmpty(g.QuestionnaireContent, g.Questionnaire),
		ClientName:    firstNonEmpty(g.ClientName, g.ClientNameSnake),
		ExtraNotes:    firstNonEmpty(g.ExtraNotes, g.ExtraNotesSnake),
	}
}

type generateResponse struct {
	ID           string             `json:"id,omitempty"`
	Architecture *arch.Architecture `json:"architecture"`
	Cached       bool               `json:"cached"`
}

type architectureRequest struct {
	Architecture json.RawMessage `json:"architecture"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	req := body.extractRequest()
	if strings.TrimSpace(req.Questionnaire) == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "Questionnaire content is required"))
		return
	}

	a, hit, err := s.runner.Extract(r.Context(), req, queryBool(r, "refresh"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := generateResponse{Architecture: a, Cached: hit}
	if s.store != nil {
		if rec, err := store.NewRecord(a); err != nil {
			loggerFromContext(r.Context()).Warn("architecture not archived", "err", err)
		} else if err := s.store.Save(r.Context(), rec); err != nil {
			loggerFromContext(r.Context()).Warn("architecture not archived", "err", err)
		} else {
			resp.ID = rec.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownloadDrawio(w http.ResponseWriter, r *http.Request) {
	a, ok := s.readArchitecture(w, r)
	if !ok {
		return
	}
	s.sendDrawio(w, r, a)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}

	a, ok := s.readArchitecture(w, r)
	if !ok {
		return
	}

	opts := s.options(r.URL.Query().Get("theme"), format)
	opts.Detailed = queryBool(r, "detailed")
	res, err := s.runner.Render(r.Context(), a, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data := res.Artifacts[format]
	switch format {
	case pipeline.FormatJSON:
		writeJSON(w, http.StatusOK, struct {
			Document json.RawMessage `json:"document"`
		}{json.RawMessage(data)})
	case pipeline.FormatDrawio:
		writeArtifact(w, format, drawio.Filename(a.ClientName), data)
	case pipeline.FormatTerraform:
		writeArtifact(w, format, terraform.BundleFilename, data)
	default:
		writeArtifact(w, format, "", data)
	}
}

func (s *Server) handleListArchitectures(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"architectures": []*store.Record{}})
		return
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"architectures": recs})
}

// parseLimit reads the ?limit= query value. Empty means the store default.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", raw)
	}
	return n, nil
}

func (s *Server) handleGetArchitecture(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetArchitectureDrawio(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.sendDrawio(w, r, rec.Architecture)
}

func (s *Server) lookup(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if s.store == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "architecture %q not found", id)
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) sendDrawio(w http.ResponseWriter, r *http.Request, a *arch.Architecture) {
	res, err := s.runner.Render(r.Context(), a, s.options(r.URL.Query().Get("theme"), pipeline.FormatDrawio))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArtifact(w, pipeline.FormatDrawio, drawio.Filename(a.ClientName), res.Artifacts[pipeline.FormatDrawio])
}

// readArchitecture decodes {"architecture": ...} and validates it against
// the schema, normalizing legacy shapes.
func (s *Server) readArchitecture(w http.ResponseWriter, r *http.Request) (*arch.Architecture, bool) {
	var body architectureRequest
	if !decodeJSON(w, r, &body) {
		return nil, false
	}
	raw := bytes.TrimSpace(body.Architecture)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "No architecture provided"))
		return nil, false
	}
	a, err := arch.Decode(raw)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return a, true
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
