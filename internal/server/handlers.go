package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/reqsmith/reqsmith/pkg/buildinfo"
	"github.com/reqsmith/reqsmith/pkg/errors"
	"github.com/reqsmith/reqsmith/pkg/lint"
	"github.com/reqsmith/reqsmith/pkg/manifest"
	"github.com/reqsmith/reqsmith/pkg/registry"
)

type declarationView struct {
	Name       string   `json:"name"`
	Normalized string   `json:"normalized"`
	Extras     []string `json:"extras,omitempty"`
	Specifier  string   `json:"specifier,omitempty"`
	Pin        string   `json:"pin,omitempty"`
	Marker     string   `json:"marker,omitempty"`
	Line       int      `json:"line"`
}

type parseResponse struct {
	Declarations []declarationView `json:"declarations"`
	Invalid      []invalidView     `json:"invalid,omitempty"`
}

type invalidView struct {
	Line    int    `json:"line"`
	Raw     string `json:"raw"`
	Message string `json:"message"`
}

type checkResponse struct {
	Findings []lint.Finding `json:"findings"`
	Errors   bool           `json:"errors"`
}

type verifyResponse struct {
	Results  []registry.Result `json:"results"`
	Failures int               `json:"failures"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readManifest(w, r)
	if !ok {
		return
	}

	resp := parseResponse{Declarations: []declarationView{}}
	for _, d := range doc.Declarations() {
		resp.Declarations = append(resp.Declarations, newDeclarationView(d))
	}
	for _, line := range doc.Invalid() {
		resp.Invalid = append(resp.Invalid, invalidView{
			Line:    line.Number,
			Raw:     line.Raw,
			Message: line.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readManifest(w, r)
	if !ok {
		return
	}

	findings := lint.Check(doc, s.opts.Lint)
	if findings == nil {
		findings = []lint.Finding{}
	}
	writeJSON(w, http.StatusOK, checkResponse{
		Findings: findings,
		Errors:   lint.HasErrors(findings),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if s.opts.Index == nil {
		writeError(w, http.StatusNotImplemented, errors.New(errors.ErrCodeUnsupported, "pin verification is not configured"))
		return
	}
	doc, ok := s.readManifest(w, r)
	if !ok {
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	results, err := registry.VerifyPins(r.Context(), s.opts.Index, doc.Declarations(), registry.Options{Refresh: refresh})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []registry.Result{}
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		Results:  results,
		Failures: len(registry.Failures(results)),
	})
}

// readManifest parses the request body as a requirements manifest. On
// failure it writes the error response and returns ok=false.
func (s *Server) readManifest(w http.ResponseWriter, r *http.Request) (*manifest.Document, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading request body"))
		return nil, false
	}
	if len(body) > maxBodySize {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New(errors.ErrCodeInvalidInput, "manifest exceeds %d bytes", maxBodySize))
		return nil, false
	}

	doc, err := manifest.Parse(strings.NewReader(string(body)))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parsing manifest"))
		return nil, false
	}
	return doc, true
}

func newDeclarationView(d *manifest.Declaration) declarationView {
	v := declarationView{
		Name:       d.Name,
		Normalized: d.NormalizedName(),
		Extras:     d.Extras,
		Specifier:  d.Spec.String(),
		Marker:     d.Marker,
		Line:       d.Line,
	}
	if pin, ok := d.Pinned(); ok {
		v.Pin = pin
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var resp errorResponse
	resp.Error.Code = string(errors.GetCode(err))
	resp.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, resp)
}
