package server

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/graph"
	"github.com/matzehuels/codegraph/pkg/render"
	"github.com/matzehuels/codegraph/pkg/tree"
	"github.com/matzehuels/codegraph/pkg/workspace"
)

// rebuildRequest is the body of POST /api/rebuild.
type rebuildRequest struct {
	Source  string            `json:"source"`
	Seed    uint64            `json:"seed,omitempty"`
	Folders int               `json:"folders,omitempty"`
	Files   []tree.FileHandle `json:"files,omitempty"`
	Refresh bool              `json:"refresh,omitempty"`
	DelayMS int               `json:"delay_ms,omitempty"`
}

// stateResponse summarises the committed workspace state.
type stateResponse struct {
	Generation uint64          `json:"generation"`
	Source     string          `json:"source,omitempty"`
	Nodes      int             `json:"nodes"`
	Edges      int             `json:"edges"`
	Levels     int             `json:"levels"`
	Orphans    []string        `json:"orphans,omitempty"`
	Selected   string          `json:"selected,omitempty"`
	Settings   render.Settings `json:"settings"`
	CacheHit   bool            `json:"cache_hit,omitempty"`
	BuiltAt    time.Time       `json:"built_at,omitzero"`
}

func newStateResponse(snap workspace.Snapshot) stateResponse {
	resp := stateResponse{
		Generation: snap.Generation,
		Source:     snap.Source,
		Selected:   snap.Selected,
		Settings:   snap.Settings,
		CacheHit:   snap.CacheHit,
		BuiltAt:    snap.BuiltAt,
	}
	if snap.Graph != nil {
		resp.Nodes = snap.Graph.NodeCount()
		resp.Edges = snap.Graph.EdgeCount()
		resp.Levels = len(snap.Layout.Levels)
		resp.Orphans = snap.Layout.Orphans
	}
	return resp
}

// selectionResponse is returned by the selection endpoints: the node for
// the canvas and its path for the side tree.
type selectionResponse struct {
	Node graph.Node `json:"node"`
	Path string     `json:"path"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rebuild handles POST /api/rebuild.
func (s *Server) rebuild(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if req.DelayMS < 0 {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "delay_ms must not be negative"))
		return
	}
	delay := time.Duration(req.DelayMS) * time.Millisecond
	if delay > s.maxDelay {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "delay_ms must be at most %d", s.maxDelay.Milliseconds()))
		return
	}

	snap, err := s.ws.Rebuild(r.Context(), workspace.Request{
		Source:  req.Source,
		Seed:    req.Seed,
		Folders: req.Folders,
		Files:   req.Files,
		Refresh: req.Refresh,
		Delay:   delay,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, newStateResponse(snap))
}

// state handles GET /api/state.
func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, newStateResponse(s.ws.Snapshot()))
}

// graph handles GET /api/graph: the styled graph for the canvas.
func (s *Server) graph(w http.ResponseWriter, _ *http.Request) {
	styled, err := s.ws.Styled()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, styled)
}

// tree handles GET /api/tree?q=: the side tree, filtered when q is set.
func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	root, err := s.ws.Search(r.URL.Query().Get("q"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, root)
}

// selectNode handles POST /api/select/{id}: a canvas click.
func (s *Server) selectNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.ws.SelectNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, selectionResponse{Node: n, Path: n.Path})
}

// clearSelection handles DELETE /api/select.
func (s *Server) clearSelection(w http.ResponseWriter, _ *http.Request) {
	s.ws.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// locate handles GET /api/locate?path=: a side-tree click.
func (s *Server) locate(w http.ResponseWriter, r *http.Request) {
	n, err := s.ws.SelectPath(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, selectionResponse{Node: n, Path: n.Path})
}

// getSettings handles GET /api/settings.
func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.ws.Settings())
}

// putSettings handles PUT /api/settings. Fields left out keep their value.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var patch render.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, errors.Wrap(errors.ErrCodeInvalidSettings, err, "%s", errors.UserMessage(err)))
		return
	}
	settings, err := s.ws.ApplySettings(r.Context(), patch)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

// exportCSV handles GET /api/export.csv.
func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := s.ws.ExportCSV(r.Context(), &buf); err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="codebase-graph.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write csv", "error", err)
	}
}

// renderSVG handles GET /api/render.svg.
func (s *Server) renderSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := s.ws.RenderSVG(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := w.Write(svg); err != nil {
		s.logger.Debug("write svg", "error", err)
	}
}
