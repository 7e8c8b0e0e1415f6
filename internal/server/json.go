package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/reconcile"
	"github.com/matzehuels/hyperscene/pkg/scene"
	"github.com/matzehuels/hyperscene/pkg/session"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type nodeJSON struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Detail   string         `json:"detail,omitempty"`
	Kind     scene.NodeKind `json:"kind"`
	X        float64        `json:"x"` // Scene coordinates
	Y        float64        `json:"y"`
	Parent   string         `json:"parent,omitempty"`
	Visible  bool           `json:"visible"`
	Selected bool           `json:"selected"`
}

type edgeJSON struct {
	Source string          `json:"source"`
	Target string          `json:"target"`
	Dir    scene.Direction `json:"dir"`
	Kind   classify.Kind   `json:"kind"`
	Style  classify.Style  `json:"style"`
}

type sceneJSON struct {
	Version uint64     `json:"version"`
	Nodes   []nodeJSON `json:"nodes"`
	Edges   []edgeJSON `json:"edges"`
}

func sceneOf(reg *scene.Registry, version uint64) sceneJSON {
	out := sceneJSON{
		Version: version,
		Nodes:   make([]nodeJSON, 0, reg.Len()),
		Edges:   make([]edgeJSON, 0, reg.EdgeCount()),
	}
	for _, n := range reg.Nodes() {
		p := n.ScenePos()
		nj := nodeJSON{
			ID: n.ID, Label: n.Label, Detail: n.Detail, Kind: n.Kind,
			X: p.X, Y: p.Y, Visible: n.Visible, Selected: n.Selected,
		}
		if parent := n.Parent(); parent != nil {
			nj.Parent = parent.ID
		}
		out.Nodes = append(out.Nodes, nj)
	}
	for _, e := range reg.Edges() {
		out.Edges = append(out.Edges, edgeJSON{
			Source: e.Source.ID, Target: e.Target.ID, Dir: e.Dir, Kind: e.Kind, Style: e.Style,
		})
	}
	return out
}

type layoutJSON struct {
	Enabled             *bool    `json:"enabled,omitempty"`
	EquilibriumDistance *float64 `json:"equilibrium_distance,omitempty"`
}

func layoutOf(s *session.Session) layoutJSON {
	on, eq := s.LayoutEnabled(), s.EquilibriumDistance()
	return layoutJSON{Enabled: &on, EquilibriumDistance: &eq}
}

type filtersJSON struct {
	ShowClasses   *bool `json:"show_classes,omitempty"`
	ShowInstances *bool `json:"show_instances,omitempty"`
	ShowConcepts  *bool `json:"show_concepts,omitempty"`
}

func filtersOf(f reconcile.Filters) filtersJSON {
	return filtersJSON{ShowClasses: &f.ShowClasses, ShowInstances: &f.ShowInstances, ShowConcepts: &f.ShowConcepts}
}

// apply overlays the fields present in j onto f.
func (j filtersJSON) apply(f reconcile.Filters) reconcile.Filters {
	if j.ShowClasses != nil {
		f.ShowClasses = *j.ShowClasses
	}
	if j.ShowInstances != nil {
		f.ShowInstances = *j.ShowInstances
	}
	if j.ShowConcepts != nil {
		f.ShowConcepts = *j.ShowConcepts
	}
	return f
}

type conceptRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type relationRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Relation string `json:"relation"`
	Label    string `json:"label"`
}

type labelRequest struct {
	Label string `json:"label"`
}

type selectionJSON struct {
	IDs []string `json:"ids"`
}

type positionRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type idResponse struct {
	ID string `json:"id"`
}

type countResponse struct {
	Count int `json:"count"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes to HTTP status codes.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSnapshot,
		errors.ErrCodeInvalidPriority, errors.ErrCodeInvalidModel, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID:
		return http.StatusConflict
	case errors.ErrCodeBusy:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
