package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/render"
	"github.com/matzehuels/hyperscene/pkg/scene"
	"github.com/matzehuels/hyperscene/pkg/session"
)

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/scene", s.getScene)
		r.Get("/scene.dot", s.getDOT)
		r.Get("/scene.svg", s.getSVG)
		r.Get("/stats", s.getStats)

		r.Post("/concepts", s.createConcept)
		r.Post("/relations", s.createRelation)
		r.Patch("/elements/{id}", s.relabelElement)
		r.Delete("/elements/{id}", s.destroyElement)
		r.Put("/nodes/{id}/position", s.moveNode)

		r.Get("/selection", s.getSelection)
		r.Put("/selection", s.putSelection)
		r.Post("/selection/destroy", s.destroySelection)
		r.Post("/selection/relabel", s.relabelSelection)

		r.Get("/layout", s.getLayout)
		r.Put("/layout", s.putLayout)
		r.Get("/filters", s.getFilters)
		r.Put("/filters", s.putFilters)
		r.Post("/positions/save", s.savePositions)
		r.Post("/positions/restore", s.restorePositions)
	})
	return r
}

// respond runs fn on the loop and writes its result as JSON with status.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, fn func(*session.Session) (any, error)) {
	v, err := s.do(r.Context(), fn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, v)
}

func (s *Server) getScene(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return sceneOf(sess.Registry(), s.version), nil
	})
}

func (s *Server) dot(r *http.Request) (string, error) {
	detailed := r.URL.Query().Get("detailed") == "true"
	v, err := s.do(r.Context(), func(sess *session.Session) (any, error) {
		return render.ToDOT(sess.Registry(), render.Options{Detailed: detailed}), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// getSVG builds DOT on the loop and renders it off the loop.
func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := render.RenderSVG(r.Context(), dot, s.engine)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		st, ok := sess.Stats()
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "model does not report statistics")
		}
		return st, nil
	})
}

func (s *Server) createConcept(w http.ResponseWriter, r *http.Request) {
	var req conceptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, func(sess *session.Session) (any, error) {
		id, err := sess.Create(req.ID, req.Label)
		return idResponse{id}, err
	})
}

func (s *Server) createRelation(w http.ResponseWriter, r *http.Request) {
	var req relationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusCreated, func(sess *session.Session) (any, error) {
		id, err := sess.Connect(req.From, req.To, req.Relation, req.Label)
		return idResponse{id}, err
	})
}

func (s *Server) relabelElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req labelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return nil, sess.Relabel(id, req.Label)
	})
}

func (s *Server) destroyElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return nil, sess.Destroy(id)
	})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req positionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		p := scene.Vec{X: req.X, Y: req.Y}
		if !p.IsFinite() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "position must be finite")
		}
		if !sess.Move(id, p) {
			return nil, errors.New(errors.ErrCodeNotFound, "no node %q in scene", id)
		}
		return nil, nil
	})
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return selectionJSON{IDs: sess.Selection()}, nil
	})
}

// putSelection replaces the selection. Unknown ids are ignored.
func (s *Server) putSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionJSON
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		sess.ClearSelection()
		for _, id := range req.IDs {
			sess.Select(id)
		}
		return selectionJSON{IDs: sess.Selection()}, nil
	})
}

func (s *Server) destroySelection(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		n, err := sess.DestroySelected()
		return countResponse{n}, err
	})
}

func (s *Server) relabelSelection(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		n, err := sess.RelabelSelected(req.Label)
		return countResponse{n}, err
	})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return layoutOf(sess), nil
	})
}

func (s *Server) putLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutJSON
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.EquilibriumDistance != nil && !(*req.EquilibriumDistance > 0) {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "equilibrium_distance must be positive"))
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		if req.Enabled != nil {
			sess.SetLayoutEnabled(*req.Enabled)
		}
		if req.EquilibriumDistance != nil {
			sess.SetEquilibriumDistance(*req.EquilibriumDistance)
		}
		return layoutOf(sess), nil
	})
}

func (s *Server) getFilters(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		return filtersOf(sess.Filters()), nil
	})
}

func (s *Server) putFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersJSON
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		if err := sess.SetFilters(req.apply(sess.Filters())); err != nil {
			return nil, err
		}
		return filtersOf(sess.Filters()), nil
	})
}

func (s *Server) savePositions(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		if err := sess.SavePositions(r.Context()); err != nil {
			return nil, err
		}
		return countResponse{sess.Registry().Len()}, nil
	})
}

func (s *Server) restorePositions(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, func(sess *session.Session) (any, error) {
		n, err := sess.RestorePositions(r.Context())
		return countResponse{n}, err
	})
}
