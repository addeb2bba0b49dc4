package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"svcboard/internal/catalog"
	"svcboard/internal/filter"
	"svcboard/internal/model"
)

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, s.ctrl.View())
}

type queryRequest struct {
	Search   string  `json:"search"`
	Selector string  `json:"selector"`
	GroupBy  *string `json:"group_by,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		sendMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}
	q := filter.Query{Search: req.Search, Selector: req.Selector}.Normalized()
	if !filter.Valid(q.Selector) {
		sendMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown selector %q", q.Selector))
		return
	}
	if req.GroupBy != nil {
		by, ok := catalog.ParseGroupBy(*req.GroupBy)
		if !ok {
			sendMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown group_by %q", *req.GroupBy))
			return
		}
		s.ctrl.SetGroupBy(by)
	}
	s.ctrl.SetQuery(q)
	sendSuccess(w, s.ctrl.View())
}

// handleRefresh always answers with the view; a failed refresh shows up as
// its banner.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Refresh(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("refresh requested over http failed")
	}
	sendSuccess(w, s.ctrl.View())
}

func (s *Server) handleDismissBanner(w http.ResponseWriter, r *http.Request) {
	s.ctrl.DismissBanner()
	sendSuccess(w, s.ctrl.View())
}

func (s *Server) handleServiceAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch verb := chi.URLParam(r, "action"); verb {
	case "dismiss":
		s.ctrl.DismissRow(id)
	case "exclude":
		if _, err := s.ctrl.ToggleExcluded(id); err != nil {
			sendError(w, err)
			return
		}
	default:
		action, ok := model.ParseAction(verb)
		if !ok {
			sendMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", verb))
			return
		}
		if err := s.ctrl.Do(r.Context(), id, action); err != nil {
			sendError(w, err)
			return
		}
	}
	sendSuccess(w, s.ctrl.View())
}

func (s *Server) handleGroupAction(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	switch verb := chi.URLParam(r, "action"); verb {
	case "toggle":
		s.ctrl.ToggleGroup(key)
		sendSuccess(w, s.ctrl.View())
	case "run":
		action, res, err := s.ctrl.RunGroup(r.Context(), key)
		if err != nil {
			sendError(w, err)
			return
		}
		sendSuccess(w, map[string]any{"action": action, "result": res})
	default:
		sendMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown group action %q", verb))
	}
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var (
		verb = chi.URLParam(r, "action")
		err  error
	)
	switch verb {
	case "start":
		res, e := s.ctrl.StartAll(r.Context())
		if err = e; err == nil {
			sendSuccess(w, res)
		}
	case "stop":
		res, e := s.ctrl.StopAll(r.Context())
		if err = e; err == nil {
			sendSuccess(w, res)
		}
	default:
		sendMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown bulk action %q", verb))
		return
	}
	if err != nil {
		sendError(w, err)
	}
}
