package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"kon.nect.sh/httprate"

	"go.ringkeeper.dev/ring/chord"
	"go.ringkeeper.dev/ring/util"
)

// Server exposes a LocalNode's inbound RPCs over /dht/v1/*.
type Server struct {
	node   *chord.LocalNode
	logger *zap.Logger
	router chi.Router
}

func NewServer(node *chord.LocalNode, logger *zap.Logger) *Server {
	s := &Server{node: node, logger: logger}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/dht/v1/successor", s.handleSuccessor)
	r.Get("/dht/v1/predecessor", s.handlePredecessor)
	r.Get("/dht/v1/successor/{id}", s.handleFindSuccessor)
	r.Get("/dht/v1/successors", s.handleSuccessors)

	r.With(httprate.LimitAll(10, time.Second), util.LimitBody(util.NotifyBodyLimit)).
		Post("/dht/v1/notify", s.handleNotify)

	r.With(httprate.LimitAll(10, time.Second), util.LimitBody(util.NotifyBodyLimit)).
		Post("/dht/v1/adopt-predecessor", s.handleAdoptPredecessor)

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleSuccessor(w http.ResponseWriter, r *http.Request) {
	successors, err := s.node.GetSuccessors(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if len(successors) == 0 {
		http.Error(w, "no successor", http.StatusNotFound)
		return
	}
	writeJSON(w, toResource(successors[0]))
}

func (s *Server) handlePredecessor(w http.ResponseWriter, r *http.Request) {
	pre, ok, err := s.node.GetPredecessor(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if !ok {
		http.Error(w, "no predecessor", http.StatusNotFound)
		return
	}
	writeJSON(w, toResource(pre))
}

func (s *Server) handleSuccessors(w http.ResponseWriter, r *http.Request) {
	successors, err := s.node.GetSuccessors(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	resources := make([]nodeResource, 0, len(successors))
	for _, n := range successors {
		resources = append(resources, toResource(n))
	}
	writeJSON(w, resources)
}

func (s *Server) handleFindSuccessor(w http.ResponseWriter, r *http.Request) {
	idHex := chi.URLParam(r, "id")
	target, err := chord.IdFromHex(idHex)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	hops := 0
	if h := r.URL.Query().Get("hops"); h != "" {
		if parsed, perr := strconv.Atoi(h); perr == nil && parsed >= 0 {
			hops = parsed
		}
	}

	gotHops, successor, err := s.node.FindSuccessor(r.Context(), target, hops)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, successorResponse{Hops: gotHops, Successor: toResource(successor)})
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	host, port, err := parseHostPort(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	candidate := chord.NewNodeRef(host, port)
	if err := s.node.Notify(r.Context(), candidate); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdoptPredecessor(w http.ResponseWriter, r *http.Request) {
	host, port, err := parseHostPort(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	candidate := chord.NewNodeRef(host, port)
	if err := s.node.AdoptPredecessor(r.Context(), candidate); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch err {
	case chord.ErrNodeNotStarted, chord.ErrNodeGone:
		status = http.StatusServiceUnavailable
	case chord.ErrLookupTooManyHops:
		status = http.StatusLoopDetected
	}
	logger.Debug("request failed", zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}

