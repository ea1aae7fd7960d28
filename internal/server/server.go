package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"crusty-text/internal/model"
	"crusty-text/internal/store"
	"crusty-text/internal/summary"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	store    store.Store
	logger   *zap.Logger
	router   *mux.Router
	server   *http.Server
	topWords int
}

func NewServer(st store.Store, logger *zap.Logger, topWords int) *Server {
	s := &Server{
		store:    st,
		logger:   logger,
		router:   mux.NewRouter(),
		topWords: topWords,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/documents", s.handleList).Methods("GET")
	s.router.HandleFunc("/documents", s.handleAdd).Methods("POST")
	s.router.HandleFunc("/documents/{id}", s.handleGet).Methods("GET")
	s.router.HandleFunc("/documents/{id}/words", s.handleWords).Methods("GET")
	s.router.HandleFunc("/documents/{id}/digest", s.handleDigest).Methods("GET")
}

// ServeHTTP lets the server be mounted or tested without listening.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context(), 50)
	if err != nil {
		s.logger.Error("Failed to list documents", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

// handleAdd queues a document. A "url" form value queues a page to fetch;
// a "name" value queues a body already stored under that name.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	switch {
	case r.FormValue("url") != "":
		doc = model.NewURLDocument(r.FormValue("url"))
	case r.FormValue("name") != "":
		doc = model.NewDocument(r.FormValue("name"))
	default:
		http.Error(w, "url or name is required", http.StatusBadRequest)
		return
	}

	if err := s.store.Save(r.Context(), &doc); err != nil {
		s.logger.Error("Failed to queue document", zap.Error(err))
		http.Error(w, "Failed to save", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusAccepted, doc)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*model.Document, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}

	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		s.logger.Error("Failed to load document", zap.String("id", id.String()), zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return nil, false
	}
	return doc, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	top := s.topWords
	if q := r.URL.Query().Get("top"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			http.Error(w, "Invalid top", http.StatusBadRequest)
			return
		}
		top = n
	}

	words, err := s.store.Words(r.Context(), doc.ID)
	if err != nil {
		s.logger.Error("Failed to load word counts", zap.Error(err))
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     doc.ID,
		"status": doc.Status,
		"total":  words.Total(),
		"words":  words.Top(top),
	})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.lookup(w, r)
	if !ok {
		return
	}

	page := summary.Page{URL: doc.URL, Title: doc.Title, Excerpt: doc.Excerpt}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"author":       page.AuthorTag(),
		"digest":       summary.Digest(page),
		"notification": summary.Notify(page),
	})
}
