package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"spacebio/internal/docstore"
	"spacebio/internal/domain"
	"spacebio/internal/service"
	"spacebio/internal/vectorstore"
)

// Server is a thin HTTP adapter over the QA service: request validation
// and JSON mapping only, no domain logic.
type Server struct {
	svc *service.QAService
	mux *http.ServeMux
}

func New(svc *service.QAService) *Server {
	s := &Server{svc: svc, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("GET /qa", s.handleQA)
	s.mux.HandleFunc("GET /search_metadata", s.handleStats)
	s.mux.HandleFunc("GET /paper/{id}", s.handlePaper)
	s.mux.HandleFunc("GET /paper_summarized/{id}", s.handlePaperSummary)
	s.mux.HandleFunc("POST /feedback", s.handleFeedback)
	return s
}

// ServeHTTP applies permissive CORS and dispatches to the route table.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.CorpusStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"num_passages": stats.TotalPassages,
	})
}

type searchResponse struct {
	Query   string                `json:"query"`
	K       int                   `json:"k"`
	Results []domain.SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	k, err := parseK(r, s.svc.DefaultK())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := s.svc.Search(query, k)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, K: k, Results: results})
}

func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	k, err := parseK(r, s.svc.AnswerK())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	answer, err := s.svc.AnswerQuestion(query, k)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CorpusStats())
}

func (s *Server) handlePaper(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Paper(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePaperSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.SummarizePaper(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Only a JSON object is a feedback entry; scalars and arrays are not.
	var entry map[string]json.RawMessage
	if err := json.Unmarshal(body, &entry); err != nil || entry == nil {
		writeError(w, http.StatusBadRequest, errors.New("body must be a JSON object"))
		return
	}
	if err := s.svc.Feedback(body); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseK(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return fallback, nil
	}
	k, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("k must be an integer")
	}
	return k, nil
}

// writeServiceError maps service errors onto HTTP statuses: invalid input
// is the client's fault, a missing paper is 404, anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyQuery), errors.Is(err, vectorstore.ErrInvalidK):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, docstore.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
