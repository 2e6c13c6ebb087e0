package api

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinemai/shared/catalogue"
	"cinemai/shared/discovery"
	"cinemai/shared/logging"
	"cinemai/shared/media"
	"cinemai/shared/storage"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type discoverRequest struct {
	Query  string `json:"query" validate:"required"`
	Replay bool   `json:"replay"`
}

type regenerateRequest struct {
	Query   string   `json:"query"`
	Exclude []string `json:"exclude"`
}

type watchLaterRequest struct {
	Title  string `json:"title" validate:"required"`
	Source string `json:"source" validate:"omitempty,oneof=catalogue recommendation"`
}

type explainRequest struct {
	Title   string `json:"title" validate:"required"`
	Context string `json:"context"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]apiError{"error": {Code: code, Message: message}})
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "could not read request body")
		return false
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON")
			return false
		}
	}
	if err := s.validate.Struct(v); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	return true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Orchestrator.Snapshot())
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req discoverRequest
	if !s.decode(w, r, &req) {
		return
	}
	start := time.Now()
	snap := s.deps.Orchestrator.Search(r.Context(), req.Query, discovery.SearchOptions{Replay: req.Replay})
	s.recordOutcome("search", snap, time.Since(start))
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		current := s.deps.Orchestrator.Snapshot()
		req.Query = current.Query
		if req.Exclude == nil {
			req.Exclude = current.Result.Titles()
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusConflict, "NO_SEARCH", "nothing to regenerate yet")
		return
	}

	start := time.Now()
	snap := s.deps.Orchestrator.Regenerate(r.Context(), req.Query, req.Exclude)
	s.recordOutcome("regenerate", snap, time.Since(start))
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) recordOutcome(op string, snap discovery.Snapshot, took time.Duration) {
	if snap.Superseded {
		return
	}
	if snap.Err != nil {
		s.deps.Monitor.RecordPartialFailure(snap.Err, took)
		return
	}
	s.deps.Monitor.RecordSuccess(op+" "+string(snap.State)+" for "+snap.Query, took)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"entries": s.historyEntries()})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.History != nil {
		if err := s.deps.History.Clear(r.Context()); err != nil {
			logging.Error().Err(err).Msg("failed to clear history")
			respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "could not clear history")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveHistory(w http.ResponseWriter, r *http.Request) {
	query := chi.URLParam(r, "query")
	if unescaped, err := url.PathUnescape(query); err == nil {
		query = unescaped
	}
	if s.deps.History != nil {
		if err := s.deps.History.Remove(r.Context(), query); err != nil {
			logging.Error().Err(err).Msg("failed to remove history entry")
			respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "could not update history")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"entries": s.historyEntries()})
}

func (s *Server) historyEntries() []string {
	if s.deps.History == nil {
		return []string{}
	}
	return s.deps.History.Entries()
}

func (s *Server) handleWatchLater(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"items": s.deps.WatchLater.Items()})
}

func (s *Server) handleToggleWatchLater(w http.ResponseWriter, r *http.Request) {
	var req watchLaterRequest
	if !s.decode(w, r, &req) {
		return
	}

	candidate, ok := s.findCandidate(req.Title, req.Source)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no catalogue title or recommendation named "+req.Title)
		return
	}

	saved, err := s.deps.WatchLater.Toggle(r.Context(), candidate)
	if err != nil {
		// The in-memory set changed even if the snapshot did not.
		logging.Warn().Err(err).Msg("failed to persist watch later list")
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"title": candidate.SavedItem().Title,
		"saved": saved,
	})
}

// findCandidate looks in the visible recommendations first, then the
// catalogue, unless source narrows it to one of them.
func (s *Server) findCandidate(title, source string) (storage.Candidate, bool) {
	if source != "catalogue" {
		if result := s.deps.Orchestrator.Snapshot().Result; result != nil {
			for _, rec := range result.Recommendations {
				if rec.Title == title {
					return storage.RecommendationCandidate{Recommendation: rec}, true
				}
			}
		}
	}
	if source != "recommendation" {
		if rec, ok := catalogue.Find(s.deps.Catalogue, title); ok {
			return storage.CatalogueCandidate{Record: rec}, true
		}
	}
	return nil, false
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	rec, ok := catalogue.Featured(s.deps.Catalogue, nil)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no featured title available")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"record":   rec,
		"backdrop": media.HeroFallback(rec.Title),
	})
}

func (s *Server) handleTrailer(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	link := r.URL.Query().Get("url")
	if title == "" && link == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "title or url is required")
		return
	}

	shown := s.deps.Orchestrator.Snapshot().Result
	id, ok := s.deps.Trailers.Resolve(r.Context(), title, link, shown)
	if !ok {
		respondError(w, http.StatusNotFound, "NO_TRAILER", "no playable trailer found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":        id,
		"embed_url": media.EmbedURL(id),
		"watch_url": media.WatchURL(id),
	})
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.deps.Assistant == nil {
		respondJSON(w, http.StatusOK, map[string]string{"explanation": discovery.ExplainFallback})
		return
	}
	text := discovery.ExplainMatch(r.Context(), s.deps.Assistant, req.Title, req.Context)
	respondJSON(w, http.StatusOK, map[string]string{"explanation": text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decode(w, r, &req) {
		return
	}
	if s.chat == nil {
		respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "chat assistant is not configured")
		return
	}
	reply, ok := s.chat.Send(r.Context(), req.Message)
	if !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "message must not be blank")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"reply":    reply,
		"messages": s.chat.Messages(),
	})
}
