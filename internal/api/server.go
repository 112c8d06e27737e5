// Package api provides the HTTP API server for Memoria.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/memoria-app/memoria/internal/core"
	"github.com/memoria-app/memoria/internal/embeddings"
	"github.com/memoria-app/memoria/internal/logging"
	"github.com/memoria-app/memoria/internal/pipeline"
	"github.com/memoria-app/memoria/internal/storage"
	"github.com/memoria-app/memoria/internal/transcript"
	"github.com/memoria-app/memoria/internal/vectors"
)

// Chat exports can be large but 20MB covers years of messages.
const maxTranscriptBytes = 20 << 20

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	pipeline *pipeline.Pipeline
	wsHub    *WebSocketHub

	// Stores
	persons  *storage.PersonStore
	memories *storage.MemoryStore
	analyses *storage.AnalysisStore

	// Optional semantic search; nil when Qdrant/Ollama are not running
	embedder *embeddings.Service
	vectors  *vectors.Store

	log *logging.Logger
}

// Config for the server
type Config struct {
	Port     int
	DB       *storage.DB
	Pipeline *pipeline.Pipeline
	Embedder *embeddings.Service
	Vectors  *vectors.Store
}

// New creates a new API server
func New(cfg Config) *Server {
	s := &Server{
		pipeline: cfg.Pipeline,
		persons:  storage.NewPersonStore(cfg.DB),
		memories: storage.NewMemoryStore(cfg.DB),
		analyses: storage.NewAnalysisStore(cfg.DB),
		embedder: cfg.Embedder,
		vectors:  cfg.Vectors,
		wsHub:    NewWebSocketHub(),
		log:      logging.WithField("component", "api"),
	}

	s.setupRouter()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRouter configures all routes
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/transcripts/parse", s.handleParseTranscript)
		r.Post("/transcripts/analyze", s.handleAnalyzeTranscript)

		r.Get("/persons", s.handleGetPersons)
		r.Get("/persons/{personID}", s.handleGetPerson)
		r.Get("/persons/{personID}/memories", s.handleGetPersonMemories)
		r.Get("/persons/{personID}/analysis", s.handleGetPersonAnalysis)
		r.Delete("/persons/{personID}", s.handleDeletePerson)

		r.Post("/memories/search", s.handleSearchMemories)
	})

	// WebSocket
	r.Get("/ws", s.handleWebSocket)

	s.router = r
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.log.Info("API server starting on http://localhost%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.wsHub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Broadcast sends a message to all WebSocket clients
func (s *Server) Broadcast(msgType string, data interface{}) {
	s.wsHub.Broadcast(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"vector_search": s.vectorSearchReady(),
	})
}

func (s *Server) handleParseTranscript(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text string `json:"text"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTranscriptBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.Text == "" {
		s.respondError(w, http.StatusBadRequest, "Transcript text required")
		return
	}

	t, err := transcript.Assemble(input.Text)
	if err != nil {
		if errors.Is(err, core.ErrFormatUnrecognized) {
			s.respondError(w, http.StatusUnprocessableEntity, "Transcript format not recognized")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_count":       t.TotalCount,
		"participants":      t.Participants,
		"messages_per_user": t.CountBySender(),
		"date_range":        t.DateRange,
	})
}

func (s *Server) handleAnalyzeTranscript(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text             string   `json:"text"`
		PersonName       string   `json:"person_name"`
		UserName         string   `json:"user_name"`
		Relationship     string   `json:"relationship"`
		Locale           string   `json:"locale"`
		DisallowedTopics []string `json:"disallowed_topics"`
		SportsTeam       string   `json:"sports_team"`
		ReligiousCues    []string `json:"religious_cues"`
		ConsentConfirmed bool     `json:"consent_confirmed"`
		DeepAnalysis     bool     `json:"deep_analysis"`
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxTranscriptBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.Text == "" {
		s.respondError(w, http.StatusBadRequest, "Transcript text required")
		return
	}

	result, err := s.pipeline.Run(r.Context(), pipeline.Input{
		TranscriptText:     input.Text,
		TargetPersonName:   input.PersonName,
		UserName:           input.UserName,
		RelationshipToUser: input.Relationship,
		Locale:             input.Locale,
		DisallowedTopics:   input.DisallowedTopics,
		SportsTeam:         input.SportsTeam,
		ReligiousCues:      input.ReligiousCues,
		ConsentConfirmed:   input.ConsentConfirmed,
		DeepAnalysis:       input.DeepAnalysis,
	})
	if err != nil {
		s.Broadcast("analysis.failed", map[string]string{"error": err.Error()})
		switch {
		case errors.Is(err, core.ErrFormatUnrecognized):
			s.respondError(w, http.StatusUnprocessableEntity, "Transcript format not recognized")
		case errors.Is(err, core.ErrPersonNotIdentified):
			s.respondError(w, http.StatusUnprocessableEntity, "Target person could not be identified")
		default:
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	person, err := s.persons.GetOrCreate(result.TargetName, input.Relationship)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Replace drops the old rows, so their vector points go first.
	s.purgeVectors(r.Context(), person.ID)

	records, err := s.memories.ReplaceForPerson(person.ID, result.Memories)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.analyses.Save(person.ID, result.Analysis); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Best effort: index memories for semantic search in the background.
	if s.vectorSearchReady() {
		go s.indexMemories(records)
	}

	s.Broadcast("analysis.completed", map[string]interface{}{
		"person_id":   person.ID,
		"person_name": person.Name,
		"confidence":  result.Analysis.ConfidenceOverall,
	})

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"person":       person,
		"analysis":     result.Analysis,
		"memory_count": len(records),
	})
}

func (s *Server) handleGetPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := s.persons.GetAll()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if persons == nil {
		persons = []*core.Person{}
	}
	s.respondJSON(w, http.StatusOK, persons)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")
	person, err := s.persons.GetByID(personID)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, person)
}

func (s *Server) handleGetPersonMemories(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")
	if _, err := s.persons.GetByID(personID); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	records, err := s.memories.GetByPerson(personID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*core.MemoryRecord{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetPersonAnalysis(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")
	result, err := s.analyses.GetLatest(personID)
	if err != nil {
		if errors.Is(err, core.ErrAnalysisNotFound) {
			s.respondError(w, http.StatusNotFound, "No analysis stored for this person")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "personID")
	// The SQL cascade removes the memory rows; the vector points have no
	// cascade, so they go first.
	s.purgeVectors(r.Context(), personID)
	if err := s.persons.Delete(personID); err != nil {
		if errors.Is(err, core.ErrPersonNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSearchMemories(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Query    string `json:"query"`
		PersonID string `json:"person_id"`
		Limit    int    `json:"limit"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if input.Query == "" {
		s.respondError(w, http.StatusBadRequest, "Query required")
		return
	}
	if input.Limit <= 0 {
		input.Limit = 10
	}

	if s.vectorSearchReady() {
		results, err := s.semanticSearch(r.Context(), input.Query, input.PersonID, input.Limit)
		if err == nil {
			s.respondJSON(w, http.StatusOK, results)
			return
		}
		s.log.Warn("semantic search failed, falling back to substring: %v", err)
	}

	records, err := s.memories.Search(input.Query, input.Limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*core.MemoryRecord{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

// --- Semantic search plumbing ---

func (s *Server) vectorSearchReady() bool {
	return s.embedder != nil && s.vectors != nil
}

// purgeVectors removes the Qdrant points behind a person's stored
// memories. Best effort: a purge failure only leaves orphaned points
// that semanticSearch already tolerates.
func (s *Server) purgeVectors(ctx context.Context, personID string) {
	if s.vectors == nil {
		return
	}
	ids, err := s.memories.EmbeddingIDsForPerson(personID)
	if err != nil {
		s.log.Warn("collecting embedding IDs for %s failed: %v", personID, err)
		return
	}
	if len(ids) == 0 {
		return
	}
	if err := s.vectors.Delete(ctx, ids); err != nil {
		s.log.Warn("purging %d vector points for %s failed: %v", len(ids), personID, err)
	}
}

func (s *Server) indexMemories(records []*core.MemoryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	contents := make([]string, len(records))
	for i, m := range records {
		contents[i] = m.Content
	}
	vecs, err := s.embedder.EmbedBatch(ctx, contents)
	if err != nil {
		s.log.Warn("embedding %d memories failed: %v", len(records), err)
		return
	}

	points := make([]vectors.Point, len(records))
	for i, m := range records {
		points[i] = vectors.Point{
			ID:     m.ID,
			Vector: vecs[i],
			Payload: map[string]interface{}{
				"person_id": m.PersonID,
				"content":   m.Content,
			},
		}
	}

	if err := s.vectors.Upsert(ctx, points); err != nil {
		s.log.Warn("vector upsert failed: %v", err)
		return
	}

	for _, m := range records {
		if err := s.memories.SetEmbeddingID(m.ID, m.ID); err != nil {
			s.log.Warn("linking embedding for %s failed: %v", m.ID, err)
		}
	}
}

func (s *Server) semanticSearch(ctx context.Context, query, personID string, limit int) ([]*core.MemoryRecord, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.vectors.Search(ctx, vec, uint64(limit), personID)
	if err != nil {
		return nil, err
	}

	records := make([]*core.MemoryRecord, 0, len(hits))
	for _, hit := range hits {
		m, err := s.memories.GetByID(hit.ID)
		if err != nil {
			continue // Point without a row, skip
		}
		records = append(records, m)
	}
	return records, nil
}
