// Package web exposes the engine's public operations as a JSON HTTP API.
// It is the interface boundary for the application layer; no presentation
// logic lives here.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/calumbell/wordpace/internal/domain"
	"github.com/calumbell/wordpace/internal/lookup"
	"github.com/calumbell/wordpace/internal/metrics"
	"github.com/calumbell/wordpace/internal/policy"
	"github.com/calumbell/wordpace/internal/scheduler"
)

// Server holds the dependencies for the HTTP API.
type Server struct {
	engine  *scheduler.Engine
	policy  *policy.Policy
	lookup  *lookup.Lookup
	metrics *metrics.Metrics
	router  *http.ServeMux
}

// NewServer creates and configures a new server. metricsHandler serves the
// registry the metrics were created on.
func NewServer(engine *scheduler.Engine, pol *policy.Policy, look *lookup.Lookup, m *metrics.Metrics, metricsHandler http.Handler) *Server {
	s := &Server{
		engine:  engine,
		policy:  pol,
		lookup:  look,
		metrics: m,
		router:  http.NewServeMux(),
	}
	s.routes(metricsHandler)
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes(metricsHandler http.Handler) {
	s.router.HandleFunc("/next", s.handleGetNext())
	s.router.HandleFunc("/words/", s.handleWordAction())
	s.router.HandleFunc("/examples", s.handleGetExamples())
	s.router.HandleFunc("/progress", s.handleGetProgress())
	s.router.Handle("/metrics", metricsHandler)
}

// entryJSON is the wire shape of a vocabulary entry.
type entryJSON struct {
	Word         string     `json:"word"`
	Level        string     `json:"level"`
	Translation  string     `json:"translation,omitempty"`
	Definition   string     `json:"definition,omitempty"`
	Example      string     `json:"example,omitempty"`
	PartOfSpeech string     `json:"part_of_speech,omitempty"`
	Forms        []string   `json:"forms,omitempty"`
	Synonyms     []string   `json:"synonyms,omitempty"`
	Antonyms     []string   `json:"antonyms,omitempty"`
	Collocations []string   `json:"collocations,omitempty"`
	IsKnown      bool       `json:"is_known"`
	Repetitions  int        `json:"repetitions"`
	LastReviewed *time.Time `json:"last_reviewed_at,omitempty"`
}

func toEntryJSON(e *domain.VocabularyEntry) *entryJSON {
	if e == nil {
		return nil
	}
	return &entryJSON{
		Word:         e.Word,
		Level:        string(e.Level),
		Translation:  e.Translation,
		Definition:   e.Definition,
		Example:      e.Example,
		PartOfSpeech: e.PartOfSpeech,
		Forms:        e.Forms,
		Synonyms:     e.Synonyms,
		Antonyms:     e.Antonyms,
		Collocations: e.Collocations,
		IsKnown:      e.IsKnown,
		Repetitions:  e.Repetitions,
		LastReviewed: e.LastReviewedAt,
	}
}

// handleGetNext selects the next entry. An empty pool answers with a null
// entry and a terminal flag so the caller can tell "all content finished"
// from "retry with a smaller exclusion list".
func (s *Server) handleGetNext() http.HandlerFunc {
	type response struct {
		Entry    *entryJSON `json:"entry"`
		Terminal bool       `json:"terminal"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var excluding []string
		for _, raw := range r.URL.Query()["exclude"] {
			for _, key := range strings.Split(raw, ",") {
				if key = strings.TrimSpace(key); key != "" {
					excluding = append(excluding, key)
				}
			}
		}

		entry, err := s.engine.SelectNext(r.Context(), excluding)
		if err != nil {
			slog.Error("Error selecting next word", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if entry == nil {
			levels, settings, err := s.policy.TargetLevels(r.Context())
			if err != nil {
				slog.Error("Error loading target levels", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			s.metrics.SelectionsTotal.WithLabelValues("none").Inc()
			writeJSON(w, http.StatusOK, response{
				Terminal: len(levels) == 0 || settings.AllCompleted(),
			})
			return
		}

		pool := "review"
		if entry.Repetitions == 0 {
			pool = "new"
		}
		s.metrics.SelectionsTotal.WithLabelValues(pool).Inc()
		writeJSON(w, http.StatusOK, response{Entry: toEntryJSON(entry)})
	}
}

// handleWordAction dispatches POST /words/{key}/exposure and
// POST /words/{key}/known.
func (s *Server) handleWordAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/words/")
		key, action, ok := strings.Cut(rest, "/")
		if !ok || key == "" {
			http.Error(w, "Invalid word path", http.StatusBadRequest)
			return
		}

		var err error
		switch action {
		case "exposure":
			err = s.engine.RecordExposure(r.Context(), key)
			if err == nil {
				s.metrics.ExposuresTotal.Inc()
			}
		case "known":
			err = s.engine.MarkKnown(r.Context(), key)
			if err == nil {
				s.metrics.MasteredTotal.Inc()
			}
		default:
			http.Error(w, "Unknown action", http.StatusBadRequest)
			return
		}
		if err != nil {
			slog.Error("Error updating word", "word", key, "action", action, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// sentenceJSON is the wire shape of a corpus sentence pair.
type sentenceJSON struct {
	SourceID   int    `json:"source_id"`
	TargetID   int    `json:"target_id"`
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
	Tier       string `json:"tier"`
}

// statsJSON is the wire shape of a pool snapshot.
type statsJSON struct {
	TotalWords    int `json:"total_words"`
	KnownWords    int `json:"known_words"`
	WordsInReview int `json:"words_in_review"`
}

// maxExampleLimit caps one /examples request. An unclamped limit would
// let a single request drag the whole corpus through the over-fetch.
const maxExampleLimit = 100

// handleGetExamples returns bounded whole-word example sentences.
func (s *Server) handleGetExamples() http.HandlerFunc {
	type response struct {
		Word      string         `json:"word"`
		Sentences []sentenceJSON `json:"sentences"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		word := r.URL.Query().Get("word")
		if word == "" {
			http.Error(w, "Missing word parameter", http.StatusBadRequest)
			return
		}
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			if n > maxExampleLimit {
				n = maxExampleLimit
			}
			limit = n
		}

		sentences, err := s.lookup.Examples(r.Context(), word, limit)
		if err != nil {
			slog.Error("Error searching examples", "word", word, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.metrics.SearchesTotal.Inc()
		out := make([]sentenceJSON, 0, len(sentences))
		for _, p := range sentences {
			out = append(out, sentenceJSON{
				SourceID:   p.SourceID,
				TargetID:   p.TargetID,
				SourceText: p.SourceText,
				TargetText: p.TargetText,
				Tier:       string(p.Tier),
			})
		}
		writeJSON(w, http.StatusOK, response{Word: domain.NormalizeWord(word), Sentences: out})
	}
}

// handleGetProgress reports the settings aggregates and the pool snapshot.
func (s *Server) handleGetProgress() http.HandlerFunc {
	type response struct {
		Mode           string                `json:"mode"`
		CurrentLevel   string                `json:"current_level"`
		TargetLevels   []domain.Level        `json:"target_levels"`
		LevelCompleted map[domain.Level]bool `json:"level_completed"`
		TotalPerLevel  map[domain.Level]int  `json:"total_per_level"`
		KnownPerLevel  map[domain.Level]int  `json:"known_per_level"`
		Stats          statsJSON             `json:"stats"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		settings, err := s.policy.Settings(r.Context())
		if err != nil {
			slog.Error("Error loading settings", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		stats, err := s.engine.Stats(r.Context())
		if err != nil {
			slog.Error("Error computing stats", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.metrics.WordsInReview.Set(float64(stats.WordsInReview))

		writeJSON(w, http.StatusOK, response{
			Mode:           string(settings.Mode),
			CurrentLevel:   string(settings.CurrentLevel),
			TargetLevels:   settings.TargetLevels,
			LevelCompleted: settings.LevelCompleted,
			TotalPerLevel:  settings.TotalPerLevel,
			KnownPerLevel:  settings.KnownPerLevel,
			Stats: statsJSON{
				TotalWords:    stats.TotalWords,
				KnownWords:    stats.KnownWords,
				WordsInReview: stats.WordsInReview,
			},
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}
