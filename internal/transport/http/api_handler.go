package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"quizzy/internal/app"
	"quizzy/internal/domain"
	"quizzy/internal/questions"
	"quizzy/internal/share"
)

// APIHandler serves the read-only JSON endpoints.
type APIHandler struct {
	service *app.QuizService
	log     zerolog.Logger
}

func NewAPIHandler(service *app.QuizService, log zerolog.Logger) *APIHandler {
	return &APIHandler{service: service, log: log.With().Str("component", "api").Logger()}
}

type shareResponse struct {
	Trusted bool         `json:"trusted"`
	Claim   *share.Claim `json:"claim,omitempty"`
	Label   string       `json:"label,omitempty"`
}

// ServeShare verifies the share link carried in the query. The answer is 200
// either way; untrusted links only report trusted=false.
func (h *APIHandler) ServeShare(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")
	claim, err := h.service.OpenShareLink(r.Context(), profile, r.URL.RawQuery)
	if err != nil {
		writeJSON(w, http.StatusOK, shareResponse{Trusted: false})
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Trusted: true, Claim: &claim, Label: questions.Label(claim.Category)})
}

type statsResponse struct {
	Stats   domain.UserStats `json:"stats"`
	Summary app.Summary      `json:"summary"`
}

func (h *APIHandler) ServeStats(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")
	stats := h.service.Stats(r.Context(), profile)
	writeJSON(w, http.StatusOK, statsResponse{
		Stats:   stats,
		Summary: app.Summarize(stats, h.service.Categories(r.Context(), profile)),
	})
}

func (h *APIHandler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")
	if category := r.URL.Query().Get("category"); category != "" {
		writeJSON(w, http.StatusOK, h.service.HistoryByCategory(r.Context(), profile, category))
		return
	}
	writeJSON(w, http.StatusOK, h.service.History(r.Context(), profile))
}

// NewMux registers every route.
func NewMux(service *app.QuizService, log zerolog.Logger) *http.ServeMux {
	ws := NewWSHandler(service, log)
	api := NewAPIHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("/share", api.ServeShare)
	mux.HandleFunc("/stats", api.ServeStats)
	mux.HandleFunc("/history", api.ServeHistory)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
