package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/LSUDOKO/DeleGator.AI/internal/config"
	"github.com/LSUDOKO/DeleGator.AI/internal/observability/metrics"
	"github.com/LSUDOKO/DeleGator.AI/internal/queue"
	"github.com/LSUDOKO/DeleGator.AI/internal/types"
)

const secretHeader = "X-Envio-Secret"

// Server accepts relayed events from the indexer and turns them into
// prioritized queue jobs.
type Server struct {
	cfg        *config.WebhookConfig
	queue      queue.Client
	httpServer *http.Server
}

// eventRequest is the payload relayed for each processed chain event.
type eventRequest struct {
	ChainID         uint64         `json:"chainId"`
	EventName       string         `json:"eventName"`
	BlockNumber     string         `json:"blockNumber"`
	TransactionHash string         `json:"transactionHash"`
	LogIndex        uint64         `json:"logIndex"`
	Data            map[string]any `json:"data"`
}

func New(cfg *config.WebhookConfig, q queue.Client) *Server {
	s := &Server{
		cfg:   cfg,
		queue: q,
	}

	r := chi.NewRouter()
	r.Post("/indexer/webhook", s.instrument("/indexer/webhook", s.handleWebhook))
	r.Post("/indexer/health", s.instrument("/indexer/health", s.handleHealth))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout:      30 * time.Second,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           r,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Str("address", s.httpServer.Addr).Msg("Starting webhook server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		var req eventRequest
		// Best effort decode so the rejection log carries the tx hash.
		_ = json.NewDecoder(r.Body).Decode(&req)
		log.Ctx(r.Context()).Warn().
			Str("tx_hash", req.TransactionHash).
			Msg("Rejected webhook request with invalid secret")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EventName == "" || req.TransactionHash == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	blockNumber, ok := sdkmath.NewIntFromString(req.BlockNumber)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid block number")
		return
	}

	eventType := types.EventType(req.EventName)
	job := &queue.Job{
		ChainID:         req.ChainID,
		EventName:       req.EventName,
		BlockNumber:     blockNumber,
		TransactionHash: req.TransactionHash,
		LogIndex:        req.LogIndex,
		Data:            req.Data,
		Priority:        types.EventPriority(eventType),
		Retry:           queue.DefaultRetryPolicy(),
	}

	if err := s.queue.Enqueue(r.Context(), job); err != nil {
		log.Ctx(r.Context()).Error().
			Err(err).
			Str("event_name", req.EventName).
			Str("tx_hash", req.TransactionHash).
			Msg("Failed to enqueue event job")
		writeError(w, http.StatusInternalServerError, "Failed to queue event")
		return
	}

	log.Ctx(r.Context()).Info().
		Str("event_name", req.EventName).
		Uint64("chain_id", req.ChainID).
		Uint8("priority", job.Priority).
		Msg(fmt.Sprintf("Enqueued %s from chain %d", req.EventName, req.ChainID))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Event queued for processing",
	})
}

// handleHealth is unauthenticated so monitoring can read queue depth
// without holding the webhook secret.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	counts, err := s.queue.JobCounts(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to read queue counts")
		writeError(w, http.StatusInternalServerError, "Failed to read queue state")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"queue": map[string]int64{
			"waiting":   counts.Waiting,
			"active":    counts.Active,
			"completed": counts.Completed,
			"failed":    counts.Failed,
		},
	})
}

func (s *Server) authorized(r *http.Request) bool {
	secret := r.Header.Get(secretHeader)
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.Secret)) == 1
}

// statusRecorder captures the response code for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.RecordWebhookRequestDuration(time.Since(start), path, rec.status)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
