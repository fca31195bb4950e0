package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"hof-narrator/internal/player"
	"hof-narrator/pkg/logging/logging"

	"go.uber.org/zap"
)

// minRequestBytes is the smallest raw body that can possibly hold a player
// contract; anything shorter is rejected before any cache or upstream work.
const minRequestBytes = 20

const tooShortMessage = "Message request does not have enough information in the body request. Need the player info contract."

// Generator produces narrative text for a player query. Implemented by the
// orchestrator; mocked in tests.
type Generator interface {
	Generate(ctx context.Context, q player.Query) (string, error)
}

// HallOfFameHandler serves the single narrative endpoint: GET for the health
// report, POST to generate.
type HallOfFameHandler struct {
	Narrator Generator
	Health   HealthReporter
}

func NewHallOfFameHandler(narrator Generator, health HealthReporter) *HallOfFameHandler {
	return &HallOfFameHandler{
		Narrator: narrator,
		Health:   health,
	}
}

// Generate handles POST /api/hall-of-fame-narrative.
func (h *HallOfFameHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("failed to read request body", zap.Error(err))
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	if len(body) < minRequestBytes {
		logger.Info("request body below minimum size",
			zap.Int("bytes", len(body)),
			zap.Int("minimum", minRequestBytes),
		)
		http.Error(w, tooShortMessage, http.StatusBadRequest)
		return
	}

	var q player.Query
	if err := json.Unmarshal(body, &q); err != nil {
		logger.Warn("invalid request", zap.Error(err))
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	text, err := h.Narrator.Generate(ctx, q)
	if err != nil {
		// The response stays generic; logs carry which upstream failed.
		logger.Error("narrative generation failed",
			zap.String("player", q.FullPlayerName),
			zap.Error(err),
			zap.Duration("total_latency", time.Since(start)),
		)
		http.Error(w, "narrative generation failed", http.StatusBadGateway)
		return
	}

	logger.Info("narrative served",
		zap.String("player", q.FullPlayerName),
		zap.Int("bytes", len(text)),
		zap.Duration("total_latency", time.Since(start)),
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
