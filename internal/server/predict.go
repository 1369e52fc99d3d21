package server

import (
	"encoding/json"
	"net/http"

	"github.com/lox/triplestack/internal/bot"
	"github.com/lox/triplestack/internal/game"
	"github.com/lox/triplestack/internal/randutil"
)

// PredictRequest is the board a client asks for a hint on. Only the fields
// a strategy reads need to be present.
type PredictRequest struct {
	Nodes         []game.CardView `json:"nodes"`
	SelectedNodes []game.CardView `json:"selectedNodes,omitempty"`
}

// PredictNode identifies the suggested card.
type PredictNode struct {
	ID   string `json:"id"`
	Type int    `json:"type"`
}

// PredictResponse is returned when a card can be suggested.
type PredictResponse struct {
	Node PredictNode `json:"node"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlePredict suggests the next card to select. The strategy defaults to
// the configured hint strategy and may be overridden with ?strategy=.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	name := r.URL.Query().Get("strategy")
	if name == "" {
		name = s.cfg.HintStrategy
	}
	strategy, err := bot.New(name, randutil.New(randutil.Seed(0)), s.cfg.Logger)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Debug("Bad predict request", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	snap := game.Snapshot{
		Status:        game.StatusPlaying,
		Nodes:         req.Nodes,
		SelectedNodes: req.SelectedNodes,
	}
	move := strategy.Next(snap)
	if move.Kind != bot.Select {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No clickable nodes available"})
		return
	}

	s.logger.Debug("Predicted move", "strategy", strategy.Name(), "card", move.CardID, "type", move.Type)
	writeJSON(w, http.StatusOK, PredictResponse{Node: PredictNode{ID: move.CardID, Type: move.Type}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
