package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/livegame-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/livegame-service/repo"
)

// Repo define as operações de persistência de previsões usadas pelo handler
type Repo interface {
	UpsertEntry(ctx context.Context, matchID, playerID string, predHome, predAway int, answers []repo.BonusAnswer) (*repo.Entry, error)
	ApplyMidtimeEdit(ctx context.Context, matchID, playerID string, predHome, predAway int) (*repo.Entry, error)
	ListByPlayer(ctx context.Context, playerID string) ([]repo.Entry, error)
	GetMatch(ctx context.Context, matchID string) (*repo.Match, error)
	ListMatches(ctx context.Context) ([]repo.Match, error)
}

// Phases consulta a fase da partida no cache (gravada pelo match-state-worker)
type Phases interface {
	CanPredict(ctx context.Context, matchID string) (bool, error)
	EditWindowOpen(ctx context.Context, matchID string) (bool, error)
}

// ScoreCache guarda snapshots de partida com TTL curto
type ScoreCache interface {
	GetScore(ctx context.Context, matchID string, dst any) (bool, error)
	SetScore(ctx context.Context, matchID string, v any, ttl time.Duration) error
}

// WSHandler é o ponto de entrada do hub de placares ao vivo
type WSHandler interface {
	HandleWS(w http.ResponseWriter, r *http.Request)
}

// API expõe os endpoints REST de previsões e partidas ao vivo
type API struct {
	Log    *zap.Logger
	Repo   Repo
	Phases Phases
	Cache  ScoreCache
	Hub    WSHandler
}

// Router retorna o roteador HTTP com os endpoints REST e o WebSocket
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/live/predictions", a.createPrediction)    // cria/sobrescreve antes do jogo
	r.Post("/live/predictions/edit", a.editPrediction) // edição única em jogo
	r.Get("/live/entries", a.listEntries)
	r.Get("/live/matches", a.listMatches)
	r.Get("/live/matches/{id}", a.getMatch)
	if a.Hub != nil {
		r.Get("/ws", a.Hub.HandleWS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// createPrediction registra a previsão de placar do jogador.
// Antes do pontapé inicial a previsão pode ser sobrescrita livremente;
// depois que a partida começa, só o endpoint de edição em jogo vale.
func (a *API) createPrediction(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.PlayerID == "" || req.MatchID == "" || req.PredHome < 0 || req.PredAway < 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(req.Answers) > 4 {
		writeError(w, http.StatusBadRequest, "too many bonus answers")
		return
	}

	ok, err := a.Phases.CanPredict(r.Context(), req.MatchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "match already started")
		return
	}

	answers := make([]repo.BonusAnswer, 0, len(req.Answers))
	for _, ans := range req.Answers {
		if ans.QuestionID == "" {
			writeError(w, http.StatusBadRequest, "invalid bonus answer")
			return
		}
		answers = append(answers, repo.BonusAnswer{QuestionID: ans.QuestionID, Answer: ans.Answer})
	}

	entry, err := a.Repo.UpsertEntry(r.Context(), req.MatchID, req.PlayerID, req.PredHome, req.PredAway, answers)
	if errors.Is(err, repo.ErrEditNotAllowed) {
		writeError(w, http.StatusConflict, "prediction locked")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// editPrediction aplica a edição única durante a partida.
// A troca vale apenas na janela LIVE/HALFTIME e marca a entrada com o
// redutor de pontos; a segunda tentativa é rejeitada pelo banco.
func (a *API) editPrediction(w http.ResponseWriter, r *http.Request) {
	var req dto.EditPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.PlayerID == "" || req.MatchID == "" || req.PredHome < 0 || req.PredAway < 0 {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	open, err := a.Phases.EditWindowOpen(r.Context(), req.MatchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !open {
		writeError(w, http.StatusConflict, "edit window closed")
		return
	}

	entry, err := a.Repo.ApplyMidtimeEdit(r.Context(), req.MatchID, req.PlayerID, req.PredHome, req.PredAway)
	if errors.Is(err, repo.ErrEditNotAllowed) {
		writeError(w, http.StatusConflict, "midtime edit already used")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

// listEntries retorna as previsões do jogador
func (a *API) listEntries(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "playerId required")
		return
	}
	entries, err := a.Repo.ListByPlayer(r.Context(), playerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// listMatches retorna as partidas conhecidas
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := a.Repo.ListMatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]dto.MatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, toMatchResponse(&matches[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getMatch retorna o estado da partida, preferencialmente do cache
func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache dto.MatchResponse
	if a.Cache != nil {
		if ok, _ := a.Cache.GetScore(r.Context(), id, &fromCache); ok {
			writeJSON(w, http.StatusOK, fromCache)
			return
		}
	}

	m, err := a.Repo.GetMatch(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := toMatchResponse(m)
	if a.Cache != nil {
		_ = a.Cache.SetScore(r.Context(), id, resp, 5*time.Second) // snapshot curto
	}
	writeJSON(w, http.StatusOK, resp)
}

func toEntryResponse(e *repo.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		EntryID:     e.ID,
		MatchID:     e.MatchID,
		PlayerID:    e.PlayerID,
		PredHome:    e.PredHome,
		PredAway:    e.PredAway,
		MidtimeEdit: e.MidtimeEdit,
		Settled:     e.Settled,
		ScoreFinal:  e.ScoreFinal,
		BonusTotal:  e.BonusTotal,
		TotalPoints: e.TotalPoints,
		CreatedAt:   e.CreatedAt,
	}
}

func toMatchResponse(m *repo.Match) dto.MatchResponse {
	return dto.MatchResponse{
		MatchID:   m.ID,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Phase:     m.Phase,
		HomeScore: m.HomeScore,
		AwayScore: m.AwayScore,
		KickoffAt: m.KickoffAt,
		Version:   m.Version,
	}
}
