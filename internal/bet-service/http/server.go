package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/bet-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/bet-service/limits"
	"github.com/radieske/fan-arena-platform-poc/internal/bet-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// Repo define as operações de persistência usadas pelo handler
type Repo interface {
	CreatePending(ctx context.Context, b *repo.Bet) (string, error)
	GetByPlayerAndMatch(ctx context.Context, playerID, matchID string) (*repo.Bet, error)
	UpdatePending(ctx context.Context, betID string, expectedVersion int, prediction string, stakeCents int64, oddValue float64) error
	DeletePending(ctx context.Context, playerID, matchID string) (stakeCents int64, betID string, err error)
	MarkCancelled(ctx context.Context, playerID, matchID string) (stakeCents int64, betID string, err error)
	DeleteCancelled(ctx context.Context, betID string) error
	ListByPlayer(ctx context.Context, playerID string) ([]repo.Bet, error)
	GetPlayerLevel(ctx context.Context, playerID string) (int, error)
}

// Wallet é o subconjunto do wallet-service usado pelo ledger de apostas
type Wallet interface {
	Debit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error)
	Credit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error)
}

// MatchState valida a fase da partida antes de aceitar mutações
type MatchState interface {
	CanAcceptBets(ctx context.Context, matchID string) (bool, error)
}

type Publisher interface {
	PublishBetPlaced(context.Context, events.BetPlaced) error
}

type Server struct {
	log   *zap.Logger
	repo  Repo
	state MatchState
	wcli  Wallet
	publ  Publisher
}

func NewServer(log *zap.Logger, r Repo, st MatchState, w Wallet, p Publisher) *Server {
	return &Server{log: log, repo: r, state: st, wcli: w, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.bets) // POST place | PUT modify | DELETE cancel | GET ?playerId=
	return mux
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodPut:
		s.modifyBet(w, r)
	case http.MethodDelete:
		s.cancelBet(w, r)
	case http.MethodGet:
		s.listBets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// placeBet cria uma aposta PENDING debitando a carteira.
// Segunda aposta do jogador na mesma partida vira modificação, não inserção.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.MatchID == "" || !repo.ValidPrediction(req.Prediction) || req.StakeCents <= 0 || req.OddValue <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !s.matchOpen(w, r.Context(), req.MatchID) {
		return
	}
	if !s.checkLimit(w, r.Context(), req.PlayerID, req.StakeCents) {
		return
	}

	// Aposta existente na mesma partida vira modify
	if existing, err := s.repo.GetByPlayerAndMatch(r.Context(), req.PlayerID, req.MatchID); err == nil {
		s.applyModify(w, r.Context(), existing, req.Prediction, req.StakeCents, req.OddValue)
		return
	} else if !errors.Is(err, repo.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 1) Cria aposta local PENDING
	betID, err := s.repo.CreatePending(r.Context(), &repo.Bet{
		PlayerID:   req.PlayerID,
		MatchID:    req.MatchID,
		Prediction: req.Prediction,
		StakeCents: req.StakeCents,
		OddValue:   req.OddValue,
	})
	if errors.Is(err, repo.ErrDuplicateBet) {
		// corrida entre o GET acima e o INSERT; o cliente repete como modify
		http.Error(w, "bet exists; modify instead", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 2) Debita a carteira (external_ref = betID garante no máximo um débito)
	if _, err := s.wcli.Debit(r.Context(), req.PlayerID, req.StakeCents, "bet-place:"+betID); err != nil {
		// desfaz a aposta recém-criada pra não deixar estado parcial
		if _, _, derr := s.repo.DeletePending(r.Context(), req.PlayerID, req.MatchID); derr != nil {
			s.log.Error("rollback pending bet", zap.String("betId", betID), zap.Error(derr))
		}
		if errors.Is(err, walletclient.ErrInsufficientFunds) {
			http.Error(w, "insufficient funds", http.StatusConflict)
			return
		}
		http.Error(w, "wallet debit failed", http.StatusConflict)
		return
	}

	// 3) Publica evento bet_placed
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:      betID,
		PlayerID:   req.PlayerID,
		MatchID:    req.MatchID,
		Prediction: req.Prediction,
		StakeCents: req.StakeCents,
		OddValue:   req.OddValue,
		DebitRef:   "bet-place:" + betID,
	})

	writeJSON(w, dto.BetResponse{
		BetID:      betID,
		MatchID:    req.MatchID,
		Prediction: req.Prediction,
		StakeCents: req.StakeCents,
		OddValue:   req.OddValue,
		Status:     repo.StatusPending,
	})
}

// modifyBet substitui palpite/valor/odd enquanto a aposta está PENDING
func (s *Server) modifyBet(w http.ResponseWriter, r *http.Request) {
	var req dto.ModifyBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.MatchID == "" || !repo.ValidPrediction(req.Prediction) || req.StakeCents <= 0 || req.OddValue <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !s.matchOpen(w, r.Context(), req.MatchID) {
		return
	}
	if !s.checkLimit(w, r.Context(), req.PlayerID, req.StakeCents) {
		return
	}

	existing, err := s.repo.GetByPlayerAndMatch(r.Context(), req.PlayerID, req.MatchID)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "bet not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.applyModify(w, r.Context(), existing, req.Prediction, req.StakeCents, req.OddValue)
}

// applyModify aplica a troca de palpite/valor como uma unidade lógica:
// o efeito líquido no saldo é exatamente -(novo - antigo).
func (s *Server) applyModify(w http.ResponseWriter, ctx context.Context, bet *repo.Bet, prediction string, stakeCents int64, oddValue float64) {
	if bet.Status != repo.StatusPending {
		http.Error(w, "bet already settled", http.StatusConflict)
		return
	}

	delta := stakeCents - bet.StakeCents
	// Ref único por tentativa: dois modifies concorrentes nunca compartilham
	// o mesmo ref, então o débito do perdedor é real (não replay do vencedor)
	// e o estorno abaixo devolve exatamente o que esta tentativa debitou.
	ref := fmt.Sprintf("bet-modify:%s:%s", bet.ID, uuid.NewString())

	// Aumento de stake exige fundos antes de tocar na aposta
	if delta > 0 {
		if _, err := s.wcli.Debit(ctx, bet.PlayerID, delta, ref); err != nil {
			if errors.Is(err, walletclient.ErrInsufficientFunds) {
				http.Error(w, "insufficient funds", http.StatusConflict)
				return
			}
			http.Error(w, "wallet debit failed", http.StatusConflict)
			return
		}
	}

	if err := s.repo.UpdatePending(ctx, bet.ID, bet.Version, prediction, stakeCents, oddValue); err != nil {
		if delta > 0 {
			// devolve o débito extra; sem ele o jogador pagaria por uma troca que não aconteceu
			if _, cerr := s.wcli.Credit(ctx, bet.PlayerID, delta, ref+":rollback"); cerr != nil {
				s.log.Error("rollback modify debit", zap.String("betId", bet.ID), zap.Error(cerr))
			}
		}
		if errors.Is(err, repo.ErrInvalidState) {
			http.Error(w, "bet changed concurrently; retry", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Redução de stake devolve a diferença depois do update
	if delta < 0 {
		if _, err := s.wcli.Credit(ctx, bet.PlayerID, -delta, ref); err != nil {
			// Saldo fica devendo a diferença; uma fila de compensação trataria isso em produção
			s.log.Error("credit stake reduction", zap.String("betId", bet.ID), zap.Error(err))
		}
	}

	writeJSON(w, dto.BetResponse{
		BetID:      bet.ID,
		MatchID:    bet.MatchID,
		Prediction: prediction,
		StakeCents: stakeCents,
		OddValue:   oddValue,
		Status:     repo.StatusPending,
	})
}

// cancelBet remove uma aposta PENDING devolvendo o valor integral à carteira
func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	var req dto.CancelBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.MatchID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if !s.matchOpen(w, r.Context(), req.MatchID) {
		return
	}

	// Cancela em duas fases: marca CANCELLED, credita, e só então remove a
	// linha. Se o crédito falhar, a aposta fica CANCELLED e repetir o cancel
	// reexecuta o estorno com o mesmo ref idempotente.
	stake, betID, err := s.repo.MarkCancelled(r.Context(), req.PlayerID, req.MatchID)
	if errors.Is(err, repo.ErrInvalidState) {
		http.Error(w, "no pending bet to cancel", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := s.wcli.Credit(r.Context(), req.PlayerID, stake, "bet-cancel:"+betID); err != nil {
		s.log.Error("refund cancelled bet", zap.String("betId", betID), zap.Error(err))
		http.Error(w, "refund failed; retry cancel", http.StatusBadGateway)
		return
	}

	if err := s.repo.DeleteCancelled(r.Context(), betID); err != nil {
		// estorno já feito; a linha CANCELLED remanescente é inofensiva
		s.log.Error("remove cancelled bet", zap.String("betId", betID), zap.Error(err))
	}

	writeJSON(w, dto.CancelBetResponse{BetID: betID, RefundedCents: stake, Status: "CANCELLED"})
}

// listBets retorna as apostas do jogador
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "playerId required", http.StatusBadRequest)
		return
	}
	bets, err := s.repo.ListByPlayer(r.Context(), playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponse{
			BetID:      b.ID,
			MatchID:    b.MatchID,
			Prediction: b.Prediction,
			StakeCents: b.StakeCents,
			OddValue:   b.OddValue,
			Status:     b.Status,
		})
	}
	writeJSON(w, out)
}

// matchOpen devolve false (e responde o erro) se a partida já começou
func (s *Server) matchOpen(w http.ResponseWriter, ctx context.Context, matchID string) bool {
	open, err := s.state.CanAcceptBets(ctx, matchID)
	if err != nil {
		http.Error(w, "match state unavailable", http.StatusServiceUnavailable)
		return false
	}
	if !open {
		http.Error(w, "match already started", http.StatusConflict)
		return false
	}
	return true
}

// checkLimit valida o teto de aposta do nível do jogador
func (s *Server) checkLimit(w http.ResponseWriter, ctx context.Context, playerID string, stakeCents int64) bool {
	level, err := s.repo.GetPlayerLevel(ctx, playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return false
	}
	if err := limits.Check(level, stakeCents); err != nil {
		http.Error(w, "bet limit exceeded", http.StatusConflict)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
