package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/selector"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/streak"
)

// Validade dos tickets emitidos como prêmio de giro
const prizeTicketTTL = 7 * 24 * time.Hour

// Repo define as operações de persistência de giros e sequência
type Repo interface {
	DecrementSpin(ctx context.Context, playerID, tier string) (int, error)
	GetSpins(ctx context.Context, playerID, tier string) (int, error)
	RecordSpin(ctx context.Context, id, playerID, tier, rewardID string) error
	GetStreak(ctx context.Context, playerID string) (*repo.Streak, error)
	ClaimStreak(ctx context.Context, playerID string, now time.Time) (int, error)
}

// Wallet é o subconjunto do wallet-service usado na premiação
type Wallet interface {
	Credit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error)
	IssueTicket(ctx context.Context, playerID, tier string, expiresAt time.Time) (string, error)
}

type Server struct {
	log    *zap.Logger
	repo   Repo
	wcli   Wallet
	tables map[string]*selector.Table
	now    func() time.Time

	// rand.Rand não é seguro pra uso concorrente
	mu  sync.Mutex
	rng *rand.Rand
}

func NewServer(log *zap.Logger, r Repo, w Wallet, tables map[string]*selector.Table, rng *rand.Rand, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{log: log, repo: r, wcli: w, tables: tables, rng: rng, now: now}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rewards/spin", s.spin)                // POST
	mux.HandleFunc("/rewards/streak", s.getStreak)         // GET ?playerId=
	mux.HandleFunc("/rewards/streak/claim", s.claimStreak) // POST
	return mux
}

// spin consome um giro do jogador e sorteia um prêmio da tabela do tier.
// O decremento condicional acontece antes do sorteio: com zero giros nada
// é sorteado nem premiado. A premiação usa o id do giro como ref idempotente.
func (s *Server) spin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	table, ok := s.tables[req.Tier]
	if req.PlayerID == "" || !ok {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	remaining, err := s.repo.DecrementSpin(r.Context(), req.PlayerID, req.Tier)
	if errors.Is(err, repo.ErrNoSpinsAvailable) {
		http.Error(w, "no spins available", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	reward := table.Draw(s.rng)
	s.mu.Unlock()

	spinID := uuid.NewString()
	resp := dto.SpinResponse{
		SpinID:         spinID,
		RewardID:       reward.ID,
		Kind:           reward.Kind,
		RemainingSpins: remaining,
	}

	switch reward.Kind {
	case selector.KindCoins:
		if _, err := s.wcli.Credit(r.Context(), req.PlayerID, reward.AmountCents, "spin:"+spinID); err != nil {
			s.log.Error("spin prize credit", zap.String("spinId", spinID), zap.Error(err))
			http.Error(w, "prize minting failed", http.StatusBadGateway)
			return
		}
		resp.AmountCents = reward.AmountCents
	case selector.KindTicket:
		ticketID, err := s.wcli.IssueTicket(r.Context(), req.PlayerID, reward.TicketTier, s.now().Add(prizeTicketTTL))
		if err != nil {
			s.log.Error("spin prize ticket", zap.String("spinId", spinID), zap.Error(err))
			http.Error(w, "prize minting failed", http.StatusBadGateway)
			return
		}
		resp.TicketID = ticketID
		resp.TicketTier = reward.TicketTier
	case selector.KindPremiumDays:
		// premium fica só no histórico; não há movimentação de carteira
		resp.PremiumDays = reward.PremiumDays
	}

	if err := s.repo.RecordSpin(r.Context(), spinID, req.PlayerID, req.Tier, reward.ID); err != nil {
		// prêmio já entregue; perder o histórico não pode falhar o giro
		s.log.Error("spin history record", zap.String("spinId", spinID), zap.Error(err))
	}

	writeJSON(w, resp)
}

// getStreak retorna o estado da sequência do jogador e a elegibilidade atual
func (s *Server) getStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "playerId required", http.StatusBadRequest)
		return
	}

	st, err := s.repo.GetStreak(r.Context(), playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := dto.StreakResponse{PlayerID: playerID, CurrentDay: st.CurrentDay}
	if st.NeverClaimed() {
		resp.Eligible = true
	} else {
		last := st.LastClaimAt
		resp.LastClaimAt = &last
		claimable := last.Add(streak.ContinueAfter)
		resp.ClaimableAt = &claimable
		resp.Eligible = streak.Evaluate(last, s.now()) != streak.AlreadyClaimed
	}
	writeJSON(w, resp)
}

// claimStreak efetiva o resgate diário; a revalidação atômica fica no repo
func (s *Server) claimStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.ClaimStreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	day, err := s.repo.ClaimStreak(r.Context(), req.PlayerID, s.now())
	if errors.Is(err, repo.ErrAlreadyClaimed) {
		http.Error(w, "already claimed", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.ClaimStreakResponse{Day: day, Tier: streak.TierForDay(day)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
