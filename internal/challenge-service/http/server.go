package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/challenge-service/budget"
	"github.com/radieske/fan-arena-platform-poc/internal/challenge-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/challenge-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
)

// Repo define as operações de persistência de desafios usadas pelo handler
type Repo interface {
	GetChallenge(ctx context.Context, id string) (*repo.Challenge, error)
	InsertEntry(ctx context.Context, challengeID, playerID, method string) (inserted bool, entry *repo.Entry, err error)
	ActivateEntry(ctx context.Context, entryID, ticketID string) error
	DeleteEntry(ctx context.Context, entryID string) error
	GetEntry(ctx context.Context, challengeID, playerID string) (*repo.Entry, error)
	ReplaceDay(ctx context.Context, entryID string, day int, booster string, bets []repo.DayBet) error
	ListDays(ctx context.Context, entryID string) ([]repo.Day, error)
}

// Wallet é o subconjunto do wallet-service usado no join:
// exatamente um de {débito, consumo de ticket} acontece por inscrição
type Wallet interface {
	Debit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error)
	ConsumeTicket(ctx context.Context, playerID, tier, externalRef string) (string, error)
}

type Server struct {
	log  *zap.Logger
	repo Repo
	wcli Wallet
	now  func() time.Time
}

func NewServer(log *zap.Logger, r Repo, w Wallet, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{log: log, repo: r, wcli: w, now: now}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/challenges/join", s.join)       // POST
	mux.HandleFunc("/challenges/days", s.recordDay)  // POST (substitui o dia)
	mux.HandleFunc("/challenges/entry", s.getEntry)  // GET ?challengeId=&playerId=
	return mux
}

// join inscreve o jogador no desafio cobrando moedas ou consumindo um ticket.
// Reentrada é sucesso informativo, nunca cobrança dupla: a linha de inscrição
// é criada primeiro (join-once no banco) e o pagamento usa um ref idempotente.
func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.ChallengeID == "" || (req.Method != repo.MethodCoins && req.Method != repo.MethodTicket) {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	ch, err := s.repo.GetChallenge(r.Context(), req.ChallengeID)
	if errors.Is(err, repo.ErrChallengeNotFound) {
		http.Error(w, "challenge not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.now().After(ch.EndsAt) {
		http.Error(w, "challenge ended", http.StatusConflict)
		return
	}

	inserted, entry, err := s.repo.InsertEntry(r.Context(), req.ChallengeID, req.PlayerID, req.Method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !inserted && entry.Status != repo.EntryPendingPayment {
		// já inscrito e ativo: informativo, não bloqueante
		writeJSON(w, dto.JoinResponse{
			EntryID:       entry.ID,
			Status:        entry.Status,
			Method:        entry.Method,
			TicketID:      entry.TicketID,
			AlreadyJoined: true,
			Message:       "player already joined this challenge",
		})
		return
	}

	// Daqui pra baixo a inscrição é nova ou parou entre o pagamento e a
	// ativação; nos dois casos o ref idempotente garante cobrança única,
	// então retomar o fluxo inteiro é seguro.
	ref := "challenge-join:" + req.ChallengeID + ":" + req.PlayerID

	var ticketID string
	switch entry.Method {
	case repo.MethodCoins:
		if _, err := s.wcli.Debit(r.Context(), req.PlayerID, ch.EntryCostCents, ref); err != nil {
			s.rollbackEntry(r.Context(), entry.ID)
			if errors.Is(err, walletclient.ErrInsufficientFunds) {
				http.Error(w, "insufficient funds", http.StatusConflict)
				return
			}
			http.Error(w, "wallet debit failed", http.StatusConflict)
			return
		}
	case repo.MethodTicket:
		ticketID, err = s.wcli.ConsumeTicket(r.Context(), req.PlayerID, ch.Tier, ref)
		if err != nil {
			s.rollbackEntry(r.Context(), entry.ID)
			if errors.Is(err, walletclient.ErrNoValidTicket) {
				http.Error(w, "no valid ticket", http.StatusConflict)
				return
			}
			http.Error(w, "ticket consume failed", http.StatusConflict)
			return
		}
	}

	if err := s.repo.ActivateEntry(r.Context(), entry.ID, ticketID); err != nil {
		// pagamento feito, ativação pendente: o próximo join retoma daqui
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.JoinResponse{
		EntryID:       entry.ID,
		Status:        repo.EntryActive,
		Method:        entry.Method,
		TicketID:      ticketID,
		AlreadyJoined: !inserted,
	})
}

// rollbackEntry desfaz a linha PENDING_PAYMENT quando o pagamento falha
func (s *Server) rollbackEntry(ctx context.Context, entryID string) {
	if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
		s.log.Error("rollback challenge entry", zap.String("entryId", entryID), zap.Error(err))
	}
}

// recordDay substitui as apostas e o booster de um dia do desafio.
// Não movimenta a carteira: o dia é pago pelo pool diário do desafio.
func (s *Server) recordDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RecordDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.ChallengeID == "" || req.Day < 1 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Booster != "" && req.Booster != "DOUBLE" {
		http.Error(w, "unknown booster", http.StatusBadRequest)
		return
	}

	ch, err := s.repo.GetChallenge(r.Context(), req.ChallengeID)
	if errors.Is(err, repo.ErrChallengeNotFound) {
		http.Error(w, "challenge not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if req.Day > ch.DurationDays {
		http.Error(w, "day out of range", http.StatusBadRequest)
		return
	}
	if s.now().After(ch.EndsAt) {
		http.Error(w, "challenge ended", http.StatusConflict)
		return
	}

	entry, err := s.repo.GetEntry(r.Context(), req.ChallengeID, req.PlayerID)
	if errors.Is(err, repo.ErrEntryNotFound) {
		http.Error(w, "player not joined", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry.Status != repo.EntryActive {
		http.Error(w, "entry not active", http.StatusConflict)
		return
	}

	// Orçamento diário: a soma das apostas do dia não pode passar do pool
	amounts := make([]int64, 0, len(req.Bets))
	bets := make([]repo.DayBet, 0, len(req.Bets))
	for _, b := range req.Bets {
		if b.MatchID == "" || (b.Prediction != "home" && b.Prediction != "draw" && b.Prediction != "away") || b.OddValue <= 0 {
			http.Error(w, "invalid bet", http.StatusBadRequest)
			return
		}
		amounts = append(amounts, b.AmountCents)
		bets = append(bets, repo.DayBet{MatchID: b.MatchID, Prediction: b.Prediction, AmountCents: b.AmountCents, OddValue: b.OddValue})
	}
	if err := budget.Check(amounts, ch.DailyBudgetCents); err != nil {
		if errors.Is(err, budget.ErrBudgetExceeded) {
			http.Error(w, "daily budget exceeded", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.repo.ReplaceDay(r.Context(), entry.ID, req.Day, req.Booster, bets); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, dto.DayResponse{Day: req.Day, Booster: req.Booster, Bets: req.Bets})
}

// getEntry retorna a inscrição do jogador com os dias registrados
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	challengeID := r.URL.Query().Get("challengeId")
	playerID := r.URL.Query().Get("playerId")
	if challengeID == "" || playerID == "" {
		http.Error(w, "challengeId and playerId required", http.StatusBadRequest)
		return
	}

	entry, err := s.repo.GetEntry(r.Context(), challengeID, playerID)
	if errors.Is(err, repo.ErrEntryNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	days, err := s.repo.ListDays(r.Context(), entry.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := dto.EntryResponse{
		EntryID:     entry.ID,
		ChallengeID: entry.ChallengeID,
		PlayerID:    entry.PlayerID,
		Method:      entry.Method,
		Status:      entry.Status,
		TotalPoints: entry.TotalPoints,
		Days:        make([]dto.DayResponse, 0, len(days)),
	}
	for _, d := range days {
		dr := dto.DayResponse{Day: d.Day, Booster: d.Booster}
		for _, b := range d.Bets {
			dr.Bets = append(dr.Bets, dto.DayBet{MatchID: b.MatchID, Prediction: b.Prediction, AmountCents: b.AmountCents, OddValue: b.OddValue})
		}
		out.Days = append(out.Days, dr)
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
