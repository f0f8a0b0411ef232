package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/wallet-service/dto"
	"github.com/radieske/fan-arena-platform-poc/internal/wallet-service/repo"
)

// Repo define a interface de operações de carteira usadas pelo handler HTTP
type Repo interface {
	GetOrCreateWallet(ctx context.Context, playerID string) (walletID string, balance int64, err error)
	Credit(ctx context.Context, playerID string, amount int64, externalRef string) (newBalance int64, err error)
	Debit(ctx context.Context, playerID string, amount int64, externalRef string) (newBalance int64, err error)
	IssueTicket(ctx context.Context, playerID, tier string, expiresAt time.Time) (string, error)
	ConsumeTicket(ctx context.Context, playerID, tier, externalRef string, now time.Time) (string, error)
	ListTickets(ctx context.Context, playerID string) ([]repo.Ticket, error)
}

// Server expõe endpoints HTTP para operações de carteira e tickets
type Server struct {
	log  *zap.Logger
	repo Repo
	now  func() time.Time
}

// NewServer instancia o servidor HTTP de wallet.
// O relógio é injetável para testes determinísticos.
func NewServer(log *zap.Logger, repo Repo, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{log: log, repo: repo, now: now}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)                  // GET ?playerId=...
	mux.HandleFunc("/wallet/credit", s.credit)              // POST
	mux.HandleFunc("/wallet/debit", s.debit)                // POST
	mux.HandleFunc("/wallet/tickets", s.listTickets)        // GET ?playerId=...
	mux.HandleFunc("/wallet/tickets/issue", s.issueTicket)  // POST
	mux.HandleFunc("/wallet/tickets/consume", s.useTicket)  // POST
	return mux
}

// getWallet retorna (ou cria) a carteira e saldo do jogador
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "playerId required", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{PlayerID: playerID, WalletID: walletID, BalanceCents: bal})
}

// credit adiciona saldo à carteira do jogador
func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.AmountCents < 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Credit(r.Context(), req.PlayerID, req.AmountCents, req.ExternalRef)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{PlayerID: req.PlayerID, BalanceCents: bal})
}

// debit desconta saldo da carteira; saldo insuficiente devolve 409
func (s *Server) debit(w http.ResponseWriter, r *http.Request) {
	var req dto.DebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.AmountCents < 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Debit(r.Context(), req.PlayerID, req.AmountCents, req.ExternalRef)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInsufficientFunds):
			http.Error(w, "insufficient funds", http.StatusConflict)
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, "wallet not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, dto.WalletResponse{PlayerID: req.PlayerID, BalanceCents: bal})
}

// listTickets retorna os tickets do jogador (histórico incluído)
func (s *Server) listTickets(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "playerId required", http.StatusBadRequest)
		return
	}
	ts, err := s.repo.ListTickets(r.Context(), playerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.TicketResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, dto.TicketResponse{TicketID: t.ID, Tier: t.Tier, ExpiresAt: t.ExpiresAt, IsUsed: t.IsUsed})
	}
	writeJSON(w, out)
}

// issueTicket emite um novo ticket para o jogador
func (s *Server) issueTicket(w http.ResponseWriter, r *http.Request) {
	var req dto.IssueTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.Tier == "" || req.ExpiresAt.IsZero() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	id, err := s.repo.IssueTicket(r.Context(), req.PlayerID, req.Tier, req.ExpiresAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TicketResponse{TicketID: id, Tier: req.Tier, ExpiresAt: req.ExpiresAt})
}

// useTicket consome um ticket válido do tier; sem ticket válido devolve 409
func (s *Server) useTicket(w http.ResponseWriter, r *http.Request) {
	var req dto.ConsumeTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" || req.Tier == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	id, err := s.repo.ConsumeTicket(r.Context(), req.PlayerID, req.Tier, req.ExternalRef, s.now())
	if err != nil {
		if errors.Is(err, repo.ErrNoValidTicket) {
			http.Error(w, "no valid ticket", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.ConsumeTicketResponse{TicketID: id, Status: "CONSUMED"})
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
