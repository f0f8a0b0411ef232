package walletclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Erros mapeados a partir das respostas HTTP do wallet-service
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoValidTicket     = errors.New("no valid ticket")
)

// Client é o cliente HTTP interno do wallet-service, compartilhado pelos
// serviços que movimentam saldo ou consomem tickets (bet, challenge, rewards,
// settlement). Toda mutação carrega um external_ref idempotente.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

type walletReq struct {
	PlayerID    string `json:"playerId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

type walletResp struct {
	PlayerID     string `json:"playerId"`
	BalanceCents int64  `json:"balance_cents"`
}

type consumeTicketReq struct {
	PlayerID    string `json:"playerId"`
	Tier        string `json:"tier"`
	ExternalRef string `json:"external_ref"`
}

type consumeTicketResp struct {
	TicketID string `json:"ticketId"`
	Status   string `json:"status"`
}

type issueTicketReq struct {
	PlayerID  string    `json:"playerId"`
	Tier      string    `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
}

type issueTicketResp struct {
	TicketID string `json:"ticketId"`
}

// Debit desconta saldo do jogador; 409 vira ErrInsufficientFunds
func (c *Client) Debit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error) {
	var out walletResp
	status, err := c.post(ctx, "/wallet/debit", walletReq{PlayerID: playerID, AmountCents: cents, ExternalRef: externalRef}, &out)
	if err != nil {
		return 0, err
	}
	if status == http.StatusConflict {
		return 0, ErrInsufficientFunds
	}
	if status >= 300 {
		return 0, fmt.Errorf("wallet debit http %d", status)
	}
	return out.BalanceCents, nil
}

// Credit adiciona saldo ao jogador
func (c *Client) Credit(ctx context.Context, playerID string, cents int64, externalRef string) (int64, error) {
	var out walletResp
	status, err := c.post(ctx, "/wallet/credit", walletReq{PlayerID: playerID, AmountCents: cents, ExternalRef: externalRef}, &out)
	if err != nil {
		return 0, err
	}
	if status >= 300 {
		return 0, fmt.Errorf("wallet credit http %d", status)
	}
	return out.BalanceCents, nil
}

// ConsumeTicket consome um ticket válido do tier; 409 vira ErrNoValidTicket
func (c *Client) ConsumeTicket(ctx context.Context, playerID, tier, externalRef string) (string, error) {
	var out consumeTicketResp
	status, err := c.post(ctx, "/wallet/tickets/consume", consumeTicketReq{PlayerID: playerID, Tier: tier, ExternalRef: externalRef}, &out)
	if err != nil {
		return "", err
	}
	if status == http.StatusConflict {
		return "", ErrNoValidTicket
	}
	if status >= 300 {
		return "", fmt.Errorf("wallet consume ticket http %d", status)
	}
	return out.TicketID, nil
}

// IssueTicket emite um ticket para o jogador (usado pelo rewards-service na premiação)
func (c *Client) IssueTicket(ctx context.Context, playerID, tier string, expiresAt time.Time) (string, error) {
	var out issueTicketResp
	status, err := c.post(ctx, "/wallet/tickets/issue", issueTicketReq{PlayerID: playerID, Tier: tier, ExpiresAt: expiresAt}, &out)
	if err != nil {
		return "", err
	}
	if status >= 300 {
		return "", fmt.Errorf("wallet issue ticket http %d", status)
	}
	return out.TicketID, nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) (int, error) {
	body, _ := json.Marshal(in)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode < 300 && out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return res.StatusCode, err
		}
	}
	return res.StatusCode, nil
}
