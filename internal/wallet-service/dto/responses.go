package dto

import "time"

type WalletResponse struct {
	PlayerID     string `json:"playerId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balance_cents"`
}

type TicketResponse struct {
	TicketID  string    `json:"ticketId"`
	Tier      string    `json:"tier"`
	ExpiresAt time.Time `json:"expires_at"`
	IsUsed    bool      `json:"is_used"`
}

type ConsumeTicketResponse struct {
	TicketID string `json:"ticketId"`
	Status   string `json:"status"` // CONSUMED
}
