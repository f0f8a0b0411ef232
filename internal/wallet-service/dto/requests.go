package dto

import "time"

type CreditRequest struct {
	PlayerID    string `json:"playerId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"` // ex: betId, spinId
}

type DebitRequest struct {
	PlayerID    string `json:"playerId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

type IssueTicketRequest struct {
	PlayerID  string    `json:"playerId"`
	Tier      string    `json:"tier"` // ROOKIE | PRO | ELITE
	ExpiresAt time.Time `json:"expires_at"`
}

type ConsumeTicketRequest struct {
	PlayerID    string `json:"playerId"`
	Tier        string `json:"tier"`
	ExternalRef string `json:"external_ref"` // ex: challenge-join:{challengeId}:{playerId}
}
