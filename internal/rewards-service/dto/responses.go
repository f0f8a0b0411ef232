package dto

import "time"

type SpinResponse struct {
	SpinID         string `json:"spinId"`
	RewardID       string `json:"rewardId"`
	Kind           string `json:"kind"` // COINS | TICKET | PREMIUM_DAYS
	AmountCents    int64  `json:"amount_cents,omitempty"`
	TicketID       string `json:"ticketId,omitempty"`
	TicketTier     string `json:"ticketTier,omitempty"`
	PremiumDays    int    `json:"premium_days,omitempty"`
	RemainingSpins int    `json:"remaining_spins"`
}

type StreakResponse struct {
	PlayerID    string     `json:"playerId"`
	CurrentDay  int        `json:"current_day"`
	LastClaimAt *time.Time `json:"last_claim_at,omitempty"`
	ClaimableAt *time.Time `json:"claimable_at,omitempty"`
	Eligible    bool       `json:"eligible"`
}

type ClaimStreakResponse struct {
	Day  int    `json:"day"`
	Tier string `json:"tier"` // tier do prêmio do dia resultante
}
