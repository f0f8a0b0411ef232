package dto

type BetResponse struct {
	BetID      string  `json:"betId"`
	MatchID    string  `json:"matchId"`
	Prediction string  `json:"prediction"`
	StakeCents int64   `json:"stake_cents"`
	OddValue   float64 `json:"odd_value"`
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
}

type CancelBetResponse struct {
	BetID         string `json:"betId"`
	RefundedCents int64  `json:"refunded_cents"`
	Status        string `json:"status"` // CANCELLED
}
