package dto

type PlaceBetRequest struct {
	PlayerID   string  `json:"playerId"`
	MatchID    string  `json:"matchId"`
	Prediction string  `json:"prediction"` // "home" | "draw" | "away"
	StakeCents int64   `json:"stake_cents"`
	OddValue   float64 `json:"odd_value"` // odd que o cliente viu
}

type ModifyBetRequest struct {
	PlayerID   string  `json:"playerId"`
	MatchID    string  `json:"matchId"`
	Prediction string  `json:"prediction"`
	StakeCents int64   `json:"stake_cents"`
	OddValue   float64 `json:"odd_value"`
}

type CancelBetRequest struct {
	PlayerID string `json:"playerId"`
	MatchID  string `json:"matchId"`
}
