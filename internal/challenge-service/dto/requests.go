package dto

type JoinRequest struct {
	PlayerID    string `json:"playerId"`
	ChallengeID string `json:"challengeId"`
	Method      string `json:"method"` // "coins" | "ticket"
}

type DayBet struct {
	MatchID     string  `json:"matchId"`
	Prediction  string  `json:"prediction"` // "home" | "draw" | "away"
	AmountCents int64   `json:"amount_cents"`
	OddValue    float64 `json:"odd_value"`
}

type RecordDayRequest struct {
	PlayerID    string   `json:"playerId"`
	ChallengeID string   `json:"challengeId"`
	Day         int      `json:"day"`
	Bets        []DayBet `json:"bets"`
	Booster     string   `json:"booster,omitempty"` // "" | "DOUBLE"
}
