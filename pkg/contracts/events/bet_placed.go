package events

type BetPlaced struct {
	BetID      string  `json:"bet_id"`
	PlayerID   string  `json:"player_id"`
	MatchID    string  `json:"match_id"`
	Prediction string  `json:"prediction"` // "home" | "draw" | "away"
	StakeCents int64   `json:"stake_cents"`
	OddValue   float64 `json:"odd_value"`
	DebitRef   string  `json:"debit_ref"` // external_ref usado no débito da carteira (betID)
	TsUnixMs   int64   `json:"ts_unix_ms"`
}
