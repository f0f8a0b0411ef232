package dto

type SpinRequest struct {
	PlayerID string `json:"playerId"`
	Tier     string `json:"tier"` // ROOKIE | PRO | ELITE
}

type ClaimStreakRequest struct {
	PlayerID string `json:"playerId"`
}
