package dto

import "time"

type EntryResponse struct {
	EntryID     string    `json:"entryId"`
	MatchID     string    `json:"matchId"`
	PlayerID    string    `json:"playerId"`
	PredHome    int       `json:"pred_home"`
	PredAway    int       `json:"pred_away"`
	MidtimeEdit bool      `json:"midtime_edit"`
	Settled     bool      `json:"settled"`
	ScoreFinal  int       `json:"score_final"`
	BonusTotal  int       `json:"bonus_total"`
	TotalPoints int       `json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
}

type MatchResponse struct {
	MatchID   string    `json:"matchId"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	Phase     string    `json:"phase"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	KickoffAt time.Time `json:"kickoff_at"`
	Version   int       `json:"version"`
}
