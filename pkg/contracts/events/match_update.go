package events

import "time"

// Fases possíveis de uma partida no feed
const (
	PhaseScheduled = "SCHEDULED"
	PhaseLive      = "LIVE"
	PhaseHalftime  = "HALFTIME"
	PhaseFinished  = "FINISHED"
)

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Evento publicado no tópico "match_updates" a cada mudança de fase ou placar
type MatchUpdate struct {
	MatchID   string    `json:"match_id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Phase     string    `json:"phase"` // SCHEDULED | LIVE | HALFTIME | FINISHED
	Score     Score     `json:"score"`
	KickoffAt time.Time `json:"kickoff_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Source    string    `json:"source"`  // "match-feed-simulator"
	Version   int       `json:"version"` // incrementado a cada atualização

	// Gabarito das perguntas bônus; presente apenas no update FINISHED
	BonusKeys []BonusAnswerKey `json:"bonus_keys,omitempty"`
}
