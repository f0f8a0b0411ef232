package repo

import "time"

// Entry é a previsão de placar de um jogador para uma partida ao vivo.
// Uma por (match, player); edição durante a partida marca midtime_edit
// e aplica o redutor de pontos na liquidação.
type Entry struct {
	ID          string
	MatchID     string
	PlayerID    string
	PredHome    int
	PredAway    int
	MidtimeEdit bool
	Settled     bool
	ScoreFinal  int
	BonusTotal  int
	TotalPoints int
	CreatedAt   time.Time
}

// BonusAnswer é a resposta do jogador a uma pergunta bônus da partida
type BonusAnswer struct {
	QuestionID string
	Answer     string
}

// Match é a visão de leitura da partida mantida pelo match-state-worker
type Match struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	Phase     string // SCHEDULED | LIVE | HALFTIME | FINISHED
	HomeScore int
	AwayScore int
	KickoffAt time.Time
	Version   int
}
