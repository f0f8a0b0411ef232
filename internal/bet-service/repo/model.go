package repo

import "time"

// Status de uma aposta
const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"

	// Estado intermediário do cancelamento: a aposta sai do jogo antes do
	// estorno e a linha só é removida depois do crédito confirmado
	StatusCancelled = "CANCELLED"
)

// Palpites aceitos para o mercado 1x2
const (
	PredictionHome = "home"
	PredictionDraw = "draw"
	PredictionAway = "away"
)

// Bet é o modelo persistido no Postgres.
// Existe no máximo uma aposta por (player_id, match_id).
type Bet struct {
	ID         string
	PlayerID   string
	MatchID    string
	Prediction string
	StakeCents int64
	OddValue   float64
	Status     string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidPrediction valida o palpite contra o conjunto fechado home/draw/away
func ValidPrediction(p string) bool {
	return p == PredictionHome || p == PredictionDraw || p == PredictionAway
}
