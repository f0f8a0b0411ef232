package settlement

// PendingBet é a visão mínima de uma aposta a liquidar
type PendingBet struct {
	ID         string
	PlayerID   string
	MatchID    string
	Prediction string // home | draw | away
	StakeCents int64
	OddValue   float64
}

// LiveEntry é uma previsão de placar a pontuar, com as respostas bônus
type LiveEntry struct {
	ID          string
	PlayerID    string
	PredHome    int
	PredAway    int
	MidtimeEdit bool
	Answers     map[string]string // questionID -> resposta enviada
}

// ChallengeDayBet é uma aposta de dia de desafio pendente de pontuação
type ChallengeDayBet struct {
	EntryID     string
	Day         int
	MatchID     string
	Prediction  string
	AmountCents int64
	OddValue    float64
	Booster     string // "" | "DOUBLE"
}

// Outcome classifica o placar final em home/draw/away
func Outcome(home, away int) string {
	switch {
	case home > away:
		return "home"
	case home < away:
		return "away"
	default:
		return "draw"
	}
}
