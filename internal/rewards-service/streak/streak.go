package streak

import "time"

// Janela de elegibilidade do resgate diário, medida a partir do último resgate
const (
	ContinueAfter = 24 * time.Hour
	ResetAfter    = 48 * time.Hour
)

// Eligibility classifica a tentativa de resgate em relação ao último
type Eligibility int

const (
	AlreadyClaimed Eligibility = iota // < 24h: resgate de hoje já feito
	Continue                          // [24h, 48h): sequência continua
	Reset                             // >= 48h: sequência quebrada, volta ao dia 1
)

// Evaluate classifica a elegibilidade do resgate.
// lastClaimedAt zero significa que o jogador nunca resgatou: começa do dia 1.
func Evaluate(lastClaimedAt, now time.Time) Eligibility {
	if lastClaimedAt.IsZero() {
		return Reset
	}
	elapsed := now.Sub(lastClaimedAt)
	switch {
	case elapsed < ContinueAfter:
		return AlreadyClaimed
	case elapsed < ResetAfter:
		return Continue
	default:
		return Reset
	}
}

// NextDay calcula o dia resultante do resgate
func NextDay(currentDay int, e Eligibility) int {
	switch e {
	case Continue:
		return currentDay + 1
	case Reset:
		return 1
	default:
		return currentDay
	}
}

// TierForDay mapeia o dia da sequência para o tier do prêmio do resgate
func TierForDay(day int) string {
	switch {
	case day >= 6:
		return "ELITE"
	case day >= 3:
		return "PRO"
	default:
		return "ROOKIE"
	}
}
