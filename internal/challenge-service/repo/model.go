package repo

import "time"

// Métodos de entrada em um desafio
const (
	MethodCoins  = "coins"
	MethodTicket = "ticket"
)

// Status de uma inscrição
const (
	EntryPendingPayment = "PENDING_PAYMENT"
	EntryActive         = "ACTIVE"
)

// Challenge é a configuração de um desafio de múltiplos dias
type Challenge struct {
	ID               string
	Name             string
	Tier             string // ROOKIE | PRO | ELITE, casa com o tier dos tickets
	EntryCostCents   int64
	DailyBudgetCents int64
	DurationDays     int
	StartsAt         time.Time
	EndsAt           time.Time
}

// Entry é a inscrição de um jogador em um desafio (no máximo uma por jogador)
type Entry struct {
	ID          string
	ChallengeID string
	PlayerID    string
	Method      string
	TicketID    string
	Status      string
	TotalPoints int
	JoinedAt    time.Time
}

// DayBet é uma aposta de um dia do desafio, paga pelo pool diário
type DayBet struct {
	MatchID     string
	Prediction  string
	AmountCents int64
	OddValue    float64
}

// Day é o registro de um dia do desafio
type Day struct {
	Day     int
	Booster string // "" | "DOUBLE"
	Bets    []DayBet
}
