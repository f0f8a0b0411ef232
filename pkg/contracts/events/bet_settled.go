package events

import "time"

// Evento emitido pelo settlement-worker após liquidar uma aposta.
type BetSettled struct {
	BetID        string    `json:"betId"`
	PlayerID     string    `json:"playerId"`
	MatchID      string    `json:"matchId"`
	Status       string    `json:"status"` // "WON" | "LOST"
	WinCents     int64     `json:"win_cents,omitempty"`
	CreditRef    string    `json:"credit_ref,omitempty"`
	Ts           time.Time `json:"ts"`
	AlreadyFinal bool      `json:"already_final,omitempty"` // true quando a liquidação foi pulada por idempotência
}
