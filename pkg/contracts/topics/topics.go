package topics

const (
	// Feed de partidas
	MatchUpdates  = "match_updates"
	MatchFinished = "match_finished"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	MatchUpdatesDLQ  = "match_updates_dlq"
	MatchFinishedDLQ = "match_finished_dlq"
)
