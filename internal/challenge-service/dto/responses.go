package dto

type JoinResponse struct {
	EntryID       string `json:"entryId"`
	Status        string `json:"status"` // ACTIVE
	Method        string `json:"method"`
	TicketID      string `json:"ticketId,omitempty"`
	AlreadyJoined bool   `json:"already_joined,omitempty"`
	Message       string `json:"message,omitempty"`
}

type DayResponse struct {
	Day     int      `json:"day"`
	Booster string   `json:"booster,omitempty"`
	Bets    []DayBet `json:"bets"`
}

type EntryResponse struct {
	EntryID     string        `json:"entryId"`
	ChallengeID string        `json:"challengeId"`
	PlayerID    string        `json:"playerId"`
	Method      string        `json:"method"`
	Status      string        `json:"status"`
	TotalPoints int           `json:"total_points"`
	Days        []DayResponse `json:"days"`
}
