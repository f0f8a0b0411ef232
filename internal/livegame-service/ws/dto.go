package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MatchID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	MatchID string `json:"matchId"` // requerido em subscribe/unsubscribe
}

// ScoreUpdate é a atualização de placar enviada aos clientes inscritos
type ScoreUpdate struct {
	MatchID   string `json:"matchId"`
	Phase     string `json:"phase"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	Version   int    `json:"version"`
}
