package dto

type BonusAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type PredictionRequest struct {
	PlayerID string        `json:"playerId"`
	MatchID  string        `json:"matchId"`
	PredHome int           `json:"pred_home"`
	PredAway int           `json:"pred_away"`
	Answers  []BonusAnswer `json:"answers,omitempty"`
}

type EditPredictionRequest struct {
	PlayerID string `json:"playerId"`
	MatchID  string `json:"matchId"`
	PredHome int    `json:"pred_home"`
	PredAway int    `json:"pred_away"`
}
