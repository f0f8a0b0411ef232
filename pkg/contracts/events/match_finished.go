package events

import "time"

// BonusAnswerKey é o gabarito de uma pergunta bônus resolvida no fim da partida
type BonusAnswerKey struct {
	QuestionID string `json:"question_id"`
	Correct    string `json:"correct"`
}

// Evento publicado no tópico "match_finished" quando a partida transita para FINISHED.
// Dispara a liquidação de apostas e o cálculo de pontos das previsões.
type MatchFinished struct {
	MatchID    string           `json:"match_id"`
	FinalScore Score            `json:"final_score"`
	BonusKeys  []BonusAnswerKey `json:"bonus_keys,omitempty"`
	FinishedAt time.Time        `json:"finished_at"`
	Version    int              `json:"version"`
}
