package matchstate

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Fases espelhadas do feed; gravadas no Redis pelo match-state-worker
const (
	PhaseScheduled = "SCHEDULED"
	PhaseLive      = "LIVE"
	PhaseHalftime  = "HALFTIME"
	PhaseFinished  = "FINISHED"
)

type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// Espera chave "match:phase:{matchID}" => valor string com a fase, ex: "LIVE"
func (v *Validator) Phase(ctx context.Context, matchID string) (string, error) {
	key := fmt.Sprintf("match:phase:%s", matchID)
	val, err := v.Rdb.Get(ctx, key).Result()
	if err != nil {
		return "", err
	}
	return val, nil
}

// CanAcceptBets diz se a partida ainda aceita criação/edição/cancelamento de apostas.
// Partida sem estado no cache é tratada como agendada (feed ainda não começou a emitir).
func (v *Validator) CanAcceptBets(ctx context.Context, matchID string) (bool, error) {
	phase, err := v.Phase(ctx, matchID)
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return phase == PhaseScheduled, nil
}

// IsLive diz se a partida está em andamento (janela de edição midtime)
func (v *Validator) IsLive(ctx context.Context, matchID string) (bool, error) {
	phase, err := v.Phase(ctx, matchID)
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return phase == PhaseLive || phase == PhaseHalftime, nil
}
