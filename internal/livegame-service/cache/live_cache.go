package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fases espelhadas do feed; gravadas no Redis pelo match-state-worker
const (
	PhaseScheduled = "SCHEDULED"
	PhaseLive      = "LIVE"
	PhaseHalftime  = "HALFTIME"
	PhaseFinished  = "FINISHED"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyScore(matchID string) string { return "live:score:" + matchID }
func keyPhase(matchID string) string { return "match:phase:" + matchID }

// GetScore lê o snapshot da partida do cache; false quando não há entrada
func (c *Cache) GetScore(ctx context.Context, matchID string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyScore(matchID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetScore(ctx context.Context, matchID string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyScore(matchID), b, ttl).Err()
}

// Phase lê a fase atual da partida; vazio quando o feed ainda não emitiu
func (c *Cache) Phase(ctx context.Context, matchID string) (string, error) {
	val, err := c.R.Get(ctx, keyPhase(matchID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// CanPredict diz se a partida ainda aceita previsões novas ou sobrescritas.
// Partida sem fase no cache é tratada como agendada.
func (c *Cache) CanPredict(ctx context.Context, matchID string) (bool, error) {
	phase, err := c.Phase(ctx, matchID)
	if err != nil {
		return false, err
	}
	return phase == "" || phase == PhaseScheduled, nil
}

// EditWindowOpen diz se a partida está na janela de edição em jogo
func (c *Cache) EditWindowOpen(ctx context.Context, matchID string) (bool, error) {
	phase, err := c.Phase(ctx, matchID)
	if err != nil {
		return false, err
	}
	return phase == PhaseLive || phase == PhaseHalftime, nil
}
