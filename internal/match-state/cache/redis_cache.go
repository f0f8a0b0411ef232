package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// RedisCache mantém o estado quente da partida no Redis:
// a fase (consultada pelos validadores de aposta/previsão) e o último
// snapshot completo do update.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func keyPhase(matchID string) string   { return "match:phase:" + matchID }
func keyCurrent(matchID string) string { return "match:current:" + matchID }

// SetPhase grava a fase atual da partida.
// A fase não expira junto com o snapshot: bet-service e livegame
// dependem dela até o fim do dia de jogos.
func (r *RedisCache) SetPhase(ctx context.Context, matchID, phase string) error {
	return r.Client.Set(ctx, keyPhase(matchID), phase, 24*time.Hour).Err()
}

// SetCurrent armazena o último update completo da partida com TTL curto
func (r *RedisCache) SetCurrent(ctx context.Context, e events.MatchUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, keyCurrent(e.MatchID), b, r.TTL).Err()
}
