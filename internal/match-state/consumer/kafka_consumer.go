package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/match-state/cache"
	"github.com/radieske/fan-arena-platform-poc/internal/match-state/repository"
	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// Processor consome match_updates do Kafka, atualiza o cache de fase,
// persiste a visão de leitura e dispara os efeitos de cada update.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase

	// OnAfterPersist recebe todo update persistido (broadcast de placar)
	OnAfterPersist func(events.MatchUpdate)
	// OnFinished dispara uma vez por partida, na transição para FINISHED
	OnFinished func(events.MatchFinished)
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed() // callback de métrica: mensagem consumida
		}

		var ev events.MatchUpdate
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// Atualiza a fase e o snapshot no Redis
		if err := p.Cache.SetPhase(ctx, ev.MatchID, ev.Phase); err != nil {
			p.Log.Warn("redis set phase failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// não bloqueia persistência se falhar o cache
		} else if err := p.Cache.SetCurrent(ctx, ev); err != nil {
			p.Log.Warn("redis set current failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
		} else if p.OnCached != nil {
			p.OnCached() // callback de métrica: cache atualizado
		}

		// Persiste a visão de leitura e o histórico no Postgres
		prevPhase, err := p.Repo.UpsertMatch(ctx, ev)
		if err != nil {
			p.Log.Warn("db upsert failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_upsert")
			}
			continue
		}
		if err := p.Repo.InsertHistory(ctx, ev); err != nil {
			p.Log.Warn("db insert history failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_history")
			}
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist() // callback de métrica: persistência concluída
		}

		if p.OnAfterPersist != nil {
			p.OnAfterPersist(ev)
		}

		// Transição para FINISHED dispara a liquidação downstream
		if ev.Phase == events.PhaseFinished && prevPhase != events.PhaseFinished && p.OnFinished != nil {
			p.OnFinished(events.MatchFinished{
				MatchID:    ev.MatchID,
				FinalScore: ev.Score,
				BonusKeys:  ev.BonusKeys,
				FinishedAt: ev.UpdatedAt,
				Version:    ev.Version,
			})
		}
	}
}
