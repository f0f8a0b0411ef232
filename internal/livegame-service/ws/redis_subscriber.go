package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// StartRedisSubscriber inicia uma goroutine que escuta o canal Redis Pub/Sub
// de placares e repassa as atualizações recebidas para todos os clientes
// WebSocket conectados via Hub
//
// Funcionamento:
// - Recebe no canal o MatchUpdate republicado pelo match-state-worker
// - Desserializa e reduz para ScoreUpdate
// - Chama hub.Broadcast para enviar aos clientes inscritos na partida
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd events.MatchUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Printf("ws subscriber unmarshal error: %v", err)
					continue
				}
				hub.Broadcast(ScoreUpdate{
					MatchID:   upd.MatchID,
					Phase:     upd.Phase,
					HomeScore: upd.Score.Home,
					AwayScore: upd.Score.Away,
					Version:   upd.Version,
				})
			}
		}
	}()
}
