package settlement

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/radieske/fan-arena-platform-poc/internal/shared/kafka"
	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// KafkaPublisher emite bet_settled chaveado por betID
type KafkaPublisher struct{ W *kafkago.Writer }

func (k *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, k.W, e.BetID, b)
}
