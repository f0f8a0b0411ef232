// Package kafka embrulha o segmentio/kafka-go com os defaults da plataforma.
// Os tópicos (partida encerrada, aposta liquidada e a DLQ da liquidação)
// carregam pouco volume, então a configuração favorece latência sobre batch.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Writer = kafka.Writer

// NewWriter cria o producer de um tópico. BatchTimeout curto porque um
// evento de liquidação parado no batch atrasa o crédito do jogador.
func NewWriter(brokers string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewReader cria o consumer de um grupo. MinBytes=1 pelo mesmo motivo do
// writer: entregar o evento assim que ele existe.
func NewReader(brokers string, topic string, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{brokers},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}

// WriteJSON publica um payload já serializado usando a chave informada
// (matchId ou betId, conforme o tópico) pra manter a ordem por partição.
func WriteJSON(ctx context.Context, w *kafka.Writer, key string, payload []byte) error {
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
}

// ReadNext bloqueia até a próxima mensagem do reader
func ReadNext(ctx context.Context, r *kafka.Reader) (key []byte, value []byte, err error) {
	m, err := r.ReadMessage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read kafka message: %w", err)
	}
	return m.Key, m.Value, nil
}
