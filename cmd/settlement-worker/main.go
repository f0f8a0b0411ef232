package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/settlement"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/kafka"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
	ev "github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("settlement-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Conexão com Postgres: updates condicionais de apostas, previsões e desafios
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: consome match_finished para disparar a liquidação
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchFinished, "settlement-worker")
	defer reader.Close()

	// Kafka producer: publica bet_settled e envia venenos para a DLQ
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinishedDLQ)
	defer dlqWriter.Close()

	stores := settlement.NewPostgresStores(pg)
	settler := &settlement.Settler{
		Log:        log,
		Bets:       stores,
		Live:       stores,
		Challenges: stores,
		Wcli:       walletclient.New(cfg.WalletURL),
		Pub:        &settlement.KafkaPublisher{W: settledWriter},
		Now:        time.Now,
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicMatchFinished),
		zap.String("publish", cfg.TopicBetSettled),
	)

	ctx := context.Background()

	// Loop principal: consome match_finished e liquida a partida inteira
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var finished ev.MatchFinished
		if jerr := json.Unmarshal(msg.Value, &finished); jerr != nil {
			log.Error("unmarshal match_finished", zap.Error(jerr))
			_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			continue
		}

		if err := processWithRetry(ctx, settler, finished); err != nil {
			log.Error("settle match", zap.String("matchId", finished.MatchID), zap.Error(err))
			_ = kafka.WriteJSON(ctx, dlqWriter, finished.MatchID, msg.Value)
		}
	}
}

// processWithRetry tenta a liquidação com backoff simples antes de desistir.
// Toda etapa do settler é idempotente, então repetir o evento inteiro é seguro.
func processWithRetry(ctx context.Context, s *settlement.Settler, finished ev.MatchFinished) error {
	const retries = 3
	var err error
	for i := 0; i < retries; i++ {
		if err = s.HandleMatchFinished(ctx, finished); err == nil {
			return nil
		}
		time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
	}
	return err
}
