package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"

	"github.com/radieske/fan-arena-platform-poc/internal/match-state/cache"
	"github.com/radieske/fan-arena-platform-poc/internal/match-state/consumer"
	"github.com/radieske/fan-arena-platform-poc/internal/match-state/pubsub"
	"github.com/radieske/fan-arena-platform-poc/internal/match-state/repository"
	sharedcache "github.com/radieske/fan-arena-platform-poc/internal/shared/cache"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	sharedkafka "github.com/radieske/fan-arena-platform-poc/internal/shared/kafka"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("match-state-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Cache de fase/snapshot e visão de leitura das partidas
	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer Kafka (consumer group match-state)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "match-state",
		Topic:    cfg.TopicMatchUpdates,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Producer do evento match_finished (liquidação downstream)
	finishedWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinished)
	defer finishedWriter.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_state_messages_consumed_total", Help: "mensagens consumidas"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_state_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_state_db_writes_total", Help: "escritas no banco (upsert+history)"})
	finished := prometheus.NewCounter(prometheus.CounterOpts{Name: "match_state_finished_emitted_total", Help: "eventos match_finished emitidos"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "match_state_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, persist, finished, errorsBy)

	// Broadcaster para o canal Pub/Sub consumido pelo WS do livegame-service
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o processor, conectando callbacks de métricas e broadcast
	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		Cache:      rcache,
		OnConsumed: func() { consumed.Inc() },
		OnCached:   func() { cached.Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após persistir, repassa o update para o WebSocket via Redis Pub/Sub
		OnAfterPersist: func(ev events.MatchUpdate) {
			b, _ := json.Marshal(ev)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, cfg.RedisPubSubChannel, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},

		// Transição para FINISHED: emite match_finished com placar e gabarito
		OnFinished: func(ev events.MatchFinished) {
			b, _ := json.Marshal(ev)

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := sharedkafka.WriteJSON(ctx, finishedWriter, ev.MatchID, b); err != nil {
				log.Error("publish match_finished", zap.String("matchId", ev.MatchID), zap.Error(err))
				return
			}
			finished.Inc()
			log.Info("match finished",
				zap.String("matchId", ev.MatchID),
				zap.Int("home", ev.FinalScore.Home),
				zap.Int("away", ev.FinalScore.Away),
			)
		},
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("match-state-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("match-state-worker stopped")
}
