package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	lcache "github.com/radieske/fan-arena-platform-poc/internal/livegame-service/cache"
	lhttp "github.com/radieske/fan-arena-platform-poc/internal/livegame-service/http"
	lrepo "github.com/radieske/fan-arena-platform-poc/internal/livegame-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/livegame-service/ws"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/cache"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("livegame-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "livegame-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres (previsões e visão de leitura das partidas)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: fase da partida, snapshot de placar e pub/sub do broadcast
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	liveCache := lcache.New(redisClient)

	// Hub WebSocket alimentado pelo canal de broadcast de placares
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // CORS liberado no PoC
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub)

	api := &lhttp.API{
		Log:    log,
		Repo:   lrepo.NewPostgres(pg),
		Phases: liveCache,
		Cache:  liveCache,
		Hub:    hub,
	}

	// Servidor HTTP público (API de jogo ao vivo + WebSocket)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8080
		Handler: api.Router(),
	}

	// Servidor de métricas e health check
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hctx, hcancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer hcancel()
		if err := pg.PingContext(hctx); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(hctx).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux} // ex: 9095

	go func() {
		log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics srv", zap.Error(err))
		}
	}()

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
