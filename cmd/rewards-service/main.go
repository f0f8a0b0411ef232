package main

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	rhttp "github.com/radieske/fan-arena-platform-poc/internal/rewards-service/http"
	rrepo "github.com/radieske/fan-arena-platform-poc/internal/rewards-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/selector"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("rewards-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "rewards-service"), zap.String("env", cfg.Env))

	// Tabelas de prêmio validadas na carga: erro aqui derruba o boot
	tables, err := selector.DefaultTables()
	if err != nil {
		log.Fatal("reward tables", zap.Error(err))
	}

	// Conexão com Postgres (giros e sequência diária)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Cliente do wallet-service: crédito de moedas e emissão de tickets premiados
	wcli := walletclient.New(cfg.WalletURL)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	api := rhttp.NewServer(log, rrepo.NewPostgres(pg), wcli, tables, rng, time.Now)

	// Servidor HTTP público (API de recompensas)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8085
		Handler: api.Router(),
	}

	// Servidor de métricas e health check
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.PingContext(ctx); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux} // ex: 9101

	// Inicia servidor de métricas/health em goroutine separada
	go func() {
		log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics srv", zap.Error(err))
		}
	}()

	// Inicia servidor principal da API de recompensas
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
