package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	chttp "github.com/radieske/fan-arena-platform-poc/internal/challenge-service/http"
	crepo "github.com/radieske/fan-arena-platform-poc/internal/challenge-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/metrics"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/walletclient"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("challenge-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", "challenge-service"), zap.String("env", cfg.Env))

	// Conexão com Postgres (desafios, inscrições, dias)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Cliente do wallet-service: cobrança de moedas ou consumo de ticket no join
	wcli := walletclient.New(cfg.WalletURL)

	repo := crepo.NewPostgres(pg)
	api := chttp.NewServer(log, repo, wcli, time.Now)

	// Servidor HTTP público (API de desafios)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8084
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (healthz faz ping no Postgres)
	metrics.StartMetricsServer(cfg.MetricsPort, pg.PingContext)
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	// Inicia servidor principal da API de desafios
	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
