package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	rewardsrepo "github.com/radieske/fan-arena-platform-poc/internal/rewards-service/repo"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/db"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
	walletrepo "github.com/radieske/fan-arena-platform-poc/internal/wallet-service/repo"
)

// Giros diários por tier; a reposição é um set, nunca acumula sobras
var dailySpins = map[string]int{
	"ROOKIE": 1,
	"PRO":    2,
	"ELITE":  3,
}

// Tickets expirados ficam visíveis no histórico por 30 dias antes da limpeza
const ticketRetention = 30 * 24 * time.Hour

var (
	spinsReplenished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "daily_reset_spins_replenished_total",
		Help: "Jogadores com giros repostos, por tier",
	}, []string{"tier"})
	ticketsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daily_reset_tickets_pruned_total",
		Help: "Tickets expirados removidos",
	})
	jobErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "daily_reset_job_errors_total",
		Help: "Erros nas tarefas diárias",
	}, []string{"job"})
)

func main() {
	cfg := config.Load()
	log, err := logger.New("daily-reset-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(spinsReplenished, ticketsPruned, jobErrors)

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pg.Close()

	rewards := rewardsrepo.NewPostgres(pg)
	wallet := walletrepo.NewPostgres(pg)

	replenish := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for tier, spins := range dailySpins {
			n, err := rewards.ReplenishSpins(ctx, tier, spins)
			if err != nil {
				jobErrors.WithLabelValues("replenish_spins").Inc()
				log.Error("spin replenish failed", zap.String("tier", tier), zap.Error(err))
				continue
			}
			spinsReplenished.WithLabelValues(tier).Add(float64(n))
			log.Info("spins replenished", zap.String("tier", tier), zap.Int64("players", n))
		}
	}

	prune := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cutoff := time.Now().UTC().Add(-ticketRetention)
		n, err := wallet.PruneExpiredTickets(ctx, cutoff)
		if err != nil {
			jobErrors.WithLabelValues("prune_tickets").Inc()
			log.Error("ticket prune failed", zap.Error(err))
			return
		}
		ticketsPruned.Add(float64(n))
		log.Info("expired tickets pruned", zap.Int64("tickets", n), zap.Time("cutoff", cutoff))
	}

	c := cron.New(cron.WithLocation(time.UTC))
	// Meia-noite UTC: reposição de giros e limpeza de tickets antigos.
	// A sequência diária não é tocada aqui: quem governa ela é a janela de 24h/48h.
	if _, err := c.AddFunc("0 0 * * *", replenish); err != nil {
		log.Fatal("cron schedule failed", zap.Error(err))
	}
	if _, err := c.AddFunc("30 0 * * *", prune); err != nil {
		log.Fatal("cron schedule failed", zap.Error(err))
	}
	c.Start()
	log.Info("daily reset scheduler started", zap.String("tz", "UTC"))

	// Uma passada na subida cobre deploys que perderam a meia-noite
	replenish()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown signal received")
	stopCtx := c.Stop()
	<-stopCtx.Done()
}
