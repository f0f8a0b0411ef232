package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/fan-arena-platform-poc/internal/shared/config"
	"github.com/radieske/fan-arena-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func target(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("api-gateway", cfg.Env)
	defer log.Sync()

	wallet := rp(target("WALLET_URL", "http://localhost:8082"))
	bet := rp(target("BET_URL", "http://localhost:8083"))
	challenge := rp(target("CHALLENGE_URL", "http://localhost:8084"))
	live := rp(target("LIVEGAME_URL", "http://localhost:8080"))
	rewards := rp(target("REWARDS_URL", "http://localhost:8085"))

	mux := http.NewServeMux()

	// wallet (ex.: /api/wallet/* -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// bets (ex.: /api/bets/* -> bet-service)
	mux.Handle("/api/bets/", http.StripPrefix("/api/bets", bet))

	// challenges (ex.: /api/challenges/* -> challenge-service)
	mux.Handle("/api/challenges/", http.StripPrefix("/api/challenges", challenge))

	// live (ex.: /api/live/* -> livegame-service; inclui o /ws)
	mux.Handle("/api/live/", http.StripPrefix("/api/live", live))

	// rewards (ex.: /api/rewards/* -> rewards-service)
	mux.Handle("/api/rewards/", http.StripPrefix("/api/rewards", rewards))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
