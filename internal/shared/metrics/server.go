// Package metrics sobe o sidecar de observabilidade de cada serviço.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthFunc responde se a dependência principal do serviço está acessível;
// na prática os serviços passam o PingContext do Postgres.
type HealthFunc func(ctx context.Context) error

// StartMetricsServer expõe /metrics e /healthz numa porta separada da API,
// pra o scrape do Prometheus e o probe do orquestrador não disputarem com
// tráfego de jogador. Roda numa goroutine própria; o handle retornado serve
// pra Shutdown no encerramento do serviço.
func StartMetricsServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			http.Error(w, fmt.Sprintf("unhealthy: %v", err), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
