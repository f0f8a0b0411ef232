// Package logger monta o zap padrão dos serviços da plataforma.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New cria o logger do serviço: JSON em produção, console colorido em
// ambiente local. Todos os serviços (wallet, bets, challenges, workers)
// carimbam service e env em cada linha pra dar filtro no agregador.
func New(serviceName string, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	// stacktrace só em local; em produção o campo error já basta
	cfg.DisableStacktrace = env != "local"

	return cfg.Build(
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("env", env),
		),
	)
}
