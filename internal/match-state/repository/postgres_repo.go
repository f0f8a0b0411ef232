package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/fan-arena-platform-poc/pkg/contracts/events"
)

// PostgresRepo mantém a visão de leitura das partidas e o histórico de updates
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertMatch insere ou atualiza a partida e retorna a fase anterior.
// O CTE lê a fase antes do upsert: prevPhase vazio significa partida nova.
// A cláusula WHERE ignora updates com versão antiga (reentrega fora de ordem).
func (r *PostgresRepo) UpsertMatch(ctx context.Context, e events.MatchUpdate) (prevPhase string, err error) {
	const q = `
		WITH old AS (SELECT phase FROM matches WHERE id = $1)
		INSERT INTO matches
		  (id, home_team, away_team, phase, home_score, away_score, kickoff_at, version, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
		  phase      = EXCLUDED.phase,
		  home_score = EXCLUDED.home_score,
		  away_score = EXCLUDED.away_score,
		  version    = EXCLUDED.version,
		  updated_at = EXCLUDED.updated_at
		WHERE matches.version < EXCLUDED.version
		RETURNING COALESCE((SELECT phase FROM old), '')
	`
	err = r.DB.QueryRowContext(ctx, q,
		e.MatchID, e.HomeTeam, e.AwayTeam, e.Phase,
		e.Score.Home, e.Score.Away,
		e.KickoffAt, e.Version, e.UpdatedAt,
	).Scan(&prevPhase)
	if err == sql.ErrNoRows {
		// update velho descartado pelo guard de versão
		return e.Phase, nil
	}
	return prevPhase, err
}

// InsertHistory insere o update no histórico da partida (match_history)
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.MatchUpdate) error {
	const q = `
		INSERT INTO match_history
		  (match_id, phase, home_score, away_score, version, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.MatchID, e.Phase, e.Score.Home, e.Score.Away, e.Version, e.UpdatedAt,
	)
	return err
}
