package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/fan-arena-platform-poc/internal/rewards-service/streak"
)

var (
	ErrNoSpinsAvailable = errors.New("no spins available")
	ErrAlreadyClaimed   = errors.New("already claimed")
)

// Streak é o estado da sequência de resgates diários de um jogador
type Streak struct {
	PlayerID     string
	CurrentDay   int
	LastClaimAt  time.Time
	neverClaimed bool
}

// NeverClaimed indica que o jogador ainda não fez nenhum resgate
func (s *Streak) NeverClaimed() bool { return s.neverClaimed }

type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// DecrementSpin consome um giro do jogador no tier.
// O update condicional (available_spins > 0) garante no banco que dois
// giros concorrentes não levam o contador abaixo de zero.
func (p *Postgres) DecrementSpin(ctx context.Context, playerID, tier string) (remaining int, err error) {
	err = p.db.QueryRowContext(ctx, `
		UPDATE spin_state
		SET available_spins = available_spins - 1
		WHERE player_id=$1 AND tier=$2 AND available_spins > 0
		RETURNING available_spins`,
		playerID, tier,
	).Scan(&remaining)
	if err == sql.ErrNoRows {
		return 0, ErrNoSpinsAvailable
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// GetSpins retorna os giros disponíveis; jogador sem linha tem zero
func (p *Postgres) GetSpins(ctx context.Context, playerID, tier string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT available_spins FROM spin_state WHERE player_id=$1 AND tier=$2`,
		playerID, tier,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RecordSpin grava o resultado de um giro no histórico.
// O id vem do handler: é o mesmo usado como ref idempotente na premiação.
func (p *Postgres) RecordSpin(ctx context.Context, id, playerID, tier, rewardID string) error {
	if id == "" {
		id = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO spin_history (id, player_id, tier, reward_id, created_at)
		VALUES ($1,$2,$3,$4,NOW())`,
		id, playerID, tier, rewardID,
	)
	return err
}

// ReplenishSpins repõe os giros diários de todos os jogadores de um tier.
// Chamado pelo daily-reset-worker; a reposição é um set, não um incremento.
func (p *Postgres) ReplenishSpins(ctx context.Context, tier string, spins int) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE spin_state SET available_spins=$2 WHERE tier=$1 AND available_spins < $2`,
		tier, spins,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetStreak retorna a sequência do jogador; sem linha é sequência nova
func (p *Postgres) GetStreak(ctx context.Context, playerID string) (*Streak, error) {
	s := Streak{PlayerID: playerID}
	var last sql.NullTime
	err := p.db.QueryRowContext(ctx,
		`SELECT current_day, last_claim_at FROM streaks WHERE player_id=$1`,
		playerID,
	).Scan(&s.CurrentDay, &last)
	if err == sql.ErrNoRows {
		s.neverClaimed = true
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastClaimAt = last.Time
	s.neverClaimed = !last.Valid
	return &s, nil
}

// ClaimStreak efetiva o resgate diário do jogador.
// A linha é travada com FOR UPDATE e a elegibilidade revalidada dentro da
// transação: dois resgates simultâneos nunca avançam a sequência duas vezes.
func (p *Postgres) ClaimStreak(ctx context.Context, playerID string, now time.Time) (day int, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// garante a linha antes do lock
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO streaks (player_id, current_day)
		VALUES ($1, 0)
		ON CONFLICT (player_id) DO NOTHING`, playerID); err != nil {
		return 0, err
	}

	var currentDay int
	var last sql.NullTime
	if err = tx.QueryRowContext(ctx,
		`SELECT current_day, last_claim_at FROM streaks WHERE player_id=$1 FOR UPDATE`,
		playerID,
	).Scan(&currentDay, &last); err != nil {
		return 0, err
	}

	var lastAt time.Time
	if last.Valid {
		lastAt = last.Time
	}
	elig := streak.Evaluate(lastAt, now)
	if elig == streak.AlreadyClaimed {
		return 0, ErrAlreadyClaimed
	}
	day = streak.NextDay(currentDay, elig)

	if _, err = tx.ExecContext(ctx,
		`UPDATE streaks SET current_day=$2, last_claim_at=$3 WHERE player_id=$1`,
		playerID, day, now,
	); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return day, nil
}
