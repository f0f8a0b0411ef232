package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Postgres implementa a persistência do ledger de apostas
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	// ErrDuplicateBet indica que já existe aposta do jogador para a partida
	ErrDuplicateBet = errors.New("duplicate bet for match")
	// ErrInvalidState indica transição ilegal (ex: modificar aposta não pendente)
	ErrInvalidState = errors.New("invalid bet state transition")
	ErrNotFound     = errors.New("bet not found")
)

// CreatePending insere uma nova aposta PENDING.
// A unique constraint (player_id, match_id) garante no máximo uma aposta por partida;
// violação vira ErrDuplicateBet para o handler redirecionar ao fluxo de modificação.
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id,player_id,match_id,prediction,stake_cents,odd_value,status,version)
		VALUES ($1,$2,$3,$4,$5,$6,'PENDING',1)`,
		id, b.PlayerID, b.MatchID, b.Prediction, b.StakeCents, b.OddValue,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrDuplicateBet
		}
		return "", err
	}
	return id, nil
}

// GetByPlayerAndMatch retorna a aposta do jogador para a partida
func (p *Postgres) GetByPlayerAndMatch(ctx context.Context, playerID, matchID string) (*Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, player_id, match_id, prediction, stake_cents, odd_value, status, version, created_at, updated_at
		FROM bets WHERE player_id=$1 AND match_id=$2`,
		playerID, matchID,
	).Scan(&b.ID, &b.PlayerID, &b.MatchID, &b.Prediction, &b.StakeCents, &b.OddValue, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdatePending substitui palpite, valor e odd de uma aposta ainda PENDING.
// Update condicional por status e versão: se a aposta foi liquidada ou modificada
// no meio do caminho, nenhuma linha é afetada e o chamador recebe ErrInvalidState.
func (p *Postgres) UpdatePending(ctx context.Context, betID string, expectedVersion int, prediction string, stakeCents int64, oddValue float64) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets
		SET prediction=$1, stake_cents=$2, odd_value=$3, version=version+1, updated_at=NOW()
		WHERE id=$4 AND status='PENDING' AND version=$5`,
		prediction, stakeCents, oddValue, betID, expectedVersion,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

// DeletePending remove uma aposta ainda PENDING, devolvendo o valor apostado.
// Usado apenas pra desfazer uma aposta recém-criada quando o débito falha.
func (p *Postgres) DeletePending(ctx context.Context, playerID, matchID string) (stakeCents int64, betID string, err error) {
	err = p.db.QueryRowContext(ctx, `
		DELETE FROM bets
		WHERE player_id=$1 AND match_id=$2 AND status='PENDING'
		RETURNING id, stake_cents`,
		playerID, matchID,
	).Scan(&betID, &stakeCents)
	if err == sql.ErrNoRows {
		return 0, "", ErrInvalidState
	}
	if err != nil {
		return 0, "", err
	}
	return stakeCents, betID, nil
}

// MarkCancelled tira a aposta do jogo antes do estorno. Aceitar uma linha já
// CANCELLED torna a operação repetível: um cancel cujo crédito falhou pode ser
// reexecutado até o estorno completar. Apostas liquidadas não entram aqui.
func (p *Postgres) MarkCancelled(ctx context.Context, playerID, matchID string) (stakeCents int64, betID string, err error) {
	err = p.db.QueryRowContext(ctx, `
		UPDATE bets
		SET status='CANCELLED', updated_at=NOW()
		WHERE player_id=$1 AND match_id=$2 AND status IN ('PENDING','CANCELLED')
		RETURNING id, stake_cents`,
		playerID, matchID,
	).Scan(&betID, &stakeCents)
	if err == sql.ErrNoRows {
		return 0, "", ErrInvalidState
	}
	if err != nil {
		return 0, "", err
	}
	return stakeCents, betID, nil
}

// DeleteCancelled remove a linha de uma aposta cancelada após o estorno
func (p *Postgres) DeleteCancelled(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1 AND status='CANCELLED'`, betID)
	return err
}

// ListByPlayer retorna as apostas do jogador, mais recentes primeiro
func (p *Postgres) ListByPlayer(ctx context.Context, playerID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, player_id, match_id, prediction, stake_cents, odd_value, status, version, created_at, updated_at
		FROM bets WHERE player_id=$1
		ORDER BY created_at DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.MatchID, &b.Prediction, &b.StakeCents, &b.OddValue, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetPlayerLevel lê o nível do jogador para o teto de aposta.
// Jogador desconhecido entra no nível 1.
func (p *Postgres) GetPlayerLevel(ctx context.Context, playerID string) (int, error) {
	var level int
	err := p.db.QueryRowContext(ctx, `SELECT level FROM players WHERE id=$1`, playerID).Scan(&level)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return level, nil
}
