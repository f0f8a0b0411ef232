package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoValidTicket = errors.New("no valid ticket")

// Ticket é o modelo persistido de um ticket de recompensa
type Ticket struct {
	ID        string
	PlayerID  string
	Tier      string
	ExpiresAt time.Time
	IsUsed    bool
	UsedRef   string
	CreatedAt time.Time
}

// IssueTicket cria um ticket não usado para o jogador no tier informado
func (p *Postgres) IssueTicket(ctx context.Context, playerID, tier string, expiresAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tickets (id, player_id, tier, expires_at, is_used)
		VALUES ($1,$2,$3,$4,false)`,
		id, playerID, tier, expiresAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ConsumeTicket marca como usado um ticket válido (não usado, não expirado) do tier.
// A transição false->true é um update condicional, então dois consumidores
// concorrentes nunca queimam o mesmo ticket. Idempotente por external_ref:
// replay devolve o ticket já consumido por aquele ref.
func (p *Postgres) ConsumeTicket(ctx context.Context, playerID, tier, externalRef string, now time.Time) (ticketID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// Replay do mesmo ref devolve o mesmo ticket
	if externalRef != "" {
		var existing string
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM tickets WHERE player_id=$1 AND used_ref=$2`, playerID, externalRef).Scan(&existing)
		if err == nil {
			return existing, tx.Commit()
		}
		if err != sql.ErrNoRows {
			return "", err
		}
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE tickets SET is_used=true, used_ref=$3, used_at=$4
		WHERE id = (
			SELECT id FROM tickets
			WHERE player_id=$1 AND tier=$2 AND is_used=false AND expires_at > $4
			ORDER BY expires_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id`,
		playerID, tier, externalRef, now,
	).Scan(&ticketID)
	if err == sql.ErrNoRows {
		return "", ErrNoValidTicket
	}
	if err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return ticketID, nil
}

// ListTickets retorna todos os tickets do jogador, inclusive usados e expirados
// (o histórico fica visível na carteira)
func (p *Postgres) ListTickets(ctx context.Context, playerID string) ([]Ticket, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, player_id, tier, expires_at, is_used, COALESCE(used_ref,''), created_at
		FROM tickets
		WHERE player_id=$1
		ORDER BY created_at DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.PlayerID, &t.Tier, &t.ExpiresAt, &t.IsUsed, &t.UsedRef, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PruneExpiredTickets remove tickets expirados antes do cutoff.
// Expirados recentes ficam no banco para o histórico da carteira.
func (p *Postgres) PruneExpiredTickets(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM tickets WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
