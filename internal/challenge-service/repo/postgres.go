package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa a persistência de desafios e inscrições
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrEntryNotFound     = errors.New("entry not found")
)

// GetChallenge retorna a configuração de um desafio
func (p *Postgres) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	var c Challenge
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, tier, entry_cost_cents, daily_budget_cents, duration_days, starts_at, ends_at
		FROM challenges WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.Tier, &c.EntryCostCents, &c.DailyBudgetCents, &c.DurationDays, &c.StartsAt, &c.EndsAt)
	if err == sql.ErrNoRows {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertEntry tenta criar a inscrição do jogador no desafio.
// A unique constraint (challenge_id, player_id) com ON CONFLICT DO NOTHING
// garante o join-once: dois taps concorrentes produzem exatamente uma linha.
// Retorna inserted=false com a inscrição existente quando o jogador já entrou.
func (p *Postgres) InsertEntry(ctx context.Context, challengeID, playerID, method string) (inserted bool, entry *Entry, err error) {
	id := uuid.NewString()
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO challenge_entries (id, challenge_id, player_id, entry_method, status)
		VALUES ($1,$2,$3,$4,'PENDING_PAYMENT')
		ON CONFLICT (challenge_id, player_id) DO NOTHING`,
		id, challengeID, playerID, method,
	)
	if err != nil {
		return false, nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, nil, err
	}

	e, err := p.GetEntry(ctx, challengeID, playerID)
	if err != nil {
		return false, nil, err
	}
	return n > 0, e, nil
}

// ActivateEntry confirma a inscrição após o pagamento (débito ou ticket)
func (p *Postgres) ActivateEntry(ctx context.Context, entryID, ticketID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE challenge_entries SET status='ACTIVE', ticket_id=NULLIF($2,'') WHERE id=$1`,
		entryID, ticketID,
	)
	return err
}

// DeleteEntry remove uma inscrição cujo pagamento falhou,
// liberando o jogador pra tentar de novo
func (p *Postgres) DeleteEntry(ctx context.Context, entryID string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM challenge_entries WHERE id=$1 AND status='PENDING_PAYMENT'`, entryID)
	return err
}

// GetEntry retorna a inscrição do jogador no desafio
func (p *Postgres) GetEntry(ctx context.Context, challengeID, playerID string) (*Entry, error) {
	var e Entry
	var ticketID sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT id, challenge_id, player_id, entry_method, ticket_id, status, total_points, joined_at
		FROM challenge_entries WHERE challenge_id=$1 AND player_id=$2`,
		challengeID, playerID,
	).Scan(&e.ID, &e.ChallengeID, &e.PlayerID, &e.Method, &ticketID, &e.Status, &e.TotalPoints, &e.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	e.TicketID = ticketID.String
	return &e, nil
}

// ReplaceDay substitui o registro de um dia do desafio (booster + apostas).
// A substituição é transacional: ou o dia inteiro troca, ou nada muda.
func (p *Postgres) ReplaceDay(ctx context.Context, entryID string, day int, booster string, bets []DayBet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO challenge_days (entry_id, day, booster)
		VALUES ($1,$2,$3)
		ON CONFLICT (entry_id, day) DO UPDATE SET booster = EXCLUDED.booster`,
		entryID, day, booster,
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM challenge_day_bets WHERE entry_id=$1 AND day=$2`, entryID, day); err != nil {
		return err
	}

	for _, b := range bets {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO challenge_day_bets (entry_id, day, match_id, prediction, amount_cents, odd_value, settled, points)
			VALUES ($1,$2,$3,$4,$5,$6,false,0)`,
			entryID, day, b.MatchID, b.Prediction, b.AmountCents, b.OddValue,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListDays retorna os dias registrados de uma inscrição, com suas apostas
func (p *Postgres) ListDays(ctx context.Context, entryID string) ([]Day, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT d.day, d.booster, b.match_id, b.prediction, b.amount_cents, b.odd_value
		FROM challenge_days d
		LEFT JOIN challenge_day_bets b ON b.entry_id = d.entry_id AND b.day = d.day
		WHERE d.entry_id=$1
		ORDER BY d.day`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Day
	idxByDay := map[int]int{}
	for rows.Next() {
		var day int
		var booster string
		var matchID, prediction sql.NullString
		var amount sql.NullInt64
		var odd sql.NullFloat64
		if err := rows.Scan(&day, &booster, &matchID, &prediction, &amount, &odd); err != nil {
			return nil, err
		}
		i, ok := idxByDay[day]
		if !ok {
			out = append(out, Day{Day: day, Booster: booster})
			i = len(out) - 1
			idxByDay[day] = i
		}
		if matchID.Valid {
			out[i].Bets = append(out[i].Bets, DayBet{
				MatchID:     matchID.String,
				Prediction:  prediction.String,
				AmountCents: amount.Int64,
				OddValue:    odd.Float64,
			})
		}
	}
	return out, rows.Err()
}
