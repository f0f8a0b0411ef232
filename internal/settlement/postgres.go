package settlement

import (
	"context"
	"database/sql"
)

// PostgresStores implementa os stores de liquidação sobre o mesmo banco
// que os serviços de escrita usam. O worker só faz updates condicionais
// e recomputos, nunca inserts de domínio.
type PostgresStores struct{ DB *sql.DB }

func NewPostgresStores(db *sql.DB) *PostgresStores { return &PostgresStores{DB: db} }

func (p *PostgresStores) ListPendingBets(ctx context.Context, matchID string) ([]PendingBet, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, player_id, match_id, prediction, stake_cents, odd_value
		FROM bets WHERE match_id=$1 AND status='PENDING'`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingBet
	for rows.Next() {
		var b PendingBet
		if err := rows.Scan(&b.ID, &b.PlayerID, &b.MatchID, &b.Prediction, &b.StakeCents, &b.OddValue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkSettled fecha a aposta; o WHERE status='PENDING' pula apostas já
// terminais quando o evento é reentregue
func (p *PostgresStores) MarkSettled(ctx context.Context, betID, status string) (bool, error) {
	res, err := p.DB.ExecContext(ctx,
		`UPDATE bets SET status=$2, updated_at=NOW() WHERE id=$1 AND status='PENDING'`,
		betID, status,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (p *PostgresStores) ListEntries(ctx context.Context, matchID string) ([]LiveEntry, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT e.id, e.player_id, e.pred_home, e.pred_away, e.midtime_edit,
		       a.question_id, a.answer
		FROM live_entries e
		LEFT JOIN live_entry_answers a ON a.entry_id = e.id
		WHERE e.match_id=$1
		ORDER BY e.id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LiveEntry
	idxByID := map[string]int{}
	for rows.Next() {
		var id, playerID string
		var predHome, predAway int
		var midtime bool
		var qid, answer sql.NullString
		if err := rows.Scan(&id, &playerID, &predHome, &predAway, &midtime, &qid, &answer); err != nil {
			return nil, err
		}
		i, ok := idxByID[id]
		if !ok {
			out = append(out, LiveEntry{
				ID: id, PlayerID: playerID,
				PredHome: predHome, PredAway: predAway,
				MidtimeEdit: midtime,
				Answers:     map[string]string{},
			})
			i = len(out) - 1
			idxByID[id] = i
		}
		if qid.Valid {
			out[i].Answers[qid.String] = answer.String
		}
	}
	return out, rows.Err()
}

func (p *PostgresStores) WriteScore(ctx context.Context, entryID string, scoreFinal, bonusTotal, totalPoints int) error {
	_, err := p.DB.ExecContext(ctx, `
		UPDATE live_entries
		SET score_final=$2, bonus_total=$3, total_points=$4, settled=true
		WHERE id=$1`,
		entryID, scoreFinal, bonusTotal, totalPoints,
	)
	return err
}

func (p *PostgresStores) ListUnsettledDayBets(ctx context.Context, matchID string) ([]ChallengeDayBet, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT b.entry_id, b.day, b.match_id, b.prediction, b.amount_cents, b.odd_value, d.booster
		FROM challenge_day_bets b
		JOIN challenge_days d ON d.entry_id = b.entry_id AND d.day = b.day
		WHERE b.match_id=$1 AND b.settled=false`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChallengeDayBet
	for rows.Next() {
		var b ChallengeDayBet
		if err := rows.Scan(&b.EntryID, &b.Day, &b.MatchID, &b.Prediction, &b.AmountCents, &b.OddValue, &b.Booster); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *PostgresStores) SettleDayBet(ctx context.Context, entryID string, day int, matchID string, points int) (bool, error) {
	res, err := p.DB.ExecContext(ctx, `
		UPDATE challenge_day_bets SET settled=true, points=$4
		WHERE entry_id=$1 AND day=$2 AND match_id=$3 AND settled=false`,
		entryID, day, matchID, points,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RecomputeEntryTotal regrava o total da inscrição a partir da soma dos dias
func (p *PostgresStores) RecomputeEntryTotal(ctx context.Context, entryID string) error {
	_, err := p.DB.ExecContext(ctx, `
		UPDATE challenge_entries
		SET total_points = (
			SELECT COALESCE(SUM(points), 0) FROM challenge_day_bets WHERE entry_id=$1
		)
		WHERE id=$1`, entryID)
	return err
}
