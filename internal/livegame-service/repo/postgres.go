package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrEditNotAllowed = errors.New("edit not allowed")
)

type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// UpsertEntry grava (ou sobrescreve, antes do pontapé inicial) a previsão do
// jogador para a partida, junto com as respostas bônus. A sobrescrita é
// bloqueada depois que a previsão foi editada em jogo ou liquidada.
func (p *Postgres) UpsertEntry(ctx context.Context, matchID, playerID string, predHome, predAway int, answers []BonusAnswer) (*Entry, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	var entryID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO live_entries (id, match_id, player_id, pred_home, pred_away, midtime_edit, settled)
		VALUES ($1,$2,$3,$4,$5,false,false)
		ON CONFLICT (match_id, player_id) DO UPDATE
			SET pred_home = EXCLUDED.pred_home, pred_away = EXCLUDED.pred_away
			WHERE live_entries.midtime_edit = false AND live_entries.settled = false
		RETURNING id`,
		id, matchID, playerID, predHome, predAway,
	).Scan(&entryID)
	if err == sql.ErrNoRows {
		// conflito com a cláusula WHERE: entrada já editada em jogo ou liquidada
		return nil, ErrEditNotAllowed
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM live_entry_answers WHERE entry_id=$1`, entryID); err != nil {
		return nil, err
	}
	for _, a := range answers {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO live_entry_answers (entry_id, question_id, answer)
			VALUES ($1,$2,$3)`,
			entryID, a.QuestionID, a.Answer,
		); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return p.getByID(ctx, entryID)
}

// ApplyMidtimeEdit troca o palpite de placar durante a partida.
// O update condicional garante no banco que a edição acontece no máximo
// uma vez: a segunda tentativa não encontra linha e falha.
func (p *Postgres) ApplyMidtimeEdit(ctx context.Context, matchID, playerID string, predHome, predAway int) (*Entry, error) {
	var entryID string
	err := p.db.QueryRowContext(ctx, `
		UPDATE live_entries
		SET pred_home=$3, pred_away=$4, midtime_edit=true
		WHERE match_id=$1 AND player_id=$2 AND midtime_edit=false AND settled=false
		RETURNING id`,
		matchID, playerID, predHome, predAway,
	).Scan(&entryID)
	if err == sql.ErrNoRows {
		return nil, ErrEditNotAllowed
	}
	if err != nil {
		return nil, err
	}
	return p.getByID(ctx, entryID)
}

func (p *Postgres) getByID(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := p.db.QueryRowContext(ctx, `
		SELECT id, match_id, player_id, pred_home, pred_away, midtime_edit, settled,
		       score_final, bonus_total, total_points, created_at
		FROM live_entries WHERE id=$1`, id,
	).Scan(&e.ID, &e.MatchID, &e.PlayerID, &e.PredHome, &e.PredAway, &e.MidtimeEdit, &e.Settled,
		&e.ScoreFinal, &e.BonusTotal, &e.TotalPoints, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByPlayer retorna as previsões do jogador, mais recentes primeiro
func (p *Postgres) ListByPlayer(ctx context.Context, playerID string) ([]Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, match_id, player_id, pred_home, pred_away, midtime_edit, settled,
		       score_final, bonus_total, total_points, created_at
		FROM live_entries WHERE player_id=$1 ORDER BY created_at DESC`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.MatchID, &e.PlayerID, &e.PredHome, &e.PredAway, &e.MidtimeEdit, &e.Settled,
			&e.ScoreFinal, &e.BonusTotal, &e.TotalPoints, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetMatch retorna o estado atual da partida (visão de leitura)
func (p *Postgres) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	var m Match
	err := p.db.QueryRowContext(ctx, `
		SELECT id, home_team, away_team, phase, home_score, away_score, kickoff_at, version
		FROM matches WHERE id=$1`, matchID,
	).Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.Phase, &m.HomeScore, &m.AwayScore, &m.KickoffAt, &m.Version)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches retorna as partidas do dia, agendadas primeiro
func (p *Postgres) ListMatches(ctx context.Context) ([]Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, home_team, away_team, phase, home_score, away_score, kickoff_at, version
		FROM matches ORDER BY kickoff_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.HomeTeam, &m.AwayTeam, &m.Phase, &m.HomeScore, &m.AwayScore, &m.KickoffAt, &m.Version); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
