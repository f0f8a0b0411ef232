package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira (moedas e tickets) em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// GetOrCreateWallet retorna o walletId e saldo de um jogador, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, playerID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_cents FROM wallets WHERE player_id=$1`, playerID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, player_id, balance_cents, version) VALUES($1,$2,0,1)`,
			id, playerID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Credit incrementa o saldo da carteira e registra a operação no ledger.
// Idempotente por (wallet_id, external_ref): replay devolve o saldo atual sem reaplicar.
// Garante lock pessimista na linha da carteira.
func (p *Postgres) Credit(ctx context.Context, playerID string, amount int64, externalRef string) (newBalance int64, err error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE player_id=$1 FOR UPDATE`, playerID).Scan(&walletID); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}

	applied, err := refAlreadyApplied(ctx, tx, walletID, externalRef)
	if err != nil {
		return 0, err
	}

	if !applied {
		if _, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1 WHERE id=$2`,
			amount, walletID); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, external_ref) VALUES($1,'CREDIT',$2,$3)`,
			walletID, amount, externalRef); err != nil {
			return 0, err
		}
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit desconta o saldo da carteira, falhando com ErrInsufficientFunds se o saldo
// for menor que o valor. A verificação e o débito acontecem sob lock da linha da
// carteira, então o saldo nunca fica negativo mesmo com chamadas concorrentes.
// Idempotente por (wallet_id, external_ref).
func (p *Postgres) Debit(ctx context.Context, playerID string, amount int64, externalRef string) (newBalance int64, err error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	if err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE player_id=$1 FOR UPDATE`, playerID).Scan(&walletID, &balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}

	applied, err := refAlreadyApplied(ctx, tx, walletID, externalRef)
	if err != nil {
		return 0, err
	}

	if !applied {
		if balance < amount {
			return 0, ErrInsufficientFunds
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1 WHERE id=$2`,
			amount, walletID); err != nil {
			return 0, err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallet_ledger(wallet_id, operation_type, amount_cents, external_ref) VALUES($1,'DEBIT',$2,$3)`,
			walletID, amount, externalRef); err != nil {
			return 0, err
		}
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_cents FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// refAlreadyApplied verifica se um external_ref já foi aplicado nesta carteira.
// Refs vazios nunca são tratados como replay.
func refAlreadyApplied(ctx context.Context, tx *sql.Tx, walletID, externalRef string) (bool, error) {
	if externalRef == "" {
		return false, nil
	}
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM wallet_ledger WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
