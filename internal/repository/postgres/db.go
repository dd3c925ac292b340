package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"shopbill/internal/config"
	"shopbill/internal/port"
)

const uniqueViolation = "23505"

// NewDB creates a new PostgreSQL connection pool. The caller owns it and must Close it on shutdown.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

type txManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager that opens read-committed transactions on db.
func NewTxManager(db *sqlx.DB) port.TxManager {
	return &txManager{db: db}
}

func (m *txManager) Begin(ctx context.Context) (port.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("txManager.Begin: %w", err)
	}
	return tx, nil
}

// unwrapTx recovers the *sqlx.Tx behind a port.Tx.
func unwrapTx(tx port.Tx) (*sqlx.Tx, error) {
	stx, ok := tx.(*sqlx.Tx)
	if !ok || stx == nil {
		return nil, fmt.Errorf("postgres: unsupported transaction type %T", tx)
	}
	return stx, nil
}

// queryer picks tx when present, otherwise the pool.
func queryer(db *sqlx.DB, tx port.Tx) (sqlx.ExtContext, error) {
	if tx == nil {
		return db, nil
	}
	return unwrapTx(tx)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
