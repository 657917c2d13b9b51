package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"librisync/internal/platform/dbexec"
)

var dialect = goqu.Dialect("postgres")

// PostgresStore persists loans in PostgreSQL and performs the point lookups
// loan intake validates against. All calls run through the dbexec pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	exec *dbexec.Executor
}

// NewPostgres constructs a PostgreSQL-backed loan store.
func NewPostgres(pool *pgxpool.Pool, exec *dbexec.Executor) *PostgresStore {
	return &PostgresStore{pool: pool, exec: exec}
}

func (s *PostgresStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	return s.exists(ctx, "users", userID)
}

func (s *PostgresStore) BookExists(ctx context.Context, bookID int64) (bool, error) {
	return s.exists(ctx, "books", bookID)
}

func (s *PostgresStore) exists(ctx context.Context, table string, id int64) (bool, error) {
	query, args, err := dialect.From(table).
		Select("id").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build %s lookup: %w", table, err)
	}

	var found bool
	err = s.exec.Do(ctx, func() error {
		var got int64
		qerr := s.pool.QueryRow(ctx, query, args...).Scan(&got)
		if errors.Is(qerr, pgx.ErrNoRows) {
			return nil
		}
		if qerr != nil {
			return fmt.Errorf("lookup %s %d: %w", table, id, qerr)
		}
		found = true
		return nil
	})
	return found, err
}

func (s *PostgresStore) InsertLoan(ctx context.Context, userID, bookID int64) (int64, error) {
	query, args, err := dialect.Insert("loans").
		Rows(goqu.Record{"user_id": userID, "book_id": bookID}).
		Returning("id").
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build loan insert: %w", err)
	}

	var loanID int64
	err = s.exec.Do(ctx, func() error {
		if qerr := s.pool.QueryRow(ctx, query, args...).Scan(&loanID); qerr != nil {
			return fmt.Errorf("insert loan: %w", qerr)
		}
		return nil
	})
	return loanID, err
}
