package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"

	"librisync/internal/books/models"
	"librisync/internal/platform/dbexec"
)

var dialect = goqu.Dialect("postgres")

// PostgresStore persists books in PostgreSQL. All calls run through the
// dbexec pool so in-flight database work stays bounded.
type PostgresStore struct {
	pool *pgxpool.Pool
	exec *dbexec.Executor
}

// NewPostgres constructs a PostgreSQL-backed book store.
func NewPostgres(pool *pgxpool.Pool, exec *dbexec.Executor) *PostgresStore {
	return &PostgresStore{pool: pool, exec: exec}
}

func (s *PostgresStore) ListBooks(ctx context.Context) ([]models.Book, error) {
	query, args, err := dialect.From("books").
		Select("id", "title", "available").
		Order(goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list books query: %w", err)
	}

	var books []models.Book
	err = s.exec.Do(ctx, func() error {
		rows, qerr := s.pool.Query(ctx, query, args...)
		if qerr != nil {
			return fmt.Errorf("query books: %w", qerr)
		}
		defer rows.Close()

		for rows.Next() {
			var b models.Book
			if serr := rows.Scan(&b.ID, &b.Title, &b.Available); serr != nil {
				return fmt.Errorf("scan book: %w", serr)
			}
			books = append(books, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (s *PostgresStore) SetAvailability(ctx context.Context, bookID int64, available bool) error {
	query, args, err := dialect.Update("books").
		Set(goqu.Record{"available": available}).
		Where(goqu.C("id").Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build availability update: %w", err)
	}

	return s.exec.Do(ctx, func() error {
		// Zero rows affected means the book id is unknown; the consumer
		// treats that as success, not an error.
		if _, xerr := s.pool.Exec(ctx, query, args...); xerr != nil {
			return fmt.Errorf("update book availability: %w", xerr)
		}
		return nil
	})
}
