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
	"librisync/internal/users/models"
	"librisync/pkg/sentinel"
)

var dialect = goqu.Dialect("postgres")

// PostgresStore reads users from PostgreSQL. All calls run through the
// dbexec pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	exec *dbexec.Executor
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(pool *pgxpool.Pool, exec *dbexec.Executor) *PostgresStore {
	return &PostgresStore{pool: pool, exec: exec}
}

func (s *PostgresStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query, args, err := dialect.From("users").
		Select("id", "name", "email").
		Where(goqu.C("id").Eq(userID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}

	var user models.User
	err = s.exec.Do(ctx, func() error {
		qerr := s.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.Name, &user.Email)
		if errors.Is(qerr, pgx.ErrNoRows) {
			return fmt.Errorf("user %d: %w", userID, sentinel.ErrNotFound)
		}
		if qerr != nil {
			return fmt.Errorf("lookup user %d: %w", userID, qerr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query, args, err := dialect.From("users").
		Select("id", "name", "email").
		Order(goqu.I("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users query: %w", err)
	}

	var users []models.User
	err = s.exec.Do(ctx, func() error {
		rows, qerr := s.pool.Query(ctx, query, args...)
		if qerr != nil {
			return fmt.Errorf("query users: %w", qerr)
		}
		defer rows.Close()

		for rows.Next() {
			var u models.User
			if serr := rows.Scan(&u.ID, &u.Name, &u.Email); serr != nil {
				return fmt.Errorf("scan user: %w", serr)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
