package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/jira-digest/internal/domain"
)

const uniqueViolation = "23505"

// ErrDuplicateConnection is returned when the unique id is already stored.
var ErrDuplicateConnection = errors.New("connection already configured")

// ConnectionRepository encapsulates stored Jira connections.
type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByID(ctx context.Context, id string) (*domain.Connection, error)
	GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Connection, error)
	List(ctx context.Context) ([]domain.Connection, error)
	Delete(ctx context.Context, id string) error
}

type connectionRepository struct {
	pool *pgxpool.Pool
}

// NewConnectionRepository instantiates repository.
func NewConnectionRepository(pool *pgxpool.Pool) ConnectionRepository {
	return &connectionRepository{pool: pool}
}

func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	const query = `
        INSERT INTO jira_connections (id, unique_id, title, base_url, username, sealed_token)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		conn.ID,
		conn.UniqueID,
		conn.Title,
		conn.BaseURL,
		conn.Username,
		conn.SealedToken,
	).Scan(&conn.CreatedAt, &conn.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateConnection
	}
	return err
}

func (r *connectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	const query = `
        SELECT id, unique_id, title, base_url, username, sealed_token, created_at, updated_at
        FROM jira_connections WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *connectionRepository) GetByUniqueID(ctx context.Context, uniqueID string) (*domain.Connection, error) {
	const query = `
        SELECT id, unique_id, title, base_url, username, sealed_token, created_at, updated_at
        FROM jira_connections WHERE unique_id=$1`
	return r.fetchSingle(ctx, query, uniqueID)
}

func (r *connectionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Connection, error) {
	var conn domain.Connection
	if err := scanConnection(r.pool.QueryRow(ctx, query, arg), &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) List(ctx context.Context) ([]domain.Connection, error) {
	const query = `
        SELECT id, unique_id, title, base_url, username, sealed_token, created_at, updated_at
        FROM jira_connections ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		if err := scanConnection(rows, &conn); err != nil {
			return nil, err
		}
		out = append(out, conn)
	}
	return out, rows.Err()
}

func (r *connectionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jira_connections WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanConnection(row pgx.Row, conn *domain.Connection) error {
	return row.Scan(
		&conn.ID,
		&conn.UniqueID,
		&conn.Title,
		&conn.BaseURL,
		&conn.Username,
		&conn.SealedToken,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
}
