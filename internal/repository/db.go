package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"matrimony-backend/internal/models"
)

// ErrNotFound is returned when a queried row does not exist
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is the set of operations available inside one unit of work
type Tx interface {
	LockProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	ListPhotos(ctx context.Context, profileID string) ([]*models.Photo, error)
	ReplacePhotos(ctx context.Context, profileID string, photos []*models.Photo) error
	ListPendingByUser(ctx context.Context, userID string) ([]*models.PendingFieldUpdate, error)
	UpsertPending(ctx context.Context, u *models.PendingFieldUpdate) error
	DeletePendingField(ctx context.Context, userID, field string) error
	LockPending(ctx context.Context, id string) (*models.PendingFieldUpdate, error)
	DeletePending(ctx context.Context, id string) error
}

// queries holds every statement; it runs against the pool or a transaction
type queries struct {
	db DBTX
}

// Store is the PostgreSQL-backed store
type Store struct {
	*queries
	pool *pgxpool.Pool
}

// NewStore creates a new store over a connection pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{queries: &queries{db: pool}, pool: pool}
}

// InTx runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error or panic rolls it back.
func (s *Store) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
