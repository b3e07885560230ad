package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/njrotc-portal-api/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// Recorder persists submission outcomes. Handlers treat a nil Recorder as "logging disabled".
type Recorder interface {
	RecordSubmission(ctx context.Context, s models.Submission) error
}

// PostgresStore is the durable submission log.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// RecordSubmission inserts one submission outcome. A zero ID or timestamp is filled in.
func (p *PostgresStore) RecordSubmission(ctx context.Context, s models.Submission) error {
	if s.Form == "" || s.Outcome == "" {
		return errors.New("form/outcome required")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO submissions(id, form, full_name, school_id, grade, email, category, outcome, error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, s.ID, s.Form, s.FullName, s.SchoolID, s.Grade, s.Email, s.Category, s.Outcome, s.Error, s.CreatedAt)
	return err
}

// CountSubmissions returns the number of submissions for form in the window [from,to).
// Using a half-open interval avoids double counting at window boundaries.
func (p *PostgresStore) CountSubmissions(
	ctx context.Context,
	form string,
	from time.Time,
	to time.Time,
) (int64, error) {

	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM submissions
		WHERE form=$1
		  AND created_at >= $2
		  AND created_at <  $3
	`, form, from, to).Scan(&count)

	return count, err
}
