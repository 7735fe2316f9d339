package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"pledge/internal/pledge/models"
)

// Postgres persists pledges in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (s *Postgres) Create(ctx context.Context, pledge *models.Pledge) error {
	query := `
		INSERT INTO pledges (
			id, donation_time, fundraising_round,
			email, occupation, employer, phone, target,
			amount_cents, customer_ref, note
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		pledge.ID,
		pledge.DonationTime,
		pledge.FundraisingRound,
		pledge.Email,
		pledge.Occupation,
		pledge.Employer,
		pledge.Phone,
		pledge.Target,
		pledge.AmountCents,
		pledge.Customer,
		pledge.Note,
	)
	if err != nil {
		return fmt.Errorf("insert pledge: %w", err)
	}
	return nil
}

func (s *Postgres) SumAmounts(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM pledges`,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum pledge amounts: %w", err)
	}
	return total, nil
}
