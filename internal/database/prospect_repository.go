package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"slotwise/models"
)

// ProspectRepository persists prospect contact records.
type ProspectRepository struct {
	db *DB
}

// NewProspectRepository creates a repository backed by the given database.
func NewProspectRepository(db *DB) *ProspectRepository {
	return &ProspectRepository{db: db}
}

const prospectColumns = `id, name, email, company, phone, notes, created_at, last_message_at`

// List returns all prospects ordered by creation time.
func (r *ProspectRepository) List(ctx context.Context) ([]models.Prospect, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+prospectColumns+` FROM prospects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing prospects: %w", err)
	}
	defer rows.Close()

	var out []models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing prospects: %w", err)
	}
	return out, nil
}

// Get returns the prospect with the given ID.
func (r *ProspectRepository) Get(ctx context.Context, id string) (models.Prospect, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+prospectColumns+` FROM prospects WHERE id = ?`, id)
	p, err := scanProspect(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Prospect{}, ErrNotFound
	}
	return p, err
}

// Insert stores a new prospect.
func (r *ProspectRepository) Insert(ctx context.Context, p models.Prospect) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prospects (id, name, email, company, phone, notes, created_at, last_message_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Company, p.Phone, p.Notes, p.CreatedAt, p.LastMessageAt,
	)
	if err != nil {
		return fmt.Errorf("inserting prospect: %w", err)
	}
	return nil
}

// Update rewrites an existing prospect.
func (r *ProspectRepository) Update(ctx context.Context, p models.Prospect) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prospects
		SET name = ?, email = ?, company = ?, phone = ?, notes = ?, last_message_at = ?
		WHERE id = ?`,
		p.Name, p.Email, p.Company, p.Phone, p.Notes, p.LastMessageAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating prospect: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the prospect with the given ID.
func (r *ProspectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prospects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting prospect: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspect(row rowScanner) (models.Prospect, error) {
	var p models.Prospect
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Company, &p.Phone, &p.Notes, &p.CreatedAt, &p.LastMessageAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Prospect{}, err
		}
		return models.Prospect{}, fmt.Errorf("reading prospect: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastMessageAt = p.LastMessageAt.UTC()
	return p, nil
}
