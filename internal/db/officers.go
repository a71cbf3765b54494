package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kisansense/internal/models"
)

// UpsertOfficer creates or updates an officer based on their OIDC subject.
// A new officer gets the viewer role unless one is set; the role of an
// existing officer is never changed here.
func (d *DB) UpsertOfficer(ctx context.Context, officer *models.Officer) error {
	query := `
		INSERT INTO officers (sub, email, name, role)
		VALUES ($1, $2, $3, COALESCE($4, 'viewer'))
		ON CONFLICT (sub) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			updated_at = NOW()
		RETURNING id, role, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		officer.Sub,
		officer.Email,
		officer.Name,
		nullIfEmpty(officer.Role),
	).Scan(&officer.ID, &officer.Role, &officer.CreatedAt, &officer.UpdatedAt)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const officerColumns = `id, sub, email, name, role, created_at, updated_at`

func scanOfficer(row pgx.Row) (*models.Officer, error) {
	var o models.Officer
	err := row.Scan(&o.ID, &o.Sub, &o.Email, &o.Name, &o.Role, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOfficerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOfficerBySub retrieves an officer by their OIDC subject identifier.
func (d *DB) GetOfficerBySub(ctx context.Context, sub string) (*models.Officer, error) {
	return scanOfficer(d.Pool.QueryRow(ctx,
		`SELECT `+officerColumns+` FROM officers WHERE sub = $1`, sub))
}

// GetOfficerByID retrieves an officer by their UUID.
func (d *DB) GetOfficerByID(ctx context.Context, id uuid.UUID) (*models.Officer, error) {
	return scanOfficer(d.Pool.QueryRow(ctx,
		`SELECT `+officerColumns+` FROM officers WHERE id = $1`, id))
}

// ListOfficers returns all officers ordered by name.
func (d *DB) ListOfficers(ctx context.Context) ([]models.Officer, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+officerColumns+` FROM officers ORDER BY name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []models.Officer
	for rows.Next() {
		var o models.Officer
		if err := rows.Scan(&o.ID, &o.Sub, &o.Email, &o.Name, &o.Role, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

// UpdateOfficerRole changes an officer's role.
func (d *DB) UpdateOfficerRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := d.Pool.Exec(ctx,
		`UPDATE officers SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOfficerNotFound
	}
	return nil
}

// GetAdminEmails returns the email addresses of all admins.
func (d *DB) GetAdminEmails(ctx context.Context) ([]string, error) {
	rows, err := d.Pool.Query(ctx,
		`SELECT email FROM officers WHERE role = 'admin' AND email <> '' ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
