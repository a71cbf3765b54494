package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kisansense/internal/models"
)

const contactColumns = `id, name, phone, village, language, message, status, resolved_by, resolved_at, created_at`

// CreateContactMessage stores a new open message.
func (d *DB) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (name, phone, village, language, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, created_at
	`
	return d.Pool.QueryRow(ctx, query,
		msg.Name, msg.Phone, msg.Village, msg.Language, msg.Message,
	).Scan(&msg.ID, &msg.Status, &msg.CreatedAt)
}

func scanContactMessage(row pgx.Row, m *models.ContactMessage) error {
	return row.Scan(&m.ID, &m.Name, &m.Phone, &m.Village, &m.Language, &m.Message,
		&m.Status, &m.ResolvedBy, &m.ResolvedAt, &m.CreatedAt)
}

// GetContactMessageByID retrieves one message.
func (d *DB) GetContactMessageByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := scanContactMessage(d.Pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id), &m)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrContactMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListContactMessages returns messages newest first. An empty status lists
// all messages.
func (d *DB) ListContactMessages(ctx context.Context, status string, limit int) ([]models.ContactMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		if err := scanContactMessage(rows, &m); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountOpenContactMessages returns how many messages await an officer.
func (d *DB) CountOpenContactMessages(ctx context.Context) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE status = 'open'`).Scan(&count)
	return count, err
}

// ResolveContactMessage marks a message resolved by an officer.
func (d *DB) ResolveContactMessage(ctx context.Context, id, officerID uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE contact_messages
		SET status = 'resolved', resolved_by = $2, resolved_at = NOW()
		WHERE id = $1 AND status = 'open'
	`, id, officerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a missing message from one already closed
	if _, err := d.GetContactMessageByID(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyResolved
}
