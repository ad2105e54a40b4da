package postgres

import (
	"context"
	"database/sql"

	"pet-adoption-api/internal/domain/messages"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Create(ctx context.Context, m messages.Message) (messages.Message, error) {
	// seq lo asigna la bigserial; inmutable desde acá en adelante
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, application_id, sender_user_id, content, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING seq
	`,
		m.ID, m.ApplicationID, m.SenderUserID, m.Content, m.CreatedAt,
	)
	if err := row.Scan(&m.Seq); err != nil {
		return messages.Message{}, err
	}
	return m, nil
}

func (r *MessagesRepo) ListByApplication(ctx context.Context, applicationID string) ([]messages.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, application_id, sender_user_id, content, seq, created_at
		FROM messages
		WHERE application_id = $1
		ORDER BY created_at ASC, seq ASC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]messages.Message, 0)
	for rows.Next() {
		var m messages.Message
		if err := rows.Scan(&m.ID, &m.ApplicationID, &m.SenderUserID, &m.Content, &m.Seq, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ messages.Repository = (*MessagesRepo)(nil)
