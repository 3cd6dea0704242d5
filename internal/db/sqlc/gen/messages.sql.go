// Query methods for internal/db/queries/messages.sql.

package gen

import (
	"context"
)

const createMessage = `-- name: CreateMessage :one
INSERT INTO messages (family_id, user_id, message)
VALUES ($1, $2, $3)
RETURNING id, family_id, user_id, message, created_at
`

type CreateMessageParams struct {
	FamilyID string
	UserID   string
	Message  string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage, arg.FamilyID, arg.UserID, arg.Message)
	var i Message
	err := row.Scan(
		&i.ID,
		&i.FamilyID,
		&i.UserID,
		&i.Message,
		&i.CreatedAt,
	)
	return i, err
}
