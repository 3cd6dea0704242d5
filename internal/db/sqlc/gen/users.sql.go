// Query methods for internal/db/queries/users.sql.

package gen

import (
	"context"
	"database/sql"
	"time"
)

const createFamily = `-- name: CreateFamily :one
INSERT INTO families (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $4)
RETURNING id, name, created_at, updated_at
`

type CreateFamilyParams struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (q *Queries) CreateFamily(ctx context.Context, arg CreateFamilyParams) (Family, error) {
	row := q.db.QueryRowContext(ctx, createFamily,
		arg.ID,
		arg.Name,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Family
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, name, password_hash, is_admin, family_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, email, name, password_hash, is_admin, family_id, created_at, updated_at
`

type CreateUserParams struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
	FamilyID     sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.ID,
		arg.Email,
		arg.Name,
		arg.PasswordHash,
		arg.IsAdmin,
		arg.FamilyID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.IsAdmin,
		&i.FamilyID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUser = `-- name: GetUser :one
SELECT id, email, name, password_hash, is_admin, family_id, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.IsAdmin,
		&i.FamilyID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByEmail = `-- name: GetUserByEmail :one
SELECT id, email, name, password_hash, is_admin, family_id, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.Name,
		&i.PasswordHash,
		&i.IsAdmin,
		&i.FamilyID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserName = `-- name: GetUserName :one
SELECT name FROM users WHERE id = $1
`

func (q *Queries) GetUserName(ctx context.Context, id string) (string, error) {
	row := q.db.QueryRowContext(ctx, getUserName, id)
	var name string
	err := row.Scan(&name)
	return name, err
}

const listGroupedUsers = `-- name: ListGroupedUsers :many
SELECT id, name, email, family_id
FROM users
WHERE family_id IS NOT NULL
ORDER BY id
`

type ListGroupedUsersRow struct {
	ID       string
	Name     string
	Email    string
	FamilyID sql.NullString
}

func (q *Queries) ListGroupedUsers(ctx context.Context) ([]ListGroupedUsersRow, error) {
	rows, err := q.db.QueryContext(ctx, listGroupedUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListGroupedUsersRow
	for rows.Next() {
		var i ListGroupedUsersRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Email,
			&i.FamilyID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
