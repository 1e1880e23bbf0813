package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/dbx"
	"github.com/sergeyk-dev/authgate/internal/server/models"
)

const userColumns = "id, username, email, sub, role, cognito_status, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Sub, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

// Create inserts a user row. A nil Sub is stored as NULL; reconciliation
// fills it in on first login.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (username, email, sub, role, cognito_status)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.Sub, user.Role, user.Status)
	return scanUser(row)
}

// GetByLogin matches a row by username or email, both compared exactly.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE username = $1 OR email = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE sub = $1`

	return scanUser(r.db.QueryRowContext(ctx, query, sub))
}

func (r *PostgresRepository) GetRoleBySub(ctx context.Context, sub string) (models.Role, error) {
	query := `SELECT role FROM users WHERE sub = $1`

	var role models.Role
	err := r.db.QueryRowContext(ctx, query, sub).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// UpdateIdentifiersBySub overwrites username/email with the token-derived
// values and marks the row confirmed. Used when the provider-side account
// drifted from the local row.
func (r *PostgresRepository) UpdateIdentifiersBySub(ctx context.Context, sub, username, email string) (*models.User, error) {
	query := `UPDATE users
	          SET username = $1, email = $2, cognito_status = $3, updated_at = NOW()
	          WHERE sub = $4
	          RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, username, email, models.StatusConfirmed, sub)
	return scanUser(row)
}

// SetSubByLogin populates the subject identifier on a row created through
// local signup and marks it confirmed.
func (r *PostgresRepository) SetSubByLogin(ctx context.Context, login, sub string) (*models.User, error) {
	query := `UPDATE users
	          SET sub = $1, cognito_status = $2, updated_at = NOW()
	          WHERE username = $3 OR email = $3
	          RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query, sub, models.StatusConfirmed, login)
	return scanUser(row)
}

func (r *PostgresRepository) UpdateStatusByUsername(ctx context.Context, username, status string) (*models.User, error) {
	query := `UPDATE users
	          SET cognito_status = $1, updated_at = NOW()
	          WHERE username = $2
	          RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, status, username))
}

func (r *PostgresRepository) UpdateRoleByID(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	query := `UPDATE users
	          SET role = $1, updated_at = NOW()
	          WHERE id = $2
	          RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, role, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Sub, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
