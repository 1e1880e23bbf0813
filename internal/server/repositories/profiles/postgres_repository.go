package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/dbx"
	"github.com/sergeyk-dev/authgate/internal/server/models"
)

const profileColumns = "id, sub, first_name, last_name, number, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.Sub, &p.FirstName, &p.LastName, &p.Number, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetBySub(ctx context.Context, sub string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profile WHERE sub = $1`

	return scanProfile(r.db.QueryRowContext(ctx, query, sub))
}

// Create inserts a bare profile row for sub with empty personal fields.
func (r *PostgresRepository) Create(ctx context.Context, sub string) (*models.Profile, error) {
	query := `INSERT INTO profile (sub) VALUES ($1) RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRowContext(ctx, query, sub))
}

func (r *PostgresRepository) UpdateBySub(ctx context.Context, sub string, firstName, lastName, number *string) (*models.Profile, error) {
	query := `UPDATE profile
	          SET first_name = $1, last_name = $2, number = $3, updated_at = NOW()
	          WHERE sub = $4
	          RETURNING ` + profileColumns

	return scanProfile(r.db.QueryRowContext(ctx, query, firstName, lastName, number, sub))
}
