package users

import (
	"context"

	"github.com/sergeyk-dev/authgate/internal/server/models"
)

// Repository is the persistence contract for local user rows. Lookups that
// match no row return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetBySub(ctx context.Context, sub string) (*models.User, error)
	GetRoleBySub(ctx context.Context, sub string) (models.Role, error)
	UpdateIdentifiersBySub(ctx context.Context, sub, username, email string) (*models.User, error)
	SetSubByLogin(ctx context.Context, login, sub string) (*models.User, error)
	UpdateStatusByUsername(ctx context.Context, username, status string) (*models.User, error)
	UpdateRoleByID(ctx context.Context, id int64, role models.Role) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
