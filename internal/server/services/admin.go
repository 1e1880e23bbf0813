package services

import (
	"context"
	"database/sql"

	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/repomanager"
)

// AdminService backs the administrator endpoints: listing accounts and
// changing a user's role. Role changes are the only role mutation path.
type AdminService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewAdminService(db *sql.DB, rm repomanager.RepositoryManager) *AdminService {
	return &AdminService{db: db, rm: rm}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.rm.Users(s.db).List(ctx)
}

// UpdateUserRole sets the role on a user row by its numeric id. A missing
// row surfaces common.ErrorNotFound; no row is mutated in that case.
func (s *AdminService) UpdateUserRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	return s.rm.Users(s.db).UpdateRoleByID(ctx, id, role)
}
