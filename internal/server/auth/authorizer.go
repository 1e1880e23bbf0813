package auth

import (
	"context"
	"database/sql"
	"slices"

	"github.com/sergeyk-dev/authgate/internal/common"
	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/repomanager"
)

// Authorizer gates a verified subject on the role stored locally. It is a
// capability check, not an RBAC engine.
type Authorizer struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewAuthorizer(db *sql.DB, rm repomanager.RepositoryManager) *Authorizer {
	return &Authorizer{db: db, rm: rm}
}

// Authorize permits any subject when allowed is empty. Otherwise the
// subject's role is looked up by sub: common.ErrorNotFound when no local row
// exists (reconciliation was skipped or failed upstream), common.ErrForbidden
// when the stored role is not in the allow-list.
func (a *Authorizer) Authorize(ctx context.Context, sub string, allowed []models.Role) error {
	if len(allowed) == 0 {
		return nil
	}

	role, err := a.rm.Users(a.db).GetRoleBySub(ctx, sub)
	if err != nil {
		return err
	}

	if slices.Contains(allowed, role) {
		return nil
	}
	return common.ErrForbidden
}
