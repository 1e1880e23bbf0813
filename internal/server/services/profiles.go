package services

import (
	"context"
	"database/sql"

	"github.com/sergeyk-dev/authgate/internal/server/models"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/repomanager"
)

// ProfileService reads and mutates the profile row owned by a verified
// subject. Profiles are created by login reconciliation, never here: an
// update for a subject with no profile row returns common.ErrorNotFound.
type ProfileService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, rm repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, rm: rm}
}

func (s *ProfileService) Get(ctx context.Context, sub string) (*models.Profile, error) {
	return s.rm.Profiles(s.db).GetBySub(ctx, sub)
}

func (s *ProfileService) Update(ctx context.Context, sub string, firstName, lastName, number *string) (*models.Profile, error) {
	return s.rm.Profiles(s.db).UpdateBySub(ctx, sub, firstName, lastName, number)
}
