package profiles

import (
	"context"

	"github.com/sergeyk-dev/authgate/internal/server/models"
)

// Repository is the persistence contract for profile rows. Lookups that
// match no row return common.ErrorNotFound.
type Repository interface {
	GetBySub(ctx context.Context, sub string) (*models.Profile, error)
	Create(ctx context.Context, sub string) (*models.Profile, error)
	UpdateBySub(ctx context.Context, sub string, firstName, lastName, number *string) (*models.Profile, error)
}
