// Package repomanager wires repositories to a database handle. Repositories
// are constructed per call against a dbx.DBTX, so the same factory serves
// both pooled and transactional access.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/sergeyk-dev/authgate/internal/dbx"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/profiles"
	"github.com/sergeyk-dev/authgate/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
