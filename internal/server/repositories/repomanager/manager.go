package repomanager

import (
	"context"
	"database/sql"

	"github.com/konasal/konasal-backend/internal/dbx"
	"github.com/konasal/konasal-backend/internal/server/repositories/forms"
	"github.com/konasal/konasal-backend/internal/server/repositories/leads"
	"github.com/konasal/konasal-backend/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Leads(db dbx.DBTX) leads.Repository
	Forms(db dbx.DBTX) forms.Repository
}
