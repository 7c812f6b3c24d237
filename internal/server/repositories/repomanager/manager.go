package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultify/internal/dbx"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/documents"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/vaultify/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Documents(db dbx.DBTX) documents.Repository
}
