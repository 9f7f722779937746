package repomanager

import (
	"context"
	"database/sql"

	"github.com/dev-c-webd/tube-v/internal/dbx"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/channels"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/refreshtokens"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/users"
	"github.com/dev-c-webd/tube-v/internal/server/repositories/videos"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Channels(db dbx.DBTX) channels.Repository
	Videos(db dbx.DBTX) videos.Repository
}
