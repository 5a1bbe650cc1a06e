package app

import (
	"database/sql"

	"github.com/escform/escform/config"
	"github.com/go-chi/oauth"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}
