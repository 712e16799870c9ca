//go:build cgo_oracle

package oracledb

import (
	"database/sql"
	"fmt"

	"github.com/godror/godror"
)

// Open connects to Oracle using the CGO-based godror driver, selected by
// the cgo_oracle build tag when an Oracle Instant Client is available and
// the CGO driver's fuller feature set (proper LOB streaming, session
// pooling) is worth the build-time dependency.
func Open(cfg Config) (*sql.DB, error) {
	params := godror.ConnectionParams{}
	params.Username = cfg.Username
	params.Password = godror.NewPassword(cfg.Password)
	params.ConnectString = fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.ServiceName)

	db := sql.OpenDB(godror.NewConnector(params))
	configurePool(db, cfg)
	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
