//go:build !cgo_oracle

package oracledb

import (
	"database/sql"
	"fmt"
	"strconv"

	go_ora "github.com/sijms/go-ora/v2"
)

// Open connects to Oracle using the pure-Go go-ora driver, the default
// path requiring no CGO toolchain.
func Open(cfg Config) (*sql.DB, error) {
	portInt, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	dsn := go_ora.BuildUrl(cfg.Host, portInt, cfg.ServiceName, cfg.Username, cfg.Password, nil)

	db, err := sql.Open("oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open oracle connection: %w", err)
	}
	configurePool(db, cfg)
	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
