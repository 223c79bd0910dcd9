package ledger

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	devenv "txpipeline/dev/env"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Config struct {
	// sqlite file, may start with <dev_state>
	File string `json:"file" env:"TXPIPELINE_LEDGER_FILE"`
	// remote libsql database, takes precedence over File
	Url       string `json:"url" env:"TXPIPELINE_LEDGER_URL"`
	AuthToken string `json:"auth_token" env:"TXPIPELINE_LEDGER_AUTH_TOKEN"`
}

func (c Config) Enabled() bool {
	return c.File != "" || c.Url != ""
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open ledger db: %w", err)
}

func (c Config) OpenDB() (*sql.DB, error) {
	if c.Url != "" {
		u, err := url.Parse(c.Url)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		if c.AuthToken != "" {
			q := u.Query()
			q.Set("authToken", c.AuthToken)
			u.RawQuery = q.Encode()
		}
		db, err := sql.Open("libsql", u.String())
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}

	if c.File == "" {
		return nil, wrapOpenDB(fmt.Errorf("a path was not specified"))
	}
	dbpath, err := devenv.ResolvePath(c.File)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	if dbpath != ":memory:" {
		err = os.MkdirAll(filepath.Dir(dbpath), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	return db, nil
}
