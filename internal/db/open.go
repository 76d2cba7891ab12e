package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Config struct {
	// URL is either a local sqlite file path, `:memory:`, or the url of a
	// remote libsql database (libsql://, https://, wss://...).
	URL       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func isRemote(dsn string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, scheme) {
			return true
		}
	}
	return false
}

// OpenDB opens the configured database and makes sure the schema exists.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("a database url was not specified")
	}

	var (
		database *sql.DB
		err      error
	)
	if isRemote(config.URL) {
		database, err = openRemote(config)
	} else {
		database, err = openLocal(config.URL)
	}
	if err != nil {
		return nil, err
	}

	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

func openRemote(config Config) (*sql.DB, error) {
	dsn := config.URL
	if config.AuthToken != "" {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return nil, err
		}
		query := parsed.Query()
		query.Set("authToken", config.AuthToken)
		parsed.RawQuery = query.Encode()
		dsn = parsed.String()
	}
	return sql.Open("libsql", dsn)
}

func openLocal(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows a single writer, see
	// https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	database.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}
