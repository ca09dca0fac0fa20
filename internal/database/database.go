package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Dialect names the SQL flavour spoken by the opened database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Options selects which backend InitDB opens. PostgresURL wins over
// PrimaryURL, which wins over the local DBName file.
type Options struct {
	DBName      string
	PrimaryURL  string
	AuthToken   string
	PostgresURL string
}

// InitDB opens the configured database and brings its schema up to date.
func InitDB(opts Options) (db *sql.DB, dialect Dialect, teardown func(), err error) {
	switch {
	case opts.PostgresURL != "":
		log.Info("Initializing Postgres database")
		dialect = DialectPostgres
		db, err = sql.Open("pgx", opts.PostgresURL)
	case opts.PrimaryURL != "":
		log.Info("Initializing Turso database", "url", opts.PrimaryURL)
		dialect = DialectSQLite
		db, err = sql.Open("libsql", opts.PrimaryURL+"?authToken="+opts.AuthToken)
	default:
		log.Info("Initializing local-only SQLite database", "path", opts.DBName)
		dialect = DialectSQLite
		db, err = sql.Open("sqlite3", localDSN(opts.DBName))
		if err == nil && isMemory(opts.DBName) {
			// Every pooled connection to :memory: would otherwise see its own empty database.
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = migrate(db, dialect); err != nil {
		db.Close()
		return nil, "", nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	teardown = func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("Failed to close database", "error", cerr)
		}
	}
	log.Info("Database initialized successfully", "dialect", dialect)
	return db, dialect, teardown, nil
}

func migrate(db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(log.Default())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return err
	}
	dir := "migrations/sqlite"
	if dialect == DialectPostgres {
		dir = "migrations/postgres"
	}
	return goose.Up(db, dir)
}

func isMemory(name string) bool {
	return name == ":memory:" || strings.Contains(name, "mode=memory")
}

func localDSN(name string) string {
	if isMemory(name) || strings.HasPrefix(name, "file:") {
		return name
	}
	return "file:" + name + "?_foreign_keys=on"
}
