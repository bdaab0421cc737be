package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"academy/internal/apperr"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	Driver   string
	BodyType string
	OrderBy  string // insertion order for ListAll
	dollar   bool   // $n placeholders instead of ?
}

var (
	Postgres = Dialect{Driver: "pgx", BodyType: "JSONB", OrderBy: "created_at, id", dollar: true}
	SQLite   = Dialect{Driver: "sqlite", BodyType: "TEXT", OrderBy: "rowid"}
)

// bind rewrites ? placeholders for dialects that number them.
func (d Dialect) bind(query string) string {
	if !d.dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB stores every collection in one documents table with JSON bodies.
type DB struct {
	Client  *sql.DB
	dialect Dialect
}

// NewDB opens a Postgres pool with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open(Postgres.Driver, connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db, dialect: Postgres}, db.PingContext(context.Background())
}

// NewSQLite opens (creating if needed) a SQLite database file.
func NewSQLite(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open(SQLite.Driver, path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return &DB{Client: db, dialect: SQLite}, db.PingContext(context.Background())
}

// Migrate creates the documents table.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       `+d.dialect.BodyType+` NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)
	`)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return errors.New("db not connected")
	}
	return d.Client.PingContext(ctx)
}

func (d *DB) ListAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := d.Client.QueryContext(ctx, d.dialect.bind(`
		SELECT id, body FROM documents WHERE collection = ? ORDER BY `+d.dialect.OrderBy), collection)
	if err != nil {
		return nil, apperr.Unavailable("list "+collection, err)
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, apperr.Unavailable("list "+collection, err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, apperr.Unavailable("decode "+collection+"/"+id, err)
		}
		res = append(res, Record{ID: id, Doc: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list "+collection, err)
	}
	return res, nil
}

func (d *DB) Get(ctx context.Context, collection, id string) (Record, error) {
	var body []byte
	err := d.Client.QueryRowContext(ctx, d.dialect.bind(`
		SELECT body FROM documents WHERE collection = ? AND id = ?
	`), collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, apperr.NotFound(collection, id)
		}
		return Record{}, apperr.Unavailable("get "+collection, err)
	}
	doc, err := decodeBody(body)
	if err != nil {
		return Record{}, apperr.Unavailable("decode "+collection+"/"+id, err)
	}
	return Record{ID: id, Doc: doc}, nil
}

func (d *DB) Create(ctx context.Context, collection string, doc Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", apperr.Invalid("encode %s document: %v", collection, err)
	}
	id := uuid.NewString()
	_, err = d.Client.ExecContext(ctx, d.dialect.bind(`
		INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
	`), collection, id, string(body))
	if err != nil {
		return "", apperr.Unavailable("create "+collection, err)
	}
	return id, nil
}

// Update reads, merges and writes back inside one transaction.
func (d *DB) Update(ctx context.Context, collection, id string, doc Document) error {
	tx, err := d.Client.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable("update "+collection, err)
	}
	defer func() { _ = tx.Rollback() }()

	var body []byte
	err = tx.QueryRowContext(ctx, d.dialect.bind(`
		SELECT body FROM documents WHERE collection = ? AND id = ?
	`), collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound(collection, id)
		}
		return apperr.Unavailable("update "+collection, err)
	}
	cur, err := decodeBody(body)
	if err != nil {
		return apperr.Unavailable("decode "+collection+"/"+id, err)
	}
	merged, err := json.Marshal(merge(cur, doc))
	if err != nil {
		return apperr.Invalid("encode %s document: %v", collection, err)
	}
	if _, err := tx.ExecContext(ctx, d.dialect.bind(`
		UPDATE documents SET body = ?, updated_at = CURRENT_TIMESTAMP
		WHERE collection = ? AND id = ?
	`), string(merged), collection, id); err != nil {
		return apperr.Unavailable("update "+collection, err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Unavailable("update "+collection, err)
	}
	return nil
}

func (d *DB) Upsert(ctx context.Context, collection, id string, doc Document) error {
	if id == "" {
		return apperr.Invalid("upsert into %s needs an id", collection)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return apperr.Invalid("encode %s document: %v", collection, err)
	}
	_, err = d.Client.ExecContext(ctx, d.dialect.bind(`
		INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = CURRENT_TIMESTAMP
	`), collection, id, string(body))
	if err != nil {
		return apperr.Unavailable("upsert "+collection, err)
	}
	return nil
}

func (d *DB) Delete(ctx context.Context, collection, id string) error {
	res, err := d.Client.ExecContext(ctx, d.dialect.bind(`
		DELETE FROM documents WHERE collection = ? AND id = ?
	`), collection, id)
	if err != nil {
		return apperr.Unavailable("delete "+collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound(collection, id)
	}
	return nil
}

func decodeBody(body []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
