package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BaseRepository stores documents of type T as JSON in a table with
// (id, data, created_at, updated_at) columns.
type BaseRepository[T any] struct {
	db     *sql.DB
	table  string
	entity string
	setID  func(*T, string)
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sql.DB, table, entity string, setID func(*T, string), logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository[T]{
		db:     db,
		table:  table,
		entity: entity,
		setID:  setID,
		logger: logger,
	}
}

// conn returns the transaction carried by ctx, or the database itself
func (r *BaseRepository[T]) conn(ctx context.Context) queryer {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Count returns the number of documents in the table
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)

	var count int64
	if err := r.executeQueryRow(ctx, "count", query).Scan(&count); err != nil {
		return 0, repositories.NewRepositoryError("count", r.entity, "", err)
	}
	return count, nil
}

// insert stores doc under id in a table without mirrored columns
func (r *BaseRepository[T]) insert(ctx context.Context, id string, doc *T) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	data, err := r.encode(doc)
	if err != nil {
		return repositories.NewRepositoryError("create", r.entity, id, err)
	}

	now := time.Now().UTC()
	query := fmt.Sprintf("INSERT INTO %s (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)", r.table)
	if _, err := r.executeExec(ctx, "create", query, id, data, now, now); err != nil {
		return r.mapInsertError(id, err)
	}
	return nil
}

// get retrieves the document stored under id
func (r *BaseRepository[T]) get(ctx context.Context, id string) (*T, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, data FROM %s WHERE id = ?", r.table)

	var docID, data string
	if err := r.executeQueryRow(ctx, "get_by_id", query, id).Scan(&docID, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError(r.entity, id)
		}
		return nil, repositories.NewRepositoryError("get_by_id", r.entity, id, err)
	}

	return r.decode(docID, data)
}

// list retrieves documents matching an optional WHERE clause, ordered by id
func (r *BaseRepository[T]) list(ctx context.Context, operation, where string, args ...any) ([]*T, error) {
	return r.selectDocuments(ctx, operation, where, "", args...)
}

func (r *BaseRepository[T]) selectDocuments(ctx context.Context, operation, where, limit string, args ...any) ([]*T, error) {
	query := fmt.Sprintf("SELECT id, data FROM %s %s ORDER BY id %s", r.table, where, limit)

	rows, err := r.executeQuery(ctx, operation, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*T
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
		}
		doc, err := r.decode(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}

	return docs, nil
}

// first returns the lowest-id document matching where
func (r *BaseRepository[T]) first(ctx context.Context, operation, where string, args ...any) (*T, error) {
	docs, err := r.selectDocuments(ctx, operation, where, "LIMIT 1", args...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, repositories.NotFoundError(r.entity, fmt.Sprint(args...))
	}
	return docs[0], nil
}

func (r *BaseRepository[T]) encode(doc *T) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *BaseRepository[T]) decode(id, data string) (*T, error) {
	doc := new(T)
	if err := json.Unmarshal([]byte(data), doc); err != nil {
		return nil, repositories.NewRepositoryError("decode", r.entity, id, err)
	}
	if r.setID != nil {
		r.setID(doc, id)
	}
	return doc, nil
}

func (r *BaseRepository[T]) mapInsertError(id string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repositories.DuplicateError(r.entity, "id", id)
	}
	return err
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(operation string, query string, args []any, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *BaseRepository[T]) executeQuery(ctx context.Context, operation, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *BaseRepository[T]) executeQueryRow(ctx context.Context, operation, query string, args ...any) *sql.Row {
	start := time.Now()
	row := r.conn(ctx).QueryRowContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, nil)

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.entity, "", err)
	}

	return result, nil
}

// checkRowsAffected checks if the expected number of rows were affected
func (r *BaseRepository[T]) checkRowsAffected(result sql.Result, operation, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError(operation, r.entity, id, err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(r.entity, id)
	}

	return nil
}

// validateID validates that an ID is not empty
func (r *BaseRepository[T]) validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("validate", r.entity, id, repositories.ErrInvalidID)
	}
	return nil
}
