// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"reelhub/internal/models"
	"reelhub/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and wraps
// anything else as INTERNAL_ERROR.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// snapshot runs fn so that every read it makes sees one consistent view of
// the data. On PostgreSQL that is a read-only REPEATABLE READ transaction;
// other dialects run fn directly and reads are best-effort.
func snapshot(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	db = db.WithContext(ctx)
	if !isPostgres(db) {
		return fn(db)
	}
	return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolPtr(v bool) *bool {
	return &v
}

// emptyIfNil keeps JSON id sets rendering as [] rather than null.
func emptyIfNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}

func startSpan(ctx context.Context, method, table string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	return ctx, func(err error) { observability.EndSpan(span, err) }
}
