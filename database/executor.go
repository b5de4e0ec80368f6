package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpupo63/personal-blog-backend/errs"
	"gorm.io/gorm"
)

// Result reports the outcome of a write statement. LastInsertID is only
// populated on sqlite; postgres callers should use RETURNING instead.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// executor runs raw SQL against the shared connection. The aggregate and
// every repository embed it.
type executor struct {
	db *gorm.DB
}

// Execute runs a statement that returns no rows.
func (e executor) Execute(ctx context.Context, query string, args ...interface{}) (Result, error) {
	tx := e.db.WithContext(ctx).Exec(query, args...)
	if tx.Error != nil {
		return Result{}, translate(tx.Error)
	}

	res := Result{RowsAffected: tx.RowsAffected}
	if e.db.Dialector.Name() == DialectSQLite {
		// single open connection, so this is the rowid of the statement above
		if err := e.db.WithContext(ctx).Raw("SELECT last_insert_rowid()").Scan(&res.LastInsertID).Error; err != nil {
			return res, translate(err)
		}
	}
	return res, nil
}

// FetchOne scans the first row of query into dest and reports whether a row
// was found.
func (e executor) FetchOne(ctx context.Context, dest interface{}, query string, args ...interface{}) (bool, error) {
	tx := e.db.WithContext(ctx).Raw(query, args...).Scan(dest)
	if tx.Error != nil {
		return false, translate(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// FetchAll scans every row of query into dest, which must be a slice pointer.
func (e executor) FetchAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := e.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error; err != nil {
		return translate(err)
	}
	return nil
}

// translate tags driver errors the API layer needs to tell apart.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrUniqueConstraintViolation):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey), errs.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", errs.ErrUniqueConstraintViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", errs.ErrForeignKeyConstraint, err)
	default:
		return err
	}
}
