package database

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpupo63/personal-blog-backend/models"
	"gorm.io/gorm"
)

// ColumnMismatch lists the columns of one table that no model field maps.
type ColumnMismatch struct {
	Table   string
	Columns []string
}

// ColumnReport compares the live schema against the models and returns the
// tables that carry columns the models do not know about. Tables that do not
// exist yet are skipped.
func (d Database) ColumnReport(ctx context.Context) ([]ColumnMismatch, error) {
	db := d.db.WithContext(ctx)

	var report []ColumnMismatch
	for _, model := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}} {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		if !db.Migrator().HasTable(table) {
			continue
		}
		columnTypes, err := db.Migrator().ColumnTypes(table)
		if err != nil {
			return nil, fmt.Errorf("read columns of %s: %w", table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		if unmapped := findColumnMismatches(dbColumns, stmt.Schema.DBNames); len(unmapped) > 0 {
			report = append(report, ColumnMismatch{Table: table, Columns: unmapped})
		}
	}

	sort.Slice(report, func(i, j int) bool { return report[i].Table < report[j].Table })
	return report, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
