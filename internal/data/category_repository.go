package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const categoryColumns = `id, name, parent, display_order, description, created_at, updated_at`

// CategoryRepository handles database operations for categories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// FindAll retrieves every category ordered by display_order. Ids are
// time-ordered, so rows sharing a display_order come back in insertion order.
func (r *CategoryRepository) FindAll(ctx context.Context) ([]*Category, error) {
	categories := []*Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY display_order, id`
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

// FindByID finds a category by its ID. It returns nil when no row matches.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`
	if err := r.DB.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found is not an error
		}
		return nil, fmt.Errorf("failed to get category by id: %w", err)
	}
	return &category, nil
}

// Create inserts a new category. The ID and timestamps are filled in on the
// passed struct.
func (r *CategoryRepository) Create(ctx context.Context, category *Category) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate category id: %w", err)
	}
	now := time.Now().UnixMilli()
	category.ID = id.String()
	category.CreatedAt = now
	category.UpdatedAt = now

	query := `INSERT INTO categories (` + categoryColumns + `)
		VALUES (:id, :name, :parent, :display_order, :description, :created_at, :updated_at)`
	if _, err := r.DB.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update writes every mutable column of an existing category.
func (r *CategoryRepository) Update(ctx context.Context, category *Category) error {
	category.UpdatedAt = time.Now().UnixMilli()
	query := `UPDATE categories SET name = :name, parent = :parent, display_order = :display_order,
		description = :description, updated_at = :updated_at WHERE id = :id`
	result, err := r.DB.NamedExecContext(ctx, query, category)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no category found to update with id %s", category.ID)
	}
	return nil
}

// Delete removes a category by its ID. Sub-categories are left in place.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no category found to delete with id %s", id)
	}
	return nil
}

// Count returns the number of stored categories.
func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories`); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

// MaxDisplayOrder returns the highest display_order in the table. The flag is false
// when the table is empty.
func (r *CategoryRepository) MaxDisplayOrder(ctx context.Context) (int64, bool, error) {
	var v sql.NullInt64
	if err := r.DB.GetContext(ctx, &v, `SELECT MAX(display_order) FROM categories`); err != nil {
		return 0, false, fmt.Errorf("failed to get max display order: %w", err)
	}
	return v.Int64, v.Valid, nil
}

// UpdateDisplayOrders sets display_order of ids[i] to i in a single transaction.
func (r *CategoryRepository) UpdateDisplayOrders(ctx context.Context, ids []string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE categories SET display_order = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare display order update: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i, now, id); err != nil {
			return fmt.Errorf("failed to update display order of category %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit display order update: %w", err)
	}
	return nil
}
