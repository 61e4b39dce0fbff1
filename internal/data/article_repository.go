package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ArticleRepository reads the articles table owned by the wider CMS.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// CountByCategory returns how many articles reference the given category.
func (r *ArticleRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM articles WHERE category_id = ?`
	if err := r.db.GetContext(ctx, &n, query, categoryID); err != nil {
		return 0, fmt.Errorf("failed to count articles by category: %w", err)
	}
	return n, nil
}
