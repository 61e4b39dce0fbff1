package data

// Category is a row of the categories table. A category whose Parent is empty
// is a big (top-level) category; otherwise Parent holds the id of the big
// category that owns it.
type Category struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Parent       string `db:"parent" json:"parent"`
	DisplayOrder int64  `db:"display_order" json:"display_order"`
	Description  string `db:"description" json:"description"`
	CreatedAt    int64  `db:"created_at" json:"created_at"`
	UpdatedAt    int64  `db:"updated_at" json:"updated_at"`
}

// IsBig reports whether c is a top-level category.
func (c *Category) IsBig() bool {
	return c.Parent == ""
}

// DefaultDisplayOrder is assigned to sub-categories, which are never sorted manually.
const DefaultDisplayOrder int64 = -1

// Article is the slice of the articles table this service reads.
type Article struct {
	ID         string `db:"id"`
	CategoryID string `db:"category_id"`
	Name       string `db:"name"`
	CreatedAt  int64  `db:"created_at"`
}
