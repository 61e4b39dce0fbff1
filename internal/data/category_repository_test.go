//go:build integration

package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

// setupCategoryTest creates a new in-memory SQLite database with the sqlite3
// migrations applied and returns the database plus a teardown function.
func setupCategoryTest(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	db, err := NewDB("sqlite3", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}

	files, err := filepath.Glob("../../migrations/sqlite3/*.up.sql")
	if err != nil || len(files) == 0 {
		t.Fatalf("Failed to locate migrations: %v", err)
	}
	for _, f := range files {
		schema, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", f, err)
		}
		db.MustExec(string(schema))
	}

	teardown := func() {
		db.Close()
	}
	return db, teardown
}

func TestCategoryRepository_CreateAndFindByID(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	category := &Category{Name: "Food", Description: "things to eat", DisplayOrder: 0}
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category.ID == "" {
		t.Fatal("expected generated id")
	}
	if category.CreatedAt == 0 || category.UpdatedAt == 0 {
		t.Error("expected timestamps to be set")
	}

	found, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find category, but got nil")
	}
	if found.Name != "Food" || found.Description != "things to eat" || found.Parent != "" {
		t.Errorf("unexpected category: %+v", found)
	}

	// Test not found
	found, err = repo.FindByID(ctx, "missing")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil, but found category: %v", found)
	}
}

func TestCategoryRepository_FindAllOrdersByDisplayOrder(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	second := &Category{Name: "Second", DisplayOrder: 1}
	first := &Category{Name: "First", DisplayOrder: 0}
	for _, c := range []*Category{second, first} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	subA := &Category{Name: "A", Parent: first.ID, DisplayOrder: DefaultDisplayOrder}
	subB := &Category{Name: "B", Parent: first.ID, DisplayOrder: DefaultDisplayOrder}
	for _, c := range []*Category{subA, subB} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	categories, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"A", "B", "First", "Second"}
	if len(categories) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(categories))
	}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("position %d: expected '%s', got '%s'", i, name, categories[i].Name)
		}
	}
}

func TestCategoryRepository_UpdateAndDelete(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	category := &Category{Name: "Movies"}
	if err := repo.Create(ctx, category); err != nil {
		t.Fatal(err)
	}

	category.Name = "Films"
	category.Description = "moving pictures"
	if err := repo.Update(ctx, category); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found, _ := repo.FindByID(ctx, category.ID)
	if found == nil || found.Name != "Films" || found.Description != "moving pictures" {
		t.Errorf("update not persisted: %+v", found)
	}

	if err := repo.Delete(ctx, category.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, category.ID); err == nil {
		t.Error("expected error deleting a missing category")
	}
	if err := repo.Update(ctx, category); err == nil {
		t.Error("expected error updating a missing category")
	}
}

func TestCategoryRepository_CountAndMaxDisplayOrder(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	_, ok, err := repo.MaxDisplayOrder(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no max display order on an empty table")
	}

	for i, name := range []string{"Books", "Music"} {
		if err := repo.Create(ctx, &Category{Name: name, DisplayOrder: int64(i + 3)}); err != nil {
			t.Fatal(err)
		}
	}

	got, ok, err := repo.MaxDisplayOrder(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || got != 4 {
		t.Errorf("expected max display order 4, got %d (ok=%v)", got, ok)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 categories, got %d", n)
	}
}

func TestCategoryRepository_UpdateDisplayOrders(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	var ids []string
	for i, name := range []string{"X", "Y", "Z"} {
		c := &Category{Name: name, DisplayOrder: int64(i)}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, c.ID)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := repo.UpdateDisplayOrders(ctx, reversed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	categories, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range categories {
		if c.ID != reversed[i] || c.DisplayOrder != int64(i) {
			t.Errorf("position %d: expected %s with order %d, got %s with order %d", i, reversed[i], i, c.ID, c.DisplayOrder)
		}
	}
}

func TestArticleRepository_CountByCategory(t *testing.T) {
	db, teardown := setupCategoryTest(t)
	defer teardown()
	repo := NewArticleRepository(db)
	ctx := context.Background()

	db.MustExec(`INSERT INTO articles (id, category_id, name, created_at) VALUES ('a1', 'c1', 'one', 1), ('a2', 'c1', 'two', 2), ('a3', 'c2', 'three', 3)`)

	n, err := repo.CountByCategory(ctx, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 articles, got %d", n)
	}

	n, err = repo.CountByCategory(ctx, "none")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 articles, got %d", n)
	}
}
