package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"category-api/internal/cache"
	"category-api/internal/data"
	"category-api/internal/logger"
)

// CacheKey names the single cache entry holding the full category set.
const CacheKey = "__categories__"

// CategoryRepository defines the store operations the service needs.
type CategoryRepository interface {
	FindAll(ctx context.Context) ([]*data.Category, error)
	FindByID(ctx context.Context, id string) (*data.Category, error)
	Create(ctx context.Context, category *data.Category) error
	Update(ctx context.Context, category *data.Category) error
	Delete(ctx context.Context, id string) error
	MaxDisplayOrder(ctx context.Context) (int64, bool, error)
	UpdateDisplayOrders(ctx context.Context, ids []string) error
}

// ArticleCounter counts articles filed under a category.
type ArticleCounter interface {
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// CategoryServicer defines the interface handlers use to work with categories.
type CategoryServicer interface {
	Categories(ctx context.Context, fromCache bool) ([]*data.Category, error)
	BigCategories(ctx context.Context, fromCache bool) ([]*data.Category, error)
	SubCategories(ctx context.Context, id string, fromCache bool) ([]*data.Category, error)
	NavList(ctx context.Context) ([]NavEntry, error)
	NavigationMenus(ctx context.Context) ([]Menu, error)
	Detail(ctx context.Context, id string) (*CategoryDetail, error)
	Page(ctx context.Context, id string) (*CategoryPage, error)
	Create(ctx context.Context, in CreateInput) (*data.Category, error)
	Sort(ctx context.Context, ids []string) error
	Update(ctx context.Context, id string, in UpdateInput) (*data.Category, error)
	Delete(ctx context.Context, id string) error
}

// NavEntry is one big category of the navigation menu with its sub-categories.
type NavEntry struct {
	CatName string        `json:"catname"`
	SubCats []NavSubEntry `json:"subcats"`
}

// NavSubEntry is a sub-category link inside a NavEntry.
type NavSubEntry struct {
	SubName string `json:"subname"`
	SubID   string `json:"subid"`
}

// Menu is a flat navigation link to a category page.
type Menu struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CategoryDetail is a category together with its sub-categories.
type CategoryDetail struct {
	Category      *data.Category
	SubCategories []*data.Category
}

// CategoryPage is what the public category page renders.
type CategoryPage struct {
	Category        *data.Category
	SubCategories   []*data.Category
	DescriptionHTML template.HTML
}

// CreateInput describes a new big category and its sub-categories.
type CreateInput struct {
	Name          string
	Description   string
	SubCategories []string
}

// UpdateInput describes changes to a big category. Nil fields are left alone.
// A nil SubCategories keeps the current children; a non-nil one, even empty,
// becomes the complete desired set of child names.
type UpdateInput struct {
	Name          *string
	Description   *string
	SubCategories []string
}

// Options tunes service behaviour.
type Options struct {
	// ProtectReferenced refuses deletes of categories that articles reference.
	ProtectReferenced bool
}

// CategoryService provides the category cache and the admin operations built on it.
type CategoryService struct {
	repo     CategoryRepository
	articles ArticleCounter
	cache    *cache.Entry[[]*data.Category]
	opts     Options
	log      logger.Logger
}

var _ CategoryServicer = (*CategoryService)(nil)

// NewCategoryService creates a new CategoryService. The cache entry holds the
// full category set and is dropped after every write.
func NewCategoryService(repo CategoryRepository, articles ArticleCounter, entry *cache.Entry[[]*data.Category], opts Options, log logger.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		articles: articles,
		cache:    entry,
		opts:     opts,
		log:      log,
	}
}

// Categories returns every category ordered by display_order. With fromCache
// the cached set is used and filled on a miss; otherwise the store is queried.
func (s *CategoryService) Categories(ctx context.Context, fromCache bool) ([]*data.Category, error) {
	if fromCache {
		return s.cache.Get(ctx, s.repo.FindAll)
	}
	return s.repo.FindAll(ctx)
}

// NavCategories returns the big categories shown in the navigation.
func (s *CategoryService) NavCategories(ctx context.Context, fromCache bool) ([]*data.Category, error) {
	return s.filter(ctx, fromCache, func(c *data.Category) bool { return c.Parent == "" })
}

// BigCategories returns the top-level categories. It matches NavCategories.
func (s *CategoryService) BigCategories(ctx context.Context, fromCache bool) ([]*data.Category, error) {
	return s.filter(ctx, fromCache, func(c *data.Category) bool { return c.Parent == "" })
}

// SubNavCategories returns every sub-category.
func (s *CategoryService) SubNavCategories(ctx context.Context, fromCache bool) ([]*data.Category, error) {
	return s.filter(ctx, fromCache, func(c *data.Category) bool { return c.Parent != "" })
}

// Category returns the category with the given id or a NotFound error.
func (s *CategoryService) Category(ctx context.Context, id string, fromCache bool) (*data.Category, error) {
	if !fromCache {
		category, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, NotFound("Category")
		}
		return category, nil
	}

	matched, err := s.filter(ctx, true, func(c *data.Category) bool { return c.ID == id })
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, NotFound("Category")
	}
	return matched[0], nil
}

// SubCategories returns the children of id. An id without children fails with
// NotFound, exactly like an unknown id.
func (s *CategoryService) SubCategories(ctx context.Context, id string, fromCache bool) ([]*data.Category, error) {
	children, err := s.children(ctx, id, fromCache)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, NotFound("Category")
	}
	return children, nil
}

// Invalidate drops the cached category set.
func (s *CategoryService) Invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to invalidate category cache: %w", err)
	}
	return nil
}

// dropCache invalidates after a committed write. The write has already
// happened, so a cache fault is logged rather than returned.
func (s *CategoryService) dropCache(ctx context.Context) {
	if err := s.Invalidate(ctx); err != nil {
		s.log.Error(err, "category cache not invalidated; cached reads may be stale")
	}
}

// NavList builds the two-level navigation menu.
func (s *CategoryService) NavList(ctx context.Context) ([]NavEntry, error) {
	bigs, err := s.NavCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	subs, err := s.SubNavCategories(ctx, true)
	if err != nil {
		return nil, err
	}

	entries := make([]NavEntry, 0, len(bigs))
	for _, big := range bigs {
		subCats := []NavSubEntry{}
		for _, sub := range subs {
			if sub.Parent == big.ID {
				subCats = append(subCats, NavSubEntry{SubName: sub.Name, SubID: sub.ID})
			}
		}
		entries = append(entries, NavEntry{CatName: big.Name, SubCats: subCats})
	}
	return entries, nil
}

// NavigationMenus links every category to its public page.
func (s *CategoryService) NavigationMenus(ctx context.Context) ([]Menu, error) {
	categories, err := s.Categories(ctx, true)
	if err != nil {
		return nil, err
	}
	menus := make([]Menu, 0, len(categories))
	for _, c := range categories {
		menus = append(menus, Menu{Name: c.Name, URL: "/category/" + c.ID})
	}
	return menus, nil
}

// Detail returns a category and its children. A category without children is
// not an error here.
func (s *CategoryService) Detail(ctx context.Context, id string) (*CategoryDetail, error) {
	category, err := s.Category(ctx, id, true)
	if err != nil {
		return nil, err
	}
	children, err := s.children(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: category, SubCategories: children}, nil
}

// Page returns a category with its children and its description rendered to HTML.
func (s *CategoryService) Page(ctx context.Context, id string) (*CategoryPage, error) {
	detail, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := RenderDescription(detail.Category.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to render description: %w", err)
	}
	return &CategoryPage{
		Category:        detail.Category,
		SubCategories:   detail.SubCategories,
		DescriptionHTML: html,
	}, nil
}

// Create stores a new big category after the current highest display order,
// then one sub-category per name.
func (s *CategoryService) Create(ctx context.Context, in CreateInput) (*data.Category, error) {
	highest, ok, err := s.repo.MaxDisplayOrder(ctx)
	if err != nil {
		return nil, err
	}
	var order int64
	if ok {
		order = highest + 1
	}

	big := &data.Category{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		DisplayOrder: order,
	}
	if err := s.repo.Create(ctx, big); err != nil {
		return nil, err
	}
	for _, name := range NormalizeNames(in.SubCategories) {
		if err := s.createChild(ctx, big.ID, name); err != nil {
			return nil, err
		}
	}

	s.log.With(map[string]interface{}{"category_id": big.ID}).Info("category created")
	s.dropCache(ctx)
	return big, nil
}

// Sort assigns display_order = position in ids to every big category. ids must
// be a permutation of the current big category ids; nothing is written otherwise.
func (s *CategoryService) Sort(ctx context.Context, ids []string) error {
	bigs, err := s.BigCategories(ctx, false)
	if err != nil {
		return err
	}
	if len(ids) != len(bigs) {
		return InvalidParam("ids", "invalid id list")
	}
	positions := make(map[string]int, len(ids))
	for i, id := range ids {
		positions[id] = i
	}
	for _, c := range bigs {
		if _, ok := positions[c.ID]; !ok {
			return InvalidParam("ids", "invalid id list")
		}
	}

	if err := s.repo.UpdateDisplayOrders(ctx, ids); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("sorted %d categories", len(ids)))
	s.dropCache(ctx)
	return nil
}

// Update edits a big category and reconciles its children by name: missing
// names are created, children whose names are no longer wanted are deleted.
// The steps are not transactional; a failure part way leaves earlier steps applied.
func (s *CategoryService) Update(ctx context.Context, id string, in UpdateInput) (*data.Category, error) {
	category, err := s.Category(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}

	if in.SubCategories != nil {
		if !category.IsBig() {
			return nil, InvalidParam("small_category", "sub-categories can only be set on a top-level category")
		}
		children, err := s.children(ctx, id, false)
		if err != nil {
			return nil, err
		}
		if err := s.reconcile(ctx, category.ID, children, NormalizeNames(in.SubCategories)); err != nil {
			// Children written before the failure are visible to readers.
			s.dropCache(ctx)
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.log.With(map[string]interface{}{"category_id": category.ID}).Info("category updated")
	s.dropCache(ctx)
	return category, nil
}

// Delete removes a category. Its children and any referencing articles are
// left untouched unless ProtectReferenced forbids the delete.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Category(ctx, id, true); err != nil {
		return err
	}

	if s.opts.ProtectReferenced {
		n, err := s.articles.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return Conflict("Category", "Cannot delete category for there are some articles reference it.")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.With(map[string]interface{}{"category_id": id}).Info("category deleted")
	s.dropCache(ctx)
	return nil
}

// reconcile makes the children of parentID match want by name.
func (s *CategoryService) reconcile(ctx context.Context, parentID string, existing []*data.Category, want []string) error {
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.Name] = true
	}
	wanted := make(map[string]bool, len(want))
	for _, name := range want {
		wanted[name] = true
	}

	for _, name := range want {
		if !have[name] {
			if err := s.createChild(ctx, parentID, name); err != nil {
				return err
			}
		}
	}
	for _, c := range existing {
		if !wanted[c.Name] {
			if err := s.repo.Delete(ctx, c.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CategoryService) createChild(ctx context.Context, parentID, name string) error {
	return s.repo.Create(ctx, &data.Category{
		Name:         name,
		Parent:       parentID,
		DisplayOrder: data.DefaultDisplayOrder,
	})
}

// children returns the sub-categories of id, possibly none.
func (s *CategoryService) children(ctx context.Context, id string, fromCache bool) ([]*data.Category, error) {
	return s.filter(ctx, fromCache, func(c *data.Category) bool { return c.Parent == id })
}

func (s *CategoryService) filter(ctx context.Context, fromCache bool, keep func(*data.Category) bool) ([]*data.Category, error) {
	categories, err := s.Categories(ctx, fromCache)
	if err != nil {
		return nil, err
	}
	filtered := []*data.Category{}
	for _, c := range categories {
		if keep(c) {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// SplitNames parses the semicolon-delimited sub-category list used on the wire.
func SplitNames(s string) []string {
	return NormalizeNames(strings.Split(s, ";"))
}

// JoinNames renders category names as a semicolon-delimited list.
func JoinNames(categories []*data.Category) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, ";")
}

// NormalizeNames trims names, drops blanks and repeated names, and keeps order.
// The result is never nil.
func NormalizeNames(names []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
