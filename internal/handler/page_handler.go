package handler

import (
	"category-api/internal/logger"
	"category-api/internal/middleware"
	"category-api/internal/service"
	"category-api/internal/view"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PageHandler holds the dependencies for the public category pages.
type PageHandler struct {
	categoryService service.CategoryServicer
	view            *view.View
	log             logger.Logger
}

// NewPageHandler creates a new PageHandler with the given dependencies.
func NewPageHandler(cs service.CategoryServicer, v *view.View, log logger.Logger) *PageHandler {
	return &PageHandler{
		categoryService: cs,
		view:            v,
		log:             log,
	}
}

// homeHandler renders the navigation tree.
func (h *PageHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	nav, err := h.categoryService.NavList(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load categories", Code: http.StatusInternalServerError}
	}
	data := map[string]interface{}{
		"Nav":      nav,
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, "home.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render home page", Code: http.StatusInternalServerError}
	}
	return nil
}

// categoryHandler renders a category with its description and sub-categories.
func (h *PageHandler) categoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	page, err := h.categoryService.Page(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return &middleware.AppError{Error: err, Message: "Category not found", Code: http.StatusNotFound}
		}
		return &middleware.AppError{Error: err, Message: "Failed to load category", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Category":        page.Category,
		"SubCategories":   page.SubCategories,
		"DescriptionHTML": page.DescriptionHTML,
		"UserInfo":        middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, "category.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render category", Code: http.StatusInternalServerError}
	}
	return nil
}
