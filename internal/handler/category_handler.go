package handler

import (
	"category-api/internal/data"
	"category-api/internal/logger"
	"category-api/internal/middleware"
	"category-api/internal/service"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CategoryHandler serves the category JSON API.
type CategoryHandler struct {
	categoryService service.CategoryServicer
	log             logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(cs service.CategoryServicer, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: cs, log: log}
}

type categoryListResponse struct {
	Categories []*data.Category `json:"categories"`
}

type categoryDetailResponse struct {
	BigCategory   string `json:"big_category"`
	SmallCategory string `json:"small_category"`
	Description   string `json:"description"`
}

type sortResponse struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	ID string `json:"id"`
}

// navListHandler returns the navigation tree of big categories.
func (h *CategoryHandler) navListHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	nav, err := h.categoryService.NavList(r.Context())
	if err != nil {
		return serviceError(err, "Failed to build navigation list")
	}
	return h.respond(w, http.StatusOK, nav)
}

// menusHandler returns flat links to the page of every category, sub-categories included.
func (h *CategoryHandler) menusHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	menus, err := h.categoryService.NavigationMenus(r.Context())
	if err != nil {
		return serviceError(err, "Failed to build menus")
	}
	return h.respond(w, http.StatusOK, menus)
}

// subCategoriesHandler returns the children of a category.
func (h *CategoryHandler) subCategoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	subs, err := h.categoryService.SubCategories(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		return serviceError(err, "Failed to get sub-categories")
	}
	return h.respond(w, http.StatusOK, subs)
}

// listHandler returns every big category in display order.
func (h *CategoryHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	bigs, err := h.categoryService.BigCategories(r.Context(), true)
	if err != nil {
		return serviceError(err, "Failed to list categories")
	}
	return h.respond(w, http.StatusOK, categoryListResponse{Categories: bigs})
}

// detailHandler returns a category in the shape the edit form posts back.
func (h *CategoryHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	detail, err := h.categoryService.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return serviceError(err, "Failed to get category")
	}
	return h.respond(w, http.StatusOK, categoryDetailResponse{
		BigCategory:   detail.Category.Name,
		SmallCategory: service.JoinNames(detail.SubCategories),
		Description:   detail.Category.Description,
	})
}

// createHandler stores a big category and its sub-categories.
func (h *CategoryHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req createCategoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return serviceError(err, "Invalid request")
	}
	name := plain(req.BigCategory)
	if name == "" {
		return serviceError(service.InvalidParam("big_category", "big_category is required"), "Invalid request")
	}

	subs, err := subCategoryNames(req.SmallCategory)
	if err != nil {
		return serviceError(err, "Invalid request")
	}

	category, err := h.categoryService.Create(r.Context(), service.CreateInput{
		Name:          name,
		Description:   req.Description,
		SubCategories: subs,
	})
	if err != nil {
		return serviceError(err, "Failed to create category")
	}
	return h.respond(w, http.StatusOK, category)
}

// sortHandler reorders the big categories.
func (h *CategoryHandler) sortHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req sortCategoriesRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return serviceError(err, "Invalid request")
	}
	if err := h.categoryService.Sort(r.Context(), req.IDs); err != nil {
		return serviceError(err, "Failed to sort categories")
	}
	return h.respond(w, http.StatusOK, sortResponse{IDs: req.IDs})
}

// updateHandler edits a big category and reconciles its sub-categories.
func (h *CategoryHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var req updateCategoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return serviceError(err, "Invalid request")
	}

	in := service.UpdateInput{
		Name:        plainPtr(req.BigCategory),
		Description: req.Description,
	}
	if in.Name != nil && *in.Name == "" {
		return serviceError(service.InvalidParam("big_category", "big_category must not be empty"), "Invalid request")
	}
	if req.SmallCategory != nil {
		subs, err := subCategoryNames(*req.SmallCategory)
		if err != nil {
			return serviceError(err, "Invalid request")
		}
		in.SubCategories = subs
	}

	category, err := h.categoryService.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return serviceError(err, "Failed to update category")
	}
	return h.respond(w, http.StatusOK, category)
}

// deleteHandler removes a category.
func (h *CategoryHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id := chi.URLParam(r, "id")
	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		return serviceError(err, "Failed to delete category")
	}
	return h.respond(w, http.StatusOK, deleteResponse{ID: id})
}

// serviceError maps a service failure onto an AppError. Unknown errors become
// internal errors and keep msg as their public message.
func serviceError(err error, msg string) *middleware.AppError {
	var se *service.Error
	if errors.As(err, &se) {
		return &middleware.AppError{
			Error:   err,
			Message: se.Message,
			Code:    statusFor(se.Kind),
			ErrCode: se.Code(),
			Data:    se.Data,
		}
	}
	return &middleware.AppError{Error: err, Message: msg, Code: http.StatusInternalServerError, ErrCode: "internal:error"}
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond writes v as JSON. The status line is already sent when encoding
// fails, so the failure is only logged.
func (h *CategoryHandler) respond(w http.ResponseWriter, status int, v interface{}) *middleware.AppError {
	if err := middleware.WriteJSON(w, status, v); err != nil {
		h.log.Error(err, "Failed to write response")
	}
	return nil
}
