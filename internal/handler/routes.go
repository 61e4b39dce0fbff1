package handler

import (
	"category-api/internal/logger"
	appmiddleware "category-api/internal/middleware"
	"category-api/internal/session"
	"category-api/internal/view"
	"category-api/web"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Category *CategoryHandler
	Page     *PageHandler
	Seo      *SeoHandler
	Auth     *AuthHandler
	Health   *HealthHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, sm session.Manager, authzMiddleware func(http.Handler) http.Handler, v *view.View, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(sm.LoadAndSave)

	api := appmiddleware.APIError(log)
	html := appmiddleware.Error(log, v)

	// Public routes
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS))))
	r.Get("/healthz", h.Health.healthHandler)
	r.Get("/robots.txt", h.Seo.robotsHandler)
	r.Get("/sitemap.xml", h.Seo.sitemapHandler)

	// Authentication routes
	r.Get("/auth/login", h.Auth.handleLogin)
	r.Get("/auth/callback", h.Auth.handleCallback)
	r.Get("/auth/logout", h.Auth.handleLogout)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		r.Method(http.MethodGet, "/", html(h.Page.homeHandler))
		r.Method(http.MethodGet, "/category/{id}", html(h.Page.categoryHandler))

		r.Route("/api", func(r chi.Router) {
			r.Get("/me", h.Auth.meHandler)
			r.Method(http.MethodGet, "/navlist", api(h.Category.navListHandler))
			r.Method(http.MethodGet, "/menus", api(h.Category.menusHandler))
			r.Method(http.MethodGet, "/subcategories/{id}", api(h.Category.subCategoriesHandler))

			r.Method(http.MethodGet, "/categories", api(h.Category.listHandler))
			r.Method(http.MethodPost, "/categories", api(h.Category.createHandler))
			// "all" is a static segment and wins over {id}.
			r.Method(http.MethodPost, "/categories/all/sort", api(h.Category.sortHandler))
			r.Method(http.MethodGet, "/categories/{id}", api(h.Category.detailHandler))
			r.Method(http.MethodPost, "/categories/{id}", api(h.Category.updateHandler))
			r.Method(http.MethodPost, "/categories/{id}/delete", api(h.Category.deleteHandler))
		})
	})

	return r
}
