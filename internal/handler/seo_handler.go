package handler

import (
	"category-api/internal/service"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	categoryService service.CategoryServicer
	baseURL         string
}

// NewSeoHandler creates a new SeoHandler. baseURL is the public origin, e.g.
// "https://example.com".
func NewSeoHandler(cs service.CategoryServicer, baseURL string) *SeoHandler {
	return &SeoHandler{categoryService: cs, baseURL: strings.TrimRight(baseURL, "/")}
}

// robotsHandler serves robots.txt pointing crawlers at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /api/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.baseURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a sitemap of every category page.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.Categories(r.Context(), true)
	if err != nil {
		http.Error(w, "Failed to retrieve categories for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(categories)),
	}
	for i, c := range categories {
		sitemap.URLs[i] = sitemapURL{
			Loc:     h.baseURL + "/category/" + c.ID,
			LastMod: time.UnixMilli(c.UpdatedAt).UTC().Format(sitemapDateFormat),
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}
