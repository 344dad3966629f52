package products

import (
	"net/http"
	"sort"
	"strings"

	"langsearch/database"
	"langsearch/internal/app/http/middleware"
	"langsearch/internal/domain/catalog"
	"langsearch/internal/langfields"

	"github.com/gin-gonic/gin"
)

// ------------------------------
// GET /products?lang=&<field>=...
// ------------------------------
func ListProducts(c *gin.Context) {
	params, err := parseListParams(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := catalog.Products.Query(database.DB, middleware.RequestLanguage(c))
	scope, err := q.FilterBy(params.filters)
	if err != nil {
		writeError(c, err)
		return
	}
	findAndRespond(c, q, params.page(scope))
}

// ------------------------------
// GET /products/search?q=
// ------------------------------
func SearchProducts(c *gin.Context) {
	text := strings.TrimSpace(c.Query("q"))
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	params, err := parseListParams(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := catalog.Products.Query(database.DB, middleware.RequestLanguage(c))
	findAndRespond(c, q, params.page(q.Search(text)))
}

// ------------------------------
// GET /products/:id
// ------------------------------
func GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var p catalog.Product
	s := database.Langs.NewSession(database.DB)
	if err := s.Get(c.Request.Context(), &p, id); err != nil {
		writeError(c, err)
		return
	}
	p.SetLanguage(middleware.RequestLanguage(c))

	// a missing translation is a 404 here, unlike in listings
	if err := catalog.Products.Localize(&p); err != nil {
		writeError(c, err)
		return
	}
	respondProduct(c, http.StatusOK, &p)
}

// ------------------------------
// POST /products
// ------------------------------
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lang := req.Lang
	if lang == "" {
		lang = middleware.RequestLanguage(c)
	}
	lang, err := langfields.CanonicalLanguage(lang)
	if err != nil {
		writeError(c, err)
		return
	}

	p := &catalog.Product{
		SKU:         req.SKU,
		PriceCents:  req.PriceCents,
		Published:   req.Published,
		Name:        req.Name,
		Description: req.Description,
		Notes:       req.Notes,
	}

	s := database.Langs.NewSession(database.DB)
	s.Add(p)

	others := make([]string, 0, len(req.I18n))
	for l := range req.I18n {
		others = append(others, l)
	}
	sort.Strings(others)
	for _, l := range others {
		if err := catalog.Products.Write(p, l, req.I18n[l]); err != nil {
			writeError(c, err)
			return
		}
	}

	// the top-level fields are written under lang when the session flushes
	p.SetLanguage(lang)
	if err := s.Flush(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respondProduct(c, http.StatusCreated, p)
}

// ------------------------------
// PUT /products/:id/translations/:lang
// ------------------------------
func UpsertTranslation(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var p catalog.Product
	s := database.Langs.NewSession(database.DB)
	if err := s.Get(c.Request.Context(), &p, id); err != nil {
		writeError(c, err)
		return
	}
	if err := catalog.Products.Write(&p, c.Param("lang"), values); err != nil {
		writeError(c, err)
		return
	}
	if err := s.Flush(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respondProduct(c, http.StatusOK, &p)
}

// ------------------------------
// DELETE /products/:id
// ------------------------------
func DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var p catalog.Product
	s := database.Langs.NewSession(database.DB)
	if err := s.Get(c.Request.Context(), &p, id); err != nil {
		writeError(c, err)
		return
	}
	s.Delete(&p)
	if err := s.Flush(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
