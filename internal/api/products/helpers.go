package products

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"langsearch/internal/domain/catalog"
	"langsearch/internal/langfields"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	uniqueViolation = "23505"
)

// keys consumed by the handlers, never passed to FilterBy
var reservedParams = map[string]bool{"q": true, "limit": true, "offset": true}

type listParams struct {
	filters map[string]any
	limit   int
	offset  int
}

func (p listParams) page(db *gorm.DB) *gorm.DB {
	return db.Limit(p.limit).Offset(p.offset)
}

// parseListParams splits the query string into equality filters (first
// value per key) and paging. An explicit lang is kept as a filter so that
// only products translated into it match.
func parseListParams(values url.Values) (listParams, error) {
	out := listParams{filters: make(map[string]any, len(values)), limit: defaultLimit}
	for k, v := range values {
		if reservedParams[k] || len(v) == 0 {
			continue
		}
		out.filters[k] = v[0]
	}

	if s := values.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return listParams{}, fmt.Errorf("invalid limit %q", s)
		}
		out.limit = min(n, maxLimit)
	}
	if s := values.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return listParams{}, fmt.Errorf("invalid offset %q", s)
		}
		out.offset = n
	}
	return out, nil
}

func productID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return id, true
}

func findAndRespond(c *gin.Context, q *langfields.Query, db *gorm.DB) {
	var found []catalog.Product
	if err := q.Find(c.Request.Context(), db, &found); err != nil {
		writeError(c, err)
		return
	}

	out := ProductListDTO{Lang: q.LanguageOf(db), Products: make([]ProductDTO, 0, len(found))}
	for i := range found {
		dto, err := toProductDTO(catalog.Products, &found[i], false)
		if err != nil {
			writeError(c, err)
			return
		}
		out.Products = append(out.Products, dto)
	}
	c.JSON(http.StatusOK, out)
}

func respondProduct(c *gin.Context, status int, p *catalog.Product) {
	dto, err := toProductDTO(catalog.Products, p, true)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, dto)
}

// errorStatus maps an error onto an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	var (
		fieldErr *langfields.InvalidFieldError
		langErr  *langfields.InvalidLanguageError
		pgErr    *pgconn.PgError
	)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, langfields.ErrNoTranslation):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &fieldErr), errors.As(err, &langErr):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return http.StatusConflict, "Product already exists"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.JSON(status, gin.H{"error": msg})
}
