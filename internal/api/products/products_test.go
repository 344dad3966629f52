package products

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"langsearch/internal/domain/catalog"
	"langsearch/internal/langfields"
)

func init() { gin.SetMode(gin.TestMode) }

func TestParseListParams(t *testing.T) {
	p, err := parseListParams(url.Values{
		"name":   {"Tea", "ignored"},
		"lang":   {"en"},
		"sku":    {"T-1"},
		"q":      {"skip"},
		"limit":  {"500"},
		"offset": {"40"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Tea", "lang": "en", "sku": "T-1"}, p.filters)
	assert.Equal(t, maxLimit, p.limit)
	assert.Equal(t, 40, p.offset)

	p, err = parseListParams(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, p.filters)
	assert.Equal(t, defaultLimit, p.limit)

	_, err = parseListParams(url.Values{"limit": {"0"}})
	assert.Error(t, err)
	_, err = parseListParams(url.Values{"offset": {"-1"}})
	assert.Error(t, err)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"no translation", &langfields.NoTranslationError{Field: "Name", Lang: "de"}, http.StatusNotFound},
		{"unknown field", &langfields.InvalidFieldError{Model: "Product", Field: "colour"}, http.StatusBadRequest},
		{"bad language", &langfields.InvalidLanguageError{Tag: "??"}, http.StatusBadRequest},
		{"duplicate sku", fmt.Errorf("langfields: before flush: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict},
		{"other pg error", &pgconn.PgError{Code: "40001"}, http.StatusInternalServerError},
		{"anything else", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := errorStatus(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func registerCatalog(t *testing.T) *langfields.Mapping {
	t.Helper()
	require.NoError(t, catalog.Register(langfields.NewRegistry()))
	return catalog.Products
}

func TestToProductDTO(t *testing.T) {
	m := registerCatalog(t)
	p := &catalog.Product{ID: 9, SKU: "T-1", PriceCents: 250}
	p.Translations = []*langfields.Translation{
		{ID: 1, Lang: "en", Values: map[string]any{"name": "Tea", "description": "Green", "notes": nil}},
		{ID: 2, Lang: "ru", Values: map[string]any{"name": "Чай", "description": nil, "notes": nil}},
	}

	p.SetLanguage("en")
	dto, err := toProductDTO(m, p, true)
	require.NoError(t, err)
	assert.True(t, dto.Translated)
	assert.Equal(t, "Tea", dto.Name)
	assert.Equal(t, "Green", dto.Description)
	assert.Equal(t, []string{"en", "ru"}, dto.Languages)
	assert.Len(t, dto.I18n, 2)

	p.SetLanguage("de")
	dto, err = toProductDTO(m, p, false)
	require.NoError(t, err)
	assert.False(t, dto.Translated)
	assert.Equal(t, "de", dto.Lang)
	assert.Empty(t, dto.Name)
	assert.Nil(t, dto.I18n)
}

func TestHandlersRejectBadInput(t *testing.T) {
	r := gin.New()
	r.POST("/products", CreateProduct)
	r.GET("/products/search", SearchProducts)
	r.GET("/products/:id", GetProduct)
	r.DELETE("/products/:id", DeleteProduct)

	tests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/products", `{"name":"Tea"}`},
		{http.MethodPost, "/products", `not json`},
		{http.MethodGet, "/products/search?q=%20", ""},
		{http.MethodGet, "/products/abc", ""},
		{http.MethodDelete, "/products/0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
