package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func languageOf(t *testing.T, target, accept string) string {
	t.Helper()
	r := gin.New()
	r.Use(Language([]string{"ru", "en", "de"}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestLanguage(c)) })

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if accept != "" {
		req.Header.Set("Accept-Language", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestLanguageNegotiation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   string
	}{
		{"default", "/", "", "ru"},
		{"query wins", "/?lang=EN", "de", "en"},
		{"unsupported query still honoured", "/?lang=fr", "", "fr"},
		{"malformed query falls back", "/?lang=%3F%3F", "de-AT,de;q=0.9", "de"},
		{"accept language", "/", "en-US,en;q=0.8", "en"},
		{"no match", "/", "ja", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, languageOf(t, tt.target, tt.accept))
		})
	}
}

func TestSanitizeNestedJSON(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"name":"<b>Tea</b>","i18n":{"en":{"name":"<script>x</script>Cup"}},"tags":["<i>a</i>"],"n":3}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Tea","i18n":{"en":{"name":"Cup"}},"tags":["a"],"n":3}`, w.Body.String())
}

func TestSanitizeRejectsMalformedJSON(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSanitizeKeepsNumberDigits(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"price_cents":9007199254740993,"rating":4.50,"stock":[12345678901234567]}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"price_cents":9007199254740993`)
	assert.Contains(t, w.Body.String(), `"rating":4.50`)
	assert.Contains(t, w.Body.String(), `[12345678901234567]`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1} {"b":2}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthAndRole(t *testing.T) {
	r := gin.New()
	r.Use(AuthMiddleware("secret"), RequireRole("admin", "editor"))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("email")) })

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+signed(t, "other", jwt.MapClaims{"role": "admin", "exp": exp})).Code)
	assert.Equal(t, http.StatusForbidden, call("Bearer "+signed(t, "secret", jwt.MapClaims{"role": "viewer", "exp": exp})).Code)

	w := call("Bearer " + signed(t, "secret", jwt.MapClaims{"role": "editor", "email": "e@example.com", "exp": exp}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "e@example.com", w.Body.String())
}
